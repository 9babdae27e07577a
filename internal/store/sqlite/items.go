package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// itemColumns must match the scan order in scanItem.
const itemColumns = `id, created_at, updated_at, name, tags, category, scale,
	age_rating, release_date, images, uploader_id, status`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var (
		item      domain.Item
		createdAt string
		updatedAt string
		tags      string
		images    string
		status    string
	)

	err := scanner.Scan(
		&item.ID,
		&createdAt,
		&updatedAt,
		&item.Name,
		&tags,
		&item.Category,
		&item.Scale,
		&item.AgeRating,
		&item.ReleaseDate,
		&images,
		&item.UploaderID,
		&status,
	)
	if err != nil {
		return nil, err
	}

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if item.Tags, err = unmarshalJSON[string](tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if item.Images, err = unmarshalJSON[domain.ImageRef](images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	item.Status = domain.ItemStatus(status)

	return &item, nil
}

// CreateItem inserts a new item.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	tags, err := marshalJSON(item.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	images, err := marshalJSON(item.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
		item.Name,
		tags,
		item.Category,
		item.Scale,
		item.AgeRating,
		item.ReleaseDate,
		images,
		item.UploaderID,
		string(item.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	s.syncIndex(ctx, item)
	return nil
}

// GetItem retrieves an item by ID.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem replaces every mutable column of an existing item.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) UpdateItem(ctx context.Context, item *domain.Item) error {
	tags, err := marshalJSON(item.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	images, err := marshalJSON(item.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET
			updated_at = ?, name = ?, tags = ?, category = ?, scale = ?,
			age_rating = ?, release_date = ?, images = ?, uploader_id = ?, status = ?
		WHERE id = ?`,
		formatTime(item.UpdatedAt),
		item.Name,
		tags,
		item.Category,
		item.Scale,
		item.AgeRating,
		item.ReleaseDate,
		images,
		item.UploaderID,
		string(item.Status),
		item.ID,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return store.ErrNotFound
	}

	s.syncIndex(ctx, item)
	return nil
}

// DeleteItem removes an item and, through the foreign key, every annotation
// of it. Returns store.ErrNotFound if the item does not exist.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return store.ErrNotFound
	}

	if err := s.indexer().DeleteItem(ctx, id); err != nil {
		s.logger.Warn("search index delete failed", "item_id", id, "error", err)
	}
	return nil
}

// ListItems returns items matching filter, newest first.
func (s *Store) ListItems(ctx context.Context, filter store.ItemFilter) ([]*domain.Item, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}
	if filter.UploaderID != "" {
		where = append(where, "uploader_id = ?")
		args = append(args, filter.UploaderID)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	return s.queryItems(ctx, query, args...)
}

// ListAllItems returns every non-draft item, oldest first.
func (s *Store) ListAllItems(ctx context.Context) ([]*domain.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE status != ? ORDER BY created_at, id`,
		string(domain.ItemStatusDraft))
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
