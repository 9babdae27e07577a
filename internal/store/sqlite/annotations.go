package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// annotationColumns must match the scan order in scanAnnotation.
const annotationColumns = `user_id, item_id, status, price, store, score,
	purchase_date, notes, created_at, updated_at`

func scanAnnotation(scanner interface{ Scan(dest ...any) error }) (*domain.Annotation, error) {
	var (
		a         domain.Annotation
		status    string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&a.UserID,
		&a.ItemID,
		&status,
		&a.Price,
		&a.Store,
		&a.Score,
		&a.PurchaseDate,
		&a.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AnnotationStatus(status)
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertAnnotation creates or replaces the caller's entry for an item.
// CreatedAt is kept from the first write. Returns store.ErrNotFound when the
// user or item does not exist.
func (s *Store) UpsertAnnotation(ctx context.Context, a *domain.Annotation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (`+annotationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			status = excluded.status,
			price = excluded.price,
			store = excluded.store,
			score = excluded.score,
			purchase_date = excluded.purchase_date,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		a.UserID,
		a.ItemID,
		string(a.Status),
		a.Price,
		a.Store,
		a.Score,
		a.PurchaseDate,
		a.Notes,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// GetAnnotation returns one user's entry for an item.
// Returns store.ErrNotFound if there is none.
func (s *Store) GetAnnotation(ctx context.Context, userID, itemID string) (*domain.Annotation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE user_id = ? AND item_id = ?`,
		userID, itemID)

	a, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnnotation removes one entry.
// Returns store.ErrNotFound if there is none.
func (s *Store) DeleteAnnotation(ctx context.Context, userID, itemID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM annotations WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListAnnotationsForUser returns a user's entries, oldest first.
func (s *Store) ListAnnotationsForUser(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE user_id = ? ORDER BY created_at, item_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
