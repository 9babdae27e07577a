// Package main imports a JSON catalog snapshot into the database and search
// index.
//
// The snapshot is either a JSON array of items or an object with an "items"
// array, in the same shape the API returns. Items without an ID get one;
// items without an uploader are attributed to -uploader; items without a
// status are published. The duplicate check is skipped: a snapshot is
// trusted data.
//
// Usage:
//
//	DATA_PATH=~/figureshelf go run ./cmd/seed -file catalog.json -uploader admin@example.com
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/figureshelf/figureshelf-server/internal/config"
	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/id"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/search"
	"github.com/figureshelf/figureshelf-server/internal/service"
	"github.com/figureshelf/figureshelf-server/internal/store"
	"github.com/figureshelf/figureshelf-server/internal/store/sqlite"
)

var (
	file     = flag.String("file", "", "Snapshot file to import")
	uploader = flag.String("uploader", "", "Email of the user credited for items without an uploader")
	skipDup  = flag.Bool("skip-existing", true, "Skip items whose ID already exists")
)

type snapshot struct {
	Items []*domain.Item `json:"items"`
}

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if *file == "" {
		return errors.New("-file is required")
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	items, err := readSnapshot(*file)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Data.DatabasePath(), log.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Data.BasePath, Logger: log.Logger})
	if err != nil {
		return err
	}
	defer index.Close()

	db.SetSearchIndexer(service.NewSearchService(db, index, log.Logger))

	var uploaderID string
	if *uploader != "" {
		u, err := db.GetUserByEmail(ctx, *uploader)
		if err != nil {
			return fmt.Errorf("look up uploader %s: %w", *uploader, err)
		}
		uploaderID = u.ID
	}

	var imported, skipped int
	for n, item := range items {
		if err := prepare(item, uploaderID); err != nil {
			return fmt.Errorf("item %d: %w", n, err)
		}

		err := db.CreateItem(ctx, item)
		switch {
		case err == nil:
			imported++
		case *skipDup && errors.Is(err, store.ErrAlreadyExists):
			skipped++
		default:
			return fmt.Errorf("import %q: %w", item.Name, err)
		}
	}

	log.Info("snapshot imported",
		"file", *file,
		"imported", imported,
		"skipped", skipped,
	)
	return nil
}

func readSnapshot(path string) ([]*domain.Item, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []*domain.Item
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parse snapshot: %w", err)
		}
		return items, nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap.Items, nil
}

// prepare fills in the fields a hand-written snapshot usually leaves out.
func prepare(item *domain.Item, uploaderID string) error {
	if item == nil || item.Name == "" {
		return errors.New("name is required")
	}
	if item.ID == "" {
		itemID, err := id.Generate(id.PrefixItem)
		if err != nil {
			return err
		}
		item.ID = itemID
	}
	if item.UploaderID == "" {
		if uploaderID == "" {
			return errors.New("no uploader_id and no -uploader given")
		}
		item.UploaderID = uploaderID
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusPublished
	}
	if !item.Status.Valid() {
		return fmt.Errorf("unknown status %q", item.Status)
	}
	item.NormalizeTags()
	if item.CreatedAt.IsZero() {
		item.InitTimestamps()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	return nil
}
