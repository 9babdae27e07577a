package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/figureshelf/figureshelf-server/internal/config"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/service"
	"github.com/figureshelf/figureshelf-server/internal/watcher"
)

// VocabularyWatcherHandle reloads the vocabulary file when it changes.
// A nil watcher means no file is configured.
type VocabularyWatcherHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *VocabularyWatcherHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	return h.watcher.Stop()
}

// ProvideVocabularyWatcher watches the configured vocabulary file and swaps
// the catalog tokenizer on every change. A broken file keeps the previous
// vocabulary in place.
func ProvideVocabularyWatcher(i do.Injector) (*VocabularyWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	path := cfg.Matching.VocabularyPath
	if path == "" {
		return &VocabularyWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Component("vocabulary"), watcher.Options{})
	if err != nil {
		return nil, fmt.Errorf("create vocabulary watcher: %w", err)
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watch vocabulary: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Vocabulary watcher stopped", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Warn("Vocabulary watcher error", "error", err)
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				if ev.Type != watcher.EventModified {
					log.Warn("Vocabulary file removed, keeping current list", "path", ev.Path)
					continue
				}
				vocab, err := match.LoadVocabulary(ev.Path)
				if err != nil {
					log.Error("Vocabulary reload failed", "path", ev.Path, "error", err)
					continue
				}
				catalog.SetVocabulary(vocab)
				stop, supportive := vocab.Len()
				log.Info("Vocabulary reloaded",
					"path", ev.Path,
					"stop_words", stop,
					"supportive_words", supportive,
				)
			}
		}
	}()

	return &VocabularyWatcherHandle{watcher: w, cancel: cancel}, nil
}
