package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/figureshelf/figureshelf-server/internal/auth"
	"github.com/figureshelf/figureshelf-server/internal/config"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/media/images"
	"github.com/figureshelf/figureshelf-server/internal/service"
	"github.com/figureshelf/figureshelf-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideVocabulary loads the tokenizer vocabulary, falling back to the
// built-in list when no file is configured.
func ProvideVocabulary(i do.Injector) (*match.Vocabulary, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Matching.VocabularyPath == "" {
		return match.DefaultVocabulary(), nil
	}

	vocab, err := match.LoadVocabulary(cfg.Matching.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	stop, supportive := vocab.Len()
	log.Info("Vocabulary loaded",
		"path", cfg.Matching.VocabularyPath,
		"stop_words", stop,
		"supportive_words", supportive,
	)
	return vocab, nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideCatalogService provides the matching engine behind search,
// suggestions, duplicates and collections.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	vocab := do.MustInvoke[*match.Vocabulary](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, service.CatalogConfig{
		Vocabulary:      vocab,
		SuggestionLimit: cfg.Matching.SuggestionLimit,
		PageSize:        cfg.Matching.PageSize,
		Collation:       cfg.Matching.Collation,
	}, log.Logger)
}

// ProvideItemService provides the item lifecycle service.
func ProvideItemService(i do.Injector) (*service.ItemService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewItemService(storeHandle.Store, catalog, v, log.Logger), nil
}

// ProvideAnnotationService provides the collection entry service.
func ProvideAnnotationService(i do.Injector) (*service.AnnotationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnnotationService(storeHandle.Store, v, log.Logger), nil
}

// ProvideImageService provides the image upload service.
func ProvideImageService(i do.Injector) (*service.ImageService, error) {
	transcoder := do.MustInvoke[*images.Transcoder](i)
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImageService(transcoder, storages.Uploader, log.Logger), nil
}
