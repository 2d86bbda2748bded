package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Persisted blob keys. These names are the storage contract: existing
// databases are keyed by them, so they never change.
const (
	KeyBankHistory      = "quiz_bank_history"
	KeyTheme            = "theme"
	KeyAppTitle         = "app_title"
	KeyAPIConfig        = "api_config"
	KeyAPIConfigPresets = "api_config_presets"
	KeyBatchSize        = "batch_size"
	KeySpeedMode        = "speed_mode"
	KeyFavorites        = "favorites"
	KeyMistakes         = "mistakes"
	KeyMistakesTrash    = "mistakes_trash"
	KeyQuestionMeta     = "question_meta"
	KeyTagPresets       = "tag_presets"
	KeySyllabusPresets  = "syllabus_presets"
	KeyQuizProgress     = "quiz_progress"
	KeyPracticeSettings = "practice_settings"
)

// getJSON loads and unmarshals the blob under key, returning def when
// the key has never been written.
func getJSON[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	raw, ok, err := s.getBlob(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// putJSON marshals v and writes it under key as one unit.
func putJSON[T any](ctx context.Context, s *Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.putBlob(ctx, key, string(raw))
}
