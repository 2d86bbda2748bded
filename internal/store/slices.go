package store

import (
	"context"
	"fmt"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/session"
	"github.com/rahulm/quizforge/internal/syllabus"
)

// ---- bank history ----

// History returns the persisted bank list, newest first.
func (s *Store) History(ctx context.Context) ([]quiz.Bank, error) {
	return getJSON(ctx, s, KeyBankHistory, []quiz.Bank(nil))
}

func (s *Store) SaveHistory(ctx context.Context, banks []quiz.Bank) error {
	return putJSON(ctx, s, KeyBankHistory, banks)
}

// AddBank prepends a bank to history.
func (s *Store) AddBank(ctx context.Context, b quiz.Bank) error {
	banks, err := s.History(ctx)
	if err != nil {
		return err
	}
	return s.SaveHistory(ctx, append([]quiz.Bank{b}, banks...))
}

// BankByID returns the bank with the given id, or nil.
func (s *Store) BankByID(ctx context.Context, id string) (*quiz.Bank, error) {
	banks, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	for i := range banks {
		if banks[i].ID == id {
			return &banks[i], nil
		}
	}
	return nil, nil
}

// DeleteBank removes a bank and its questions together. QuestionMeta and
// progress entries keyed by those questions deliberately survive.
func (s *Store) DeleteBank(ctx context.Context, id string) error {
	banks, err := s.History(ctx)
	if err != nil {
		return err
	}
	out := banks[:0]
	for _, b := range banks {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return s.SaveHistory(ctx, out)
}

func (s *Store) RenameBank(ctx context.Context, id, title string) error {
	banks, err := s.History(ctx)
	if err != nil {
		return err
	}
	for i := range banks {
		if banks[i].ID == id {
			banks[i].Title = title
			return s.SaveHistory(ctx, banks)
		}
	}
	return fmt.Errorf("bank %s not found", id)
}

// ---- favorites ----

func (s *Store) Favorites(ctx context.Context) ([]quiz.FavoriteEntry, error) {
	return getJSON(ctx, s, KeyFavorites, []quiz.FavoriteEntry(nil))
}

// AddFavorite stores a value copy; one entry per question id.
func (s *Store) AddFavorite(ctx context.Context, e quiz.FavoriteEntry) error {
	favs, err := s.Favorites(ctx)
	if err != nil {
		return err
	}
	for _, f := range favs {
		if f.Question.ID == e.Question.ID {
			return nil
		}
	}
	return putJSON(ctx, s, KeyFavorites, append(favs, e))
}

func (s *Store) RemoveFavorite(ctx context.Context, questionID string) error {
	favs, err := s.Favorites(ctx)
	if err != nil {
		return err
	}
	out := favs[:0]
	for _, f := range favs {
		if f.Question.ID != questionID {
			out = append(out, f)
		}
	}
	return putJSON(ctx, s, KeyFavorites, out)
}

// IsFavorite reports whether the question id is favorited.
func (s *Store) IsFavorite(ctx context.Context, questionID string) (bool, error) {
	favs, err := s.Favorites(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.Question.ID == questionID {
			return true, nil
		}
	}
	return false, nil
}

// ---- mistakes and trash ----

func (s *Store) Mistakes(ctx context.Context) ([]quiz.MistakeEntry, error) {
	return getJSON(ctx, s, KeyMistakes, []quiz.MistakeEntry(nil))
}

// AddMistake appends a value copy, deduplicated by question id: the
// first miss wins, later misses on the same question neither duplicate
// nor update the stored wrong answer. Satisfies session.MistakeRecorder.
func (s *Store) AddMistake(ctx context.Context, e quiz.MistakeEntry) error {
	mistakes, err := s.Mistakes(ctx)
	if err != nil {
		return err
	}
	for _, m := range mistakes {
		if m.Question.ID == e.Question.ID {
			return nil
		}
	}
	return putJSON(ctx, s, KeyMistakes, append(mistakes, e))
}

var _ session.MistakeRecorder = (*Store)(nil)

// RemoveMistake moves an entry to the trash slice.
func (s *Store) RemoveMistake(ctx context.Context, questionID string) error {
	mistakes, err := s.Mistakes(ctx)
	if err != nil {
		return err
	}
	trash, err := s.MistakesTrash(ctx)
	if err != nil {
		return err
	}
	out := mistakes[:0]
	for _, m := range mistakes {
		if m.Question.ID == questionID {
			trash = append(trash, m)
			continue
		}
		out = append(out, m)
	}
	if err := putJSON(ctx, s, KeyMistakesTrash, trash); err != nil {
		return err
	}
	return putJSON(ctx, s, KeyMistakes, out)
}

func (s *Store) MistakesTrash(ctx context.Context) ([]quiz.MistakeEntry, error) {
	return getJSON(ctx, s, KeyMistakesTrash, []quiz.MistakeEntry(nil))
}

// RestoreMistake moves a trashed entry back into mistakes.
func (s *Store) RestoreMistake(ctx context.Context, questionID string) error {
	trash, err := s.MistakesTrash(ctx)
	if err != nil {
		return err
	}
	out := trash[:0]
	var restored *quiz.MistakeEntry
	for i, m := range trash {
		if m.Question.ID == questionID && restored == nil {
			restored = &trash[i]
			continue
		}
		out = append(out, m)
	}
	if restored == nil {
		return fmt.Errorf("mistake %s not in trash", questionID)
	}
	if err := s.AddMistake(ctx, *restored); err != nil {
		return err
	}
	return putJSON(ctx, s, KeyMistakesTrash, out)
}

// PurgeTrash empties the mistakes trash.
func (s *Store) PurgeTrash(ctx context.Context) error {
	return putJSON(ctx, s, KeyMistakesTrash, []quiz.MistakeEntry{})
}

// ---- question meta ----

// MetaMap returns the sparse per-question side-table.
func (s *Store) MetaMap(ctx context.Context) (map[string]quiz.QuestionMeta, error) {
	return getJSON(ctx, s, KeyQuestionMeta, map[string]quiz.QuestionMeta{})
}

// SetMeta upserts one entry. Entries outlive their owning bank: manual
// classification applies again if a question with the same id returns
// via re-import.
func (s *Store) SetMeta(ctx context.Context, m quiz.QuestionMeta) error {
	metas, err := s.MetaMap(ctx)
	if err != nil {
		return err
	}
	metas[m.ID] = m
	return putJSON(ctx, s, KeyQuestionMeta, metas)
}

// ---- tags ----

func (s *Store) TagPresets(ctx context.Context) ([]string, error) {
	return getJSON(ctx, s, KeyTagPresets, []string(nil))
}

func (s *Store) SaveTagPresets(ctx context.Context, tags []string) error {
	return putJSON(ctx, s, KeyTagPresets, tags)
}

// ---- syllabus presets ----

func (s *Store) SyllabusPresets(ctx context.Context) ([]syllabus.Preset, error) {
	return getJSON(ctx, s, KeySyllabusPresets, []syllabus.Preset(nil))
}

func (s *Store) AddSyllabusPreset(ctx context.Context, p syllabus.Preset) error {
	presets, err := s.SyllabusPresets(ctx)
	if err != nil {
		return err
	}
	return putJSON(ctx, s, KeySyllabusPresets, append(presets, p))
}

func (s *Store) DeleteSyllabusPreset(ctx context.Context, id string) error {
	presets, err := s.SyllabusPresets(ctx)
	if err != nil {
		return err
	}
	out := presets[:0]
	for _, p := range presets {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return putJSON(ctx, s, KeySyllabusPresets, out)
}

func (s *Store) RenameSyllabusPreset(ctx context.Context, id, name string) error {
	presets, err := s.SyllabusPresets(ctx)
	if err != nil {
		return err
	}
	for i := range presets {
		if presets[i].ID == id {
			presets[i].Name = name
			return putJSON(ctx, s, KeySyllabusPresets, presets)
		}
	}
	return fmt.Errorf("syllabus %s not found", id)
}

// ---- quiz progress (session.ProgressRepo) ----

var _ session.ProgressRepo = (*Store)(nil)

func (s *Store) progressMap(ctx context.Context) (map[string]session.StoredProgress, error) {
	return getJSON(ctx, s, KeyQuizProgress, map[string]session.StoredProgress{})
}

func (s *Store) Progress(ctx context.Context, key string) (*session.StoredProgress, error) {
	m, err := s.progressMap(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := m[key]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) SaveProgress(ctx context.Context, key string, p *session.StoredProgress) error {
	m, err := s.progressMap(ctx)
	if err != nil {
		return err
	}
	m[key] = *p
	return putJSON(ctx, s, KeyQuizProgress, m)
}

func (s *Store) DeleteProgress(ctx context.Context, key string) error {
	m, err := s.progressMap(ctx)
	if err != nil {
		return err
	}
	delete(m, key)
	return putJSON(ctx, s, KeyQuizProgress, m)
}

// ---- settings ----

// APIConfig is the persisted LLM endpoint configuration the user edits
// in the app, as opposed to environment-derived config.
type APIConfig struct {
	Protocol   string `json:"protocol"` // "openai-compatible" | "gemini-native"
	BaseURL    string `json:"baseUrl"`
	Model      string `json:"model"`
	APIKey     string `json:"apiKey"`
	CustomPath string `json:"customPath,omitempty"`
}

func (s *Store) APIConfig(ctx context.Context) (APIConfig, error) {
	return getJSON(ctx, s, KeyAPIConfig, APIConfig{})
}

func (s *Store) SaveAPIConfig(ctx context.Context, cfg APIConfig) error {
	return putJSON(ctx, s, KeyAPIConfig, cfg)
}

func (s *Store) APIConfigPresets(ctx context.Context) ([]APIConfig, error) {
	return getJSON(ctx, s, KeyAPIConfigPresets, []APIConfig(nil))
}

func (s *Store) SaveAPIConfigPresets(ctx context.Context, presets []APIConfig) error {
	return putJSON(ctx, s, KeyAPIConfigPresets, presets)
}

// PracticeSettings are the session-behavior toggles.
type PracticeSettings struct {
	ConfirmBeforeSubmit  bool `json:"confirmBeforeSubmit"`
	AutoAdvanceOnCorrect bool `json:"autoAdvanceOnCorrect"`
	AutoAdvanceOnWrong   bool `json:"autoAdvanceOnWrong"`
}

func (s *Store) PracticeSettings(ctx context.Context) (PracticeSettings, error) {
	return getJSON(ctx, s, KeyPracticeSettings, PracticeSettings{AutoAdvanceOnCorrect: true})
}

func (s *Store) SavePracticeSettings(ctx context.Context, ps PracticeSettings) error {
	return putJSON(ctx, s, KeyPracticeSettings, ps)
}

func (s *Store) Theme(ctx context.Context) (string, error) {
	return getJSON(ctx, s, KeyTheme, "")
}

func (s *Store) SaveTheme(ctx context.Context, theme string) error {
	return putJSON(ctx, s, KeyTheme, theme)
}

func (s *Store) AppTitle(ctx context.Context) (string, error) {
	return getJSON(ctx, s, KeyAppTitle, "")
}

func (s *Store) SaveAppTitle(ctx context.Context, title string) error {
	return putJSON(ctx, s, KeyAppTitle, title)
}

func (s *Store) BatchSize(ctx context.Context) (int, error) {
	return getJSON(ctx, s, KeyBatchSize, 10)
}

func (s *Store) SaveBatchSize(ctx context.Context, n int) error {
	return putJSON(ctx, s, KeyBatchSize, n)
}

func (s *Store) SpeedMode(ctx context.Context) (string, error) {
	return getJSON(ctx, s, KeySpeedMode, "standard")
}

func (s *Store) SaveSpeedMode(ctx context.Context, mode string) error {
	return putJSON(ctx, s, KeySpeedMode, mode)
}
