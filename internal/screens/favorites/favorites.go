package favorites

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	quizscreen "github.com/rahulm/quizforge/internal/screens/quiz"
	"github.com/rahulm/quizforge/internal/session"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

type loadedMsg struct {
	Favorites []qz.FavoriteEntry
	Err       error
}

type changedMsg struct {
	Err error
}

// FavoritesScreen lists favorited questions and starts sessions over
// them.
type FavoritesScreen struct {
	st      *store.Store
	entries []qz.FavoriteEntry
	cursor  int
	errMsg  string
}

var _ screen.Screen = (*FavoritesScreen)(nil)
var _ screen.KeyHintProvider = (*FavoritesScreen)(nil)

// New creates a new FavoritesScreen.
func New(st *store.Store) *FavoritesScreen {
	return &FavoritesScreen{st: st}
}

func (s *FavoritesScreen) Init() tea.Cmd {
	return s.load()
}

func (s *FavoritesScreen) Title() string {
	return "Favorites"
}

func (s *FavoritesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Practice"},
		{Key: "V", Description: "Review"},
		{Key: "D", Description: "Remove"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FavoritesScreen) load() tea.Cmd {
	return func() tea.Msg {
		entries, err := s.st.Favorites(context.Background())
		return loadedMsg{Favorites: entries, Err: err}
	}
}

func (s *FavoritesScreen) startSession(mode session.Mode) tea.Cmd {
	if len(s.entries) == 0 {
		return nil
	}
	questions := make([]qz.Question, len(s.entries))
	for i, e := range s.entries {
		questions[i] = e.Question
	}
	sc := quizscreen.New(s.st, session.FavoritesKey(), questions, mode, "Favorites")
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *FavoritesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.entries = msg.Favorites
		if s.cursor >= len(s.entries) {
			s.cursor = len(s.entries) - 1
		}
		if s.cursor < 0 {
			s.cursor = 0
		}
		return s, nil

	case changedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.entries)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.startSession(session.ModePractice)
		case "v":
			return s, s.startSession(session.ModeReview)
		case "d":
			if s.cursor < len(s.entries) {
				id := s.entries[s.cursor].Question.ID
				return s, func() tea.Msg {
					return changedMsg{Err: s.st.RemoveFavorite(context.Background(), id)}
				}
			}
		}
	}
	return s, nil
}

func (s *FavoritesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}
	if len(s.entries) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No favorites yet. Press F during a session to save a question."))
	}

	var b strings.Builder

	for i, e := range s.entries {
		stem := e.Question.Stem
		if len(stem) > width-20 && width > 24 {
			stem = stem[:width-24] + "..."
		}
		line := fmt.Sprintf("%s  %s", e.AddedAt.Local().Format("01-02"), stem)
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ ") + theme.Unselected.Render(line))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
