package mistakes

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
	Mistakes []qz.MistakeEntry
	Trash    []qz.MistakeEntry
	Err      error
}

type changedMsg struct {
	Err error
}

// MistakesScreen lists captured mistakes and their trash, and starts
// re-practice sessions over them.
type MistakesScreen struct {
	st *store.Store

	entries []qz.MistakeEntry
	trash   []qz.MistakeEntry

	cursor       int
	showingTrash bool
	confirmPurge bool
	errMsg       string
}

var _ screen.Screen = (*MistakesScreen)(nil)
var _ screen.KeyHintProvider = (*MistakesScreen)(nil)
var _ screen.EscCapturer = (*MistakesScreen)(nil)

// New creates a new MistakesScreen.
func New(st *store.Store) *MistakesScreen {
	return &MistakesScreen{st: st}
}

func (s *MistakesScreen) Init() tea.Cmd {
	return s.load()
}

func (s *MistakesScreen) Title() string {
	if s.showingTrash {
		return "Mistakes Trash"
	}
	return "Mistakes"
}

func (s *MistakesScreen) CapturesEsc() bool {
	return s.showingTrash || s.confirmPurge
}

func (s *MistakesScreen) KeyHints() []layout.KeyHint {
	if s.confirmPurge {
		return []layout.KeyHint{
			{Key: "Y", Description: "Purge"},
			{Key: "N", Description: "Keep"},
		}
	}
	if s.showingTrash {
		return []layout.KeyHint{
			{Key: "R", Description: "Restore"},
			{Key: "P", Description: "Purge all"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Practice"},
		{Key: "V", Description: "Review"},
		{Key: "D", Description: "Remove"},
		{Key: "T", Description: "Trash"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *MistakesScreen) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := s.st.Mistakes(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		trash, err := s.st.MistakesTrash(ctx)
		return loadedMsg{Mistakes: entries, Trash: trash, Err: err}
	}
}

func (s *MistakesScreen) visible() []qz.MistakeEntry {
	if s.showingTrash {
		return s.trash
	}
	return s.entries
}

func (s *MistakesScreen) startSession(mode session.Mode) tea.Cmd {
	if len(s.entries) == 0 {
		return nil
	}
	questions := make([]qz.Question, len(s.entries))
	for i, e := range s.entries {
		questions[i] = e.Question
	}
	sc := quizscreen.New(s.st, session.MistakesKey(), questions, mode, "Mistakes")
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *MistakesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.entries = msg.Mistakes
		s.trash = msg.Trash
		s.clampCursor()
		return s, nil

	case changedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *MistakesScreen) clampCursor() {
	if s.cursor >= len(s.visible()) {
		s.cursor = len(s.visible()) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *MistakesScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmPurge {
		switch key {
		case "y":
			s.confirmPurge = false
			return s, func() tea.Msg {
				return changedMsg{Err: s.st.PurgeTrash(context.Background())}
			}
		case "n", "esc":
			s.confirmPurge = false
		}
		return s, nil
	}

	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.visible())-1 {
			s.cursor++
		}
	case "t":
		s.showingTrash = !s.showingTrash
		s.clampCursor()
	case "esc":
		if s.showingTrash {
			s.showingTrash = false
			s.clampCursor()
		}
	}

	if s.showingTrash {
		switch key {
		case "r":
			if s.cursor < len(s.trash) {
				id := s.trash[s.cursor].Question.ID
				return s, func() tea.Msg {
					return changedMsg{Err: s.st.RestoreMistake(context.Background(), id)}
				}
			}
		case "p":
			if len(s.trash) > 0 {
				s.confirmPurge = true
			}
		}
		return s, nil
	}

	switch key {
	case "enter":
		return s, s.startSession(session.ModePractice)
	case "v":
		return s, s.startSession(session.ModeReview)
	case "d":
		if s.cursor < len(s.entries) {
			id := s.entries[s.cursor].Question.ID
			return s, func() tea.Msg {
				return changedMsg{Err: s.st.RemoveMistake(context.Background(), id)}
			}
		}
	}
	return s, nil
}

func (s *MistakesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}

	entries := s.visible()
	if len(entries) == 0 {
		empty := "No mistakes captured yet. Wrong answers land here automatically."
		if s.showingTrash {
			empty = "Trash is empty."
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render(empty))
	}

	var b strings.Builder

	for i, e := range entries {
		stem := e.Question.Stem
		if len(stem) > width-30 && width > 34 {
			stem = stem[:width-34] + "..."
		}
		line := fmt.Sprintf("%s  %s", e.MissedAt.Local().Format("01-02"), stem)
		if e.SourceBank != "" {
			line += theme.Hint.Render("  [" + e.SourceBank + "]")
		}
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ ") + theme.Unselected.Render(line))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
		}
		b.WriteString("\n")
	}

	if s.confirmPurge {
		b.WriteString("\n" + theme.Incorrect.Render(
			fmt.Sprintf("  Permanently delete all %d trashed entries? (y/n)", len(s.trash))))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
