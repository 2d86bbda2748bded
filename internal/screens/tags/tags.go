package tags

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

type tagRow struct {
	Name      string
	Questions []qz.Question
}

type loadedMsg struct {
	Rows []tagRow
	Err  error
}

// TagsScreen lists every known tag with its question count and starts
// sessions scoped to one tag.
type TagsScreen struct {
	st     *store.Store
	rows   []tagRow
	cursor int
	errMsg string
}

var _ screen.Screen = (*TagsScreen)(nil)
var _ screen.KeyHintProvider = (*TagsScreen)(nil)

// New creates a new TagsScreen.
func New(st *store.Store) *TagsScreen {
	return &TagsScreen{st: st}
}

func (s *TagsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *TagsScreen) Title() string {
	return "Tags"
}

func (s *TagsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Practice"},
		{Key: "V", Description: "Review"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TagsScreen) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		banks, err := s.st.History(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		metas, err := s.st.MetaMap(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		presets, err := s.st.TagPresets(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}

		var rows []tagRow
		for _, tag := range presets {
			rows = append(rows, tagRow{Name: tag, Questions: collectTagged(banks, metas, tag)})
		}
		return loadedMsg{Rows: rows}
	}
}

// collectTagged gathers every stored question carrying the tag, in bank
// order so the scope is stable between sessions.
func collectTagged(banks []qz.Bank, metas map[string]qz.QuestionMeta, tag string) []qz.Question {
	var out []qz.Question
	for _, b := range banks {
		for _, q := range b.Questions {
			for _, t := range metas[q.ID].Tags {
				if t == tag {
					out = append(out, q)
					break
				}
			}
		}
	}
	return out
}

func (s *TagsScreen) startSession(mode session.Mode) tea.Cmd {
	if s.cursor >= len(s.rows) {
		return nil
	}
	row := s.rows[s.cursor]
	if len(row.Questions) == 0 {
		return nil
	}
	sc := quizscreen.New(s.st, session.TagKey(row.Name), row.Questions, mode, row.Name)
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *TagsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.rows = msg.Rows
		if s.cursor >= len(s.rows) {
			s.cursor = 0
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.rows)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.startSession(session.ModePractice)
		case "v":
			return s, s.startSession(session.ModeReview)
		}
	}
	return s, nil
}

func (s *TagsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}
	if len(s.rows) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No tags yet. Tag questions with `quizforge tag set <question-id> <tag>`."))
	}

	var b strings.Builder

	for i, row := range s.rows {
		line := fmt.Sprintf("%-24s  %d questions", row.Name, len(row.Questions))
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ ") + theme.Unselected.Render(line))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
