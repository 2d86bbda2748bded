package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

// OptionList renders a question's options and tracks the cursor.
// Selection state lives in the session controller; the list only
// reports which option the user acted on.
type OptionList struct {
	Options  []quiz.Option
	Multiple bool
	Cursor   int

	// Chosen mirrors the controller's selection for rendering.
	Chosen map[string]bool

	// Revealed switches the list to answer-feedback rendering.
	Revealed   bool
	CorrectIDs map[string]bool
}

// NewOptionList creates a list for the given question.
func NewOptionList(q *quiz.Question) OptionList {
	return OptionList{
		Options:  q.Options,
		Multiple: q.Type == quiz.TypeMultiple,
		Chosen:   make(map[string]bool),
	}
}

// ToggledMsg reports that the user toggled or picked an option.
type ToggledMsg struct {
	OptionID string
}

// SubmitMsg reports that the user confirmed the current selection.
type SubmitMsg struct{}

// Init returns nil.
func (l OptionList) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection keys. Letter keys jump
// straight to the matching option.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if l.Revealed {
		return l, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	case "space", " ":
		if l.Cursor >= 0 && l.Cursor < len(l.Options) {
			id := l.Options[l.Cursor].ID
			return l, func() tea.Msg { return ToggledMsg{OptionID: id} }
		}
	case "enter":
		return l, func() tea.Msg { return SubmitMsg{} }
	default:
		// Letter shortcut: toggle the option with that id.
		if len(key) == 1 {
			upper := key[0] &^ 0x20
			for i, opt := range l.Options {
				if len(opt.ID) == 1 && opt.ID[0] == upper {
					l.Cursor = i
					return l, func() tea.Msg { return ToggledMsg{OptionID: opt.ID} }
				}
			}
		}
	}

	return l, nil
}

// View renders the option list.
func (l OptionList) View() string {
	var s string
	for i, opt := range l.Options {
		marker := " "
		if l.Chosen[opt.ID] {
			marker = "●"
		}

		prefix := "  "
		if i == l.Cursor && !l.Revealed {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s %s)  %s", prefix, marker, opt.ID, opt.Text)

		switch {
		case l.Revealed && l.CorrectIDs[opt.ID]:
			s += lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line) + "\n"
		case l.Revealed && l.Chosen[opt.ID]:
			s += lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line) + "\n"
		case l.Revealed:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		case i == l.Cursor:
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}
	return s
}

// Reveal switches to feedback rendering with the given correct ids.
func (l *OptionList) Reveal(correctIDs []string) {
	l.Revealed = true
	l.CorrectIDs = make(map[string]bool, len(correctIDs))
	for _, id := range correctIDs {
		l.CorrectIDs[id] = true
	}
}
