package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rahulm/quizforge/internal/screen"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

const noEndpointNotice = "╌╌ LLM required ╌╌\n\n" +
	"This feature needs a configured endpoint.\n" +
	"Add an API key in Settings or the environment."

// PlaceholderScreen stands in for features that need an LLM endpoint
// when none is configured yet.
type PlaceholderScreen struct {
	title string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a placeholder titled after the feature it replaces.
func New(title string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title}
}

func (p *PlaceholderScreen) Init() tea.Cmd { return nil }

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(noEndpointNotice)
}

func (p *PlaceholderScreen) Title() string { return p.title }
