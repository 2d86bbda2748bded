package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	"github.com/rahulm/quizforge/internal/screens/banks"
	"github.com/rahulm/quizforge/internal/screens/favorites"
	"github.com/rahulm/quizforge/internal/screens/generate"
	"github.com/rahulm/quizforge/internal/screens/mistakes"
	"github.com/rahulm/quizforge/internal/screens/placeholder"
	"github.com/rahulm/quizforge/internal/screens/settings"
	syllabusscreen "github.com/rahulm/quizforge/internal/screens/syllabus"
	"github.com/rahulm/quizforge/internal/screens/tags"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	menu components.Menu

	bankCount     int
	questionCount int
	mistakeCount  int
	favoriteCount int
	llmReady      bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. generator is nil when no LLM endpoint
// is configured; generation items fall back to a notice screen.
func New(st *store.Store, generator *quizgen.Service) *HomeScreen {
	h := &HomeScreen{llmReady: generator != nil}

	if st != nil {
		ctx := context.Background()
		if banksList, err := st.History(ctx); err == nil {
			h.bankCount = len(banksList)
			for _, b := range banksList {
				h.questionCount += len(b.Questions)
			}
		}
		if m, err := st.Mistakes(ctx); err == nil {
			h.mistakeCount = len(m)
		}
		if f, err := st.Favorites(ctx); err == nil {
			h.favoriteCount = len(f)
		}
	}

	items := []components.MenuItem{
		{Label: "GENERATE QUIZ", Action: func() tea.Cmd {
			if generator == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: placeholder.New("Generate Quiz")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: generate.New(st, generator)}
			}
		}},
		{Label: "QUESTION BANKS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: banks.New(st)}
			}
		}},
		{Label: "SYLLABUS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: syllabusscreen.New(st, generator)}
			}
		}},
		{Label: "MISTAKES", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: mistakes.New(st)}
			}
		}},
		{Label: "FAVORITES", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: favorites.New(st)}
			}
		}},
		{Label: "TAGS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: tags.New(st)}
			}
		}},
		{Label: "SETTINGS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: settings.New(st)}
			}
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := theme.Title.Width(width).Render(layout.Brand)
	subtitle := theme.Subtitle.Width(width).Render("Turn your study material into practice quizzes")
	sections = append(sections, title+"\n"+subtitle)

	sections = append(sections, h.renderStats(width))

	menu := lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View())
	sections = append(sections, menu)

	if !h.llmReady {
		note := theme.Hint.Width(width).Align(lipgloss.Center).
			Render("No LLM endpoint configured. Set an API key or edit Settings to enable generation.")
		sections = append(sections, note)
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) renderStats(width int) string {
	stats := fmt.Sprintf("Banks: %d    Questions: %d    Mistakes: %d    Favorites: %d",
		h.bankCount, h.questionCount, h.mistakeCount, h.favoriteCount)
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(width).
		Align(lipgloss.Center).
		Render(stats)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
