package settings

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/screen"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

// Row indices. Keep in sync with rowCount and the labels in View.
const (
	rowAppTitle = iota
	rowTheme
	rowConfirmSubmit
	rowAdvanceCorrect
	rowAdvanceWrong
	rowBatchSize
	rowSpeedMode
	rowProtocol
	rowBaseURL
	rowModel
	rowAPIKey
	rowCustomPath
	rowCount
)

var protocols = []string{"", "openai-compatible", "gemini-native"}

type loadedMsg struct {
	Practice  store.PracticeSettings
	Theme     string
	AppTitle  string
	BatchSize int
	SpeedMode string
	API       store.APIConfig
	Err       error
}

type savedMsg struct {
	Err error
}

// SettingsScreen edits the persisted preferences and the LLM endpoint.
type SettingsScreen struct {
	st *store.Store

	practice  store.PracticeSettings
	themeName string
	appTitle  string
	batchSize int
	speedMode string
	api       store.APIConfig

	cursor  int
	editing bool
	input   components.TextInput
	notice  string
	errMsg  string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)
var _ screen.EscCapturer = (*SettingsScreen)(nil)

// New creates a new SettingsScreen.
func New(st *store.Store) *SettingsScreen {
	return &SettingsScreen{st: st}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) CapturesEsc() bool {
	return s.editing
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Edit"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var msg loadedMsg
		var err error
		if msg.Practice, err = s.st.PracticeSettings(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.Theme, err = s.st.Theme(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.AppTitle, err = s.st.AppTitle(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.BatchSize, err = s.st.BatchSize(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.SpeedMode, err = s.st.SpeedMode(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.API, err = s.st.APIConfig(ctx); err != nil {
			return loadedMsg{Err: err}
		}
		return msg
	}
}

// save persists everything the screen edits in one pass. Each blob is
// small; writing them together keeps the handlers uniform.
func (s *SettingsScreen) save() tea.Cmd {
	practice, themeName, title := s.practice, s.themeName, s.appTitle
	batch, speed, api := s.batchSize, s.speedMode, s.api
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.st.SavePracticeSettings(ctx, practice); err != nil {
			return savedMsg{Err: err}
		}
		if err := s.st.SaveTheme(ctx, themeName); err != nil {
			return savedMsg{Err: err}
		}
		if err := s.st.SaveAppTitle(ctx, title); err != nil {
			return savedMsg{Err: err}
		}
		if err := s.st.SaveBatchSize(ctx, batch); err != nil {
			return savedMsg{Err: err}
		}
		if err := s.st.SaveSpeedMode(ctx, speed); err != nil {
			return savedMsg{Err: err}
		}
		return savedMsg{Err: s.st.SaveAPIConfig(ctx, api)}
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.practice = msg.Practice
		s.themeName = msg.Theme
		s.appTitle = msg.AppTitle
		s.batchSize = msg.BatchSize
		s.speedMode = msg.SpeedMode
		s.api = msg.API
		return s, nil

	case savedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.notice = "Saved. Endpoint changes apply on restart."
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SettingsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.editing {
		switch key {
		case "esc":
			s.editing = false
			return s, nil
		case "enter":
			s.editing = false
			s.applyEdit(strings.TrimSpace(s.input.Value()))
			return s, s.save()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	s.notice = ""
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < rowCount-1 {
			s.cursor++
		}
	case "left", "h":
		s.cycle(-1)
		return s, s.save()
	case "right", "l":
		s.cycle(1)
		return s, s.save()
	case "enter":
		return s.startEdit()
	}
	return s, nil
}

// cycle flips toggles and steps enumerated rows. Text rows ignore it.
func (s *SettingsScreen) cycle(dir int) {
	switch s.cursor {
	case rowTheme:
		names := theme.Names()
		s.themeName = names[(indexOf(names, s.themeName)+dir+len(names))%len(names)]
		theme.Apply(s.themeName)
	case rowConfirmSubmit:
		s.practice.ConfirmBeforeSubmit = !s.practice.ConfirmBeforeSubmit
	case rowAdvanceCorrect:
		s.practice.AutoAdvanceOnCorrect = !s.practice.AutoAdvanceOnCorrect
	case rowAdvanceWrong:
		s.practice.AutoAdvanceOnWrong = !s.practice.AutoAdvanceOnWrong
	case rowBatchSize:
		s.batchSize += dir
		if s.batchSize < 1 {
			s.batchSize = 1
		}
		if s.batchSize > 50 {
			s.batchSize = 50
		}
	case rowSpeedMode:
		if s.speedMode == quizgen.SpeedFast {
			s.speedMode = quizgen.SpeedStandard
		} else {
			s.speedMode = quizgen.SpeedFast
		}
	case rowProtocol:
		s.api.Protocol = protocols[(indexOf(protocols, s.api.Protocol)+dir+len(protocols))%len(protocols)]
	}
}

func (s *SettingsScreen) startEdit() (screen.Screen, tea.Cmd) {
	var placeholder, value string
	numeric := false

	switch s.cursor {
	case rowAppTitle:
		placeholder, value = "App title", s.appTitle
	case rowBatchSize:
		placeholder, value, numeric = "Questions per batch", fmt.Sprintf("%d", s.batchSize), true
	case rowBaseURL:
		placeholder, value = "https://api.example.com/v1", s.api.BaseURL
	case rowModel:
		placeholder, value = "Model id", s.api.Model
	case rowAPIKey:
		placeholder, value = "API key", s.api.APIKey
	case rowCustomPath:
		placeholder, value = "Request path override (optional)", s.api.CustomPath
	default:
		// Toggles and cycles use left/right.
		s.cycle(1)
		return s, s.save()
	}

	s.input = components.NewTextInput(placeholder, numeric, 200)
	s.input.Model.SetValue(value)
	s.editing = true
	return s, s.input.Init()
}

func (s *SettingsScreen) applyEdit(value string) {
	switch s.cursor {
	case rowAppTitle:
		s.appTitle = value
		if value != "" {
			layout.Brand = value
		}
	case rowBatchSize:
		if n, err := s.input.NumericValue(); err == nil && n > 0 {
			s.batchSize = n
		}
	case rowBaseURL:
		s.api.BaseURL = value
	case rowModel:
		s.api.Model = value
	case rowAPIKey:
		s.api.APIKey = value
	case rowCustomPath:
		s.api.CustomPath = value
	}
}

func (s *SettingsScreen) rowValue(row int) string {
	switch row {
	case rowAppTitle:
		if s.appTitle == "" {
			return "(default)"
		}
		return s.appTitle
	case rowTheme:
		if s.themeName == "" {
			return theme.Names()[0]
		}
		return s.themeName
	case rowConfirmSubmit:
		return onOff(s.practice.ConfirmBeforeSubmit)
	case rowAdvanceCorrect:
		return onOff(s.practice.AutoAdvanceOnCorrect)
	case rowAdvanceWrong:
		return onOff(s.practice.AutoAdvanceOnWrong)
	case rowBatchSize:
		return fmt.Sprintf("%d", s.batchSize)
	case rowSpeedMode:
		return s.speedMode
	case rowProtocol:
		if s.api.Protocol == "" {
			return "(from environment)"
		}
		return s.api.Protocol
	case rowBaseURL:
		return orUnset(s.api.BaseURL)
	case rowModel:
		return orUnset(s.api.Model)
	case rowAPIKey:
		if s.api.APIKey == "" {
			return "(unset)"
		}
		return strings.Repeat("*", 8)
	case rowCustomPath:
		return orUnset(s.api.CustomPath)
	}
	return ""
}

var rowLabels = [rowCount]string{
	"App title",
	"Theme",
	"Confirm before submit",
	"Auto-advance on correct",
	"Auto-advance on wrong",
	"Generation batch size",
	"Generation speed",
	"Endpoint protocol",
	"Endpoint base URL",
	"Endpoint model",
	"Endpoint API key",
	"Endpoint request path",
}

func (s *SettingsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}

	var b strings.Builder

	for i := 0; i < rowCount; i++ {
		label := fmt.Sprintf("%-26s", rowLabels[i])
		value := s.rowValue(i)

		if i == s.cursor && s.editing {
			b.WriteString(theme.Selected.Render("  ▸ "+label) + s.input.View())
		} else if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ "+label) + theme.Body.Render(value))
		} else {
			b.WriteString(theme.Unselected.Render("    "+label) + theme.Hint.Render(value))
		}
		b.WriteString("\n")

		// Blank line before the endpoint block.
		if i == rowSpeedMode {
			b.WriteString("\n")
		}
	}

	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render("  "+s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}
