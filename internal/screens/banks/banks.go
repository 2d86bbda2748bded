package banks

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	quizscreen "github.com/rahulm/quizforge/internal/screens/quiz"
	"github.com/rahulm/quizforge/internal/session"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

type state int

const (
	stateListing state = iota
	stateRenaming
	stateConfirmDelete
)

type banksLoadedMsg struct {
	Banks []qz.Bank
	Err   error
}

type bankSavedMsg struct {
	Err error
}

type exportedMsg struct {
	Path string
	Err  error
}

// BanksScreen lists the stored question banks and the per-bank actions.
type BanksScreen struct {
	st     *store.Store
	banks  []qz.Bank
	cursor int
	state  state
	rename components.TextInput
	notice string
	errMsg string
}

var _ screen.Screen = (*BanksScreen)(nil)
var _ screen.KeyHintProvider = (*BanksScreen)(nil)
var _ screen.EscCapturer = (*BanksScreen)(nil)

// New creates a new BanksScreen.
func New(st *store.Store) *BanksScreen {
	return &BanksScreen{st: st}
}

func (s *BanksScreen) Init() tea.Cmd {
	return s.load()
}

func (s *BanksScreen) Title() string {
	return "Question Banks"
}

func (s *BanksScreen) CapturesEsc() bool {
	return s.state != stateListing
}

func (s *BanksScreen) KeyHints() []layout.KeyHint {
	switch s.state {
	case stateRenaming:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	case stateConfirmDelete:
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Practice"},
		{Key: "E", Description: "Exam"},
		{Key: "V", Description: "Review"},
		{Key: "R", Description: "Rename"},
		{Key: "D", Description: "Delete"},
		{Key: "X", Description: "Export"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BanksScreen) load() tea.Cmd {
	return func() tea.Msg {
		banks, err := s.st.History(context.Background())
		return banksLoadedMsg{Banks: banks, Err: err}
	}
}

func (s *BanksScreen) selected() *qz.Bank {
	if s.cursor < 0 || s.cursor >= len(s.banks) {
		return nil
	}
	return &s.banks[s.cursor]
}

func (s *BanksScreen) startSession(mode session.Mode) tea.Cmd {
	b := s.selected()
	if b == nil {
		return nil
	}
	sc := quizscreen.New(s.st, session.BankKey(b.ID), b.Questions, mode, b.Title)
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *BanksScreen) export() tea.Cmd {
	b := s.selected()
	if b == nil {
		return nil
	}
	bank := *b
	return func() tea.Msg {
		data, err := qz.ExportBank(&bank)
		if err != nil {
			return exportedMsg{Err: err}
		}
		name := qz.ExportFilename(&bank)
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return exportedMsg{Err: err}
		}
		return exportedMsg{Path: name}
	}
}

func (s *BanksScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case banksLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.banks = msg.Banks
		if s.cursor >= len(s.banks) {
			s.cursor = len(s.banks) - 1
		}
		if s.cursor < 0 {
			s.cursor = 0
		}
		return s, nil

	case bankSavedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case exportedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.notice = "Exported to " + msg.Path
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.state == stateRenaming {
		var cmd tea.Cmd
		s.rename, cmd = s.rename.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *BanksScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.state {
	case stateRenaming:
		switch key {
		case "esc":
			s.state = stateListing
			return s, nil
		case "enter":
			title := strings.TrimSpace(s.rename.Value())
			b := s.selected()
			if title == "" || b == nil {
				s.state = stateListing
				return s, nil
			}
			id := b.ID
			s.state = stateListing
			return s, func() tea.Msg {
				return bankSavedMsg{Err: s.st.RenameBank(context.Background(), id, title)}
			}
		}
		var cmd tea.Cmd
		s.rename, cmd = s.rename.Update(msg)
		return s, cmd

	case stateConfirmDelete:
		switch key {
		case "y":
			b := s.selected()
			s.state = stateListing
			if b == nil {
				return s, nil
			}
			id := b.ID
			return s, func() tea.Msg {
				return bankSavedMsg{Err: s.st.DeleteBank(context.Background(), id)}
			}
		case "n", "esc":
			s.state = stateListing
		}
		return s, nil
	}

	s.notice = ""
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.banks)-1 {
			s.cursor++
		}
	case "enter":
		return s, s.startSession(session.ModePractice)
	case "e":
		return s, s.startSession(session.ModeExam)
	case "v":
		return s, s.startSession(session.ModeReview)
	case "r":
		if b := s.selected(); b != nil {
			s.rename = components.NewTextInput("New title", false, 60)
			s.rename.Model.SetValue(b.Title)
			s.state = stateRenaming
			return s, s.rename.Init()
		}
	case "d":
		if s.selected() != nil {
			s.state = stateConfirmDelete
		}
	case "x":
		return s, s.export()
	}
	return s, nil
}

func (s *BanksScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}
	if len(s.banks) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No question banks yet.\nGenerate or import one from the home screen."))
	}

	var b strings.Builder

	for i, bank := range s.banks {
		line := fmt.Sprintf("%s  %s",
			bank.CreatedAt.Local().Format("2006-01-02"),
			bank.Title)
		count := fmt.Sprintf("  (%d questions)", len(bank.Questions))

		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ " + line))
			b.WriteString(theme.Hint.Render(count))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
			b.WriteString(theme.Hint.Render(count))
		}
		b.WriteString("\n")
	}

	switch s.state {
	case stateRenaming:
		b.WriteString("\n  Rename: " + s.rename.View())
	case stateConfirmDelete:
		if bank := s.selected(); bank != nil {
			b.WriteString("\n" + theme.Incorrect.Render(
				fmt.Sprintf("  Delete %q and its %d questions? (y/n)", bank.Title, len(bank.Questions))))
		}
	}

	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render("  "+s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
