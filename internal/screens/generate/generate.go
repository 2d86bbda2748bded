package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/rahulm/quizforge/internal/ingest"
	qz "github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

type step int

const (
	stepPath step = iota
	stepCount
	stepRunning
	stepDone
)

type progressMsg quizgen.BatchProgress

type doneMsg struct {
	Bank *qz.Bank
	Err  error
}

// GenerateScreen drives one generation run: pick a source file, pick a
// question count, watch the batches come in.
type GenerateScreen struct {
	st  *store.Store
	gen *quizgen.Service

	step      step
	pathInput components.TextInput
	numInput  components.TextInput
	inputErr  string

	sourcePath string
	total      int

	cancel     context.CancelFunc
	progressCh chan quizgen.BatchProgress
	doneCh     chan doneMsg
	progress   quizgen.BatchProgress
	canceling  bool

	result *qz.Bank
	runErr error
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)
var _ screen.EscCapturer = (*GenerateScreen)(nil)

// New creates a new GenerateScreen.
func New(st *store.Store, gen *quizgen.Service) *GenerateScreen {
	s := &GenerateScreen{
		st:        st,
		gen:       gen,
		pathInput: components.NewTextInput("Path to source file (.txt .md .json .xlsx)", false, 200),
		numInput:  components.NewTextInput("How many questions? e.g. 20", true, 3),
	}
	return s
}

func (s *GenerateScreen) Init() tea.Cmd {
	return s.pathInput.Init()
}

func (s *GenerateScreen) Title() string {
	return "Generate Quiz"
}

func (s *GenerateScreen) CapturesEsc() bool {
	return s.step == stepRunning
}

func (s *GenerateScreen) KeyHints() []layout.KeyHint {
	switch s.step {
	case stepRunning:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel (keeps finished batches)"},
		}
	case stepDone:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next"},
		{Key: "Esc", Description: "Back"},
	}
}

// start kicks off extraction and generation on a goroutine; batch
// progress and the final outcome stream back over channels.
func (s *GenerateScreen) start() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.progressCh = make(chan quizgen.BatchProgress, 1)
	s.doneCh = make(chan doneMsg, 1)

	path := s.sourcePath
	total := s.total

	go func() {
		text, err := ingest.ExtractFile(path)
		if err != nil {
			s.doneCh <- doneMsg{Err: err}
			return
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		input := quizgen.GenerateInput{
			SourceText: text,
			SourceName: name,
			Total:      total,
		}

		questions, runErr := s.gen.Run(ctx, input, func(p quizgen.BatchProgress) {
			select {
			case s.progressCh <- p:
			default:
			}
		})

		// Whatever survived is worth keeping, even on a failed or
		// canceled run.
		var bank *qz.Bank
		if len(questions) > 0 {
			bank = &qz.Bank{
				ID:        "bank-" + uuid.NewString(),
				Title:     name,
				Questions: questions,
				CreatedAt: time.Now(),
			}
			if err := s.st.AddBank(context.Background(), *bank); err != nil && runErr == nil {
				runErr = err
			}
		}
		s.doneCh <- doneMsg{Bank: bank, Err: runErr}
	}()

	return s.listen()
}

func (s *GenerateScreen) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-s.progressCh:
			return progressMsg(p)
		case d := <-s.doneCh:
			return d
		}
	}
}

func (s *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		s.progress = quizgen.BatchProgress(msg)
		return s, s.listen()

	case doneMsg:
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.result = msg.Bank
		s.runErr = msg.Err
		s.step = stepDone
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forwardToInput(msg)
}

func (s *GenerateScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.step {
	case stepPath:
		if key == "enter" {
			path := strings.TrimSpace(s.pathInput.Value())
			if path == "" {
				s.inputErr = "Enter a file path"
				return s, nil
			}
			if !supportedPath(path) {
				s.inputErr = fmt.Sprintf("Unsupported file type (use %s)", strings.Join(ingest.SupportedExtensions, " "))
				return s, nil
			}
			s.sourcePath = path
			s.inputErr = ""
			s.step = stepCount
			return s, s.numInput.Init()
		}

	case stepCount:
		if key == "enter" {
			n, err := s.numInput.NumericValue()
			if err != nil || n <= 0 {
				s.inputErr = "Enter a positive number"
				return s, nil
			}
			s.total = n
			s.inputErr = ""
			s.step = stepRunning
			return s, s.start()
		}

	case stepRunning:
		if key == "esc" && s.cancel != nil && !s.canceling {
			s.canceling = true
			s.cancel()
			return s, nil
		}
		return s, nil

	case stepDone:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	return s.forwardToInput(msg)
}

func (s *GenerateScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.step {
	case stepPath:
		s.pathInput, cmd = s.pathInput.Update(msg)
	case stepCount:
		s.numInput, cmd = s.numInput.Update(msg)
	}
	return s, cmd
}

func supportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ingest.SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (s *GenerateScreen) View(width, height int) string {
	contentWidth := width - 8
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder

	switch s.step {
	case stepPath:
		b.WriteString(theme.Body.Bold(true).Render("Source material"))
		b.WriteString("\n\n")
		b.WriteString(s.pathInput.View())

	case stepCount:
		b.WriteString(theme.Body.Render("Source: " + s.sourcePath))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Bold(true).Render("Question count"))
		b.WriteString("\n\n")
		b.WriteString(s.numInput.View())

	case stepRunning:
		b.WriteString(theme.Body.Bold(true).Render("Generating..."))
		b.WriteString("\n\n")
		p := s.progress
		if p.Batches > 0 {
			label := fmt.Sprintf("Batch %d / %d", p.Batch, p.Batches)
			bar := components.NewProgressBar(label, float64(p.Generated)/float64(s.total), true, contentWidth)
			b.WriteString(bar.View())
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d questions so far", p.Generated, s.total)))
		} else {
			b.WriteString(theme.Hint.Render("Waiting for the first batch..."))
		}
		if s.canceling {
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render("Canceling — finishing up..."))
		}

	case stepDone:
		switch {
		case s.result != nil && s.runErr == nil:
			b.WriteString(theme.Correct.Render("✓ Generation complete"))
			b.WriteString("\n\n")
			b.WriteString(theme.Body.Render(fmt.Sprintf("Saved %q with %d questions.", s.result.Title, len(s.result.Questions))))
		case s.result != nil:
			b.WriteString(theme.Incorrect.Render("Generation stopped early"))
			b.WriteString("\n\n")
			b.WriteString(theme.Body.Render(fmt.Sprintf("Kept %d finished questions in %q.", len(s.result.Questions), s.result.Title)))
			b.WriteString("\n")
			b.WriteString(theme.Hint.Width(contentWidth).Render(s.runErr.Error()))
		default:
			b.WriteString(theme.Incorrect.Render("Generation failed"))
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Width(contentWidth).Render(s.runErr.Error()))
		}
	}

	if s.inputErr != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.inputErr))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Width(contentWidth).Render(b.String()))
}
