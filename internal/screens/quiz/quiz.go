package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	"github.com/rahulm/quizforge/internal/screens/summary"
	sess "github.com/rahulm/quizforge/internal/session"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseResumePrompt
	phaseActive
	phaseFeedback
	phaseQuitConfirm
	phaseError
)

const (
	examAdvanceDelay    = 300 * time.Millisecond
	feedbackAdvanceWait = 1500 * time.Millisecond
)

// QuizScreen runs one quiz session over a fixed question list.
type QuizScreen struct {
	st    *store.Store
	ctrl  *sess.Controller
	key   sess.Key
	items []qz.Question
	mode  sess.Mode
	label string

	phase     phase
	prevPhase phase
	decision  sess.StartDecision
	settings  sess.Settings
	options   components.OptionList
	lastRes   *sess.SubmitResult
	hint      string
	errMsg    string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscCapturer = (*QuizScreen)(nil)

// New creates a session screen for the given scope. The question order
// is taken as-is and kept stable for the life of the stored progress.
func New(st *store.Store, key sess.Key, questions []qz.Question, mode sess.Mode, label string) *QuizScreen {
	var recorder sess.MistakeRecorder
	if mode != sess.ModeReview {
		recorder = st
	}
	return &QuizScreen{
		st:    st,
		ctrl:  sess.NewController(st, recorder),
		key:   key,
		items: questions,
		mode:  mode,
		label: label,
		phase: phaseLoading,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.prepare()
}

func (s *QuizScreen) Title() string {
	switch s.mode {
	case sess.ModeExam:
		return "Exam: " + s.label
	case sess.ModeReview:
		return "Review: " + s.label
	}
	return "Practice: " + s.label
}

func (s *QuizScreen) CapturesEsc() bool {
	if s.mode == sess.ModeReview {
		return false
	}
	return s.phase == phaseActive || s.phase == phaseFeedback || s.phase == phaseQuitConfirm
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseResumePrompt:
		return []layout.KeyHint{
			{Key: "R", Description: "Resume"},
			{Key: "S", Description: "Start over"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "F", Description: "Favorite"},
			{Key: "Esc", Description: "End"},
		}
	case phaseActive:
		if s.mode == sess.ModeReview {
			return []layout.KeyHint{
				{Key: "←→", Description: "Browse"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{
			{Key: "Space", Description: "Pick"},
			{Key: "Enter", Description: "Submit"},
			{Key: "F", Description: "Favorite"},
			{Key: "Esc", Description: "End"},
		}
	}
	return nil
}

// prepare checks stored progress and loads the behavior toggles.
func (s *QuizScreen) prepare() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		ps, err := s.st.PracticeSettings(ctx)
		if err != nil {
			return prepareDoneMsg{Err: err}
		}
		settings := sess.Settings{
			ConfirmBeforeSubmit:  ps.ConfirmBeforeSubmit,
			AutoAdvanceOnCorrect: ps.AutoAdvanceOnCorrect,
			AutoAdvanceOnWrong:   ps.AutoAdvanceOnWrong,
		}
		if s.mode == sess.ModeReview {
			return prepareDoneMsg{Settings: settings}
		}
		decision, err := s.ctrl.Prepare(ctx, s.key, s.items)
		return prepareDoneMsg{Decision: decision, Settings: settings, Err: err}
	}
}

func (s *QuizScreen) begin(resume bool) tea.Cmd {
	return func() tea.Msg {
		err := s.ctrl.Begin(context.Background(), s.key, s.items, s.mode, s.settings, s.label, resume)
		return beginDoneMsg{Err: err}
	}
}

func (s *QuizScreen) submit() tea.Cmd {
	return func() tea.Msg {
		res, err := s.ctrl.Submit(context.Background())
		return answerGradedMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) advance() tea.Cmd {
	return func() tea.Msg {
		moved, err := s.ctrl.Advance(context.Background())
		return advanceDoneMsg{Moved: moved, Err: err}
	}
}

func (s *QuizScreen) back() tea.Cmd {
	return func() tea.Msg {
		moved, err := s.ctrl.Back(context.Background())
		return advanceDoneMsg{Moved: moved, Err: err}
	}
}

func (s *QuizScreen) toggleFavorite() tea.Cmd {
	q := s.ctrl.Current()
	if q == nil {
		return nil
	}
	question := *q
	return func() tea.Msg {
		ctx := context.Background()
		fav, err := s.st.IsFavorite(ctx, question.ID)
		if err != nil {
			return favoriteToggledMsg{Err: err}
		}
		if fav {
			err = s.st.RemoveFavorite(ctx, question.ID)
		} else {
			err = s.st.AddFavorite(ctx, qz.FavoriteEntry{Question: question, AddedAt: time.Now()})
		}
		return favoriteToggledMsg{Favorited: !fav, Err: err}
	}
}

func (s *QuizScreen) finish() (screen.Screen, tea.Cmd) {
	result := s.ctrl.End()
	sum := summary.New(result, s.label)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

// syncList rebuilds the option list for the current question, restoring
// feedback state when the question was already answered.
func (s *QuizScreen) syncList() {
	q := s.ctrl.Current()
	if q == nil {
		return
	}
	s.options = components.NewOptionList(q)
	s.hint = ""
	s.lastRes = nil

	if s.mode == sess.ModeReview {
		s.options.Reveal(q.AnswerIDs)
		s.phase = phaseActive
		return
	}

	if rec, ok := s.ctrl.AnswerFor(q.ID); ok {
		for _, id := range rec.AnswerIDs {
			s.options.Chosen[id] = true
		}
		s.options.Reveal(q.AnswerIDs)
		s.lastRes = &sess.SubmitResult{Correct: rec.IsCorrect, CorrectIDs: q.AnswerIDs, AlreadyAnswered: true}
		s.phase = phaseFeedback
		return
	}
	s.phase = phaseActive
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case prepareDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseError
			return s, nil
		}
		s.settings = msg.Settings
		if msg.Decision.Resumable {
			s.decision = msg.Decision
			s.phase = phaseResumePrompt
			return s, nil
		}
		return s, s.begin(false)

	case beginDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseError
			return s, nil
		}
		s.syncList()
		return s, nil

	case answerGradedMsg:
		return s.handleGraded(msg)

	case advanceDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseError
			return s, nil
		}
		if !msg.Moved {
			if s.mode == sess.ModeReview {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s.finish()
		}
		s.syncList()
		return s, nil

	case autoAdvanceMsg:
		if s.phase == phaseFeedback || s.mode == sess.ModeExam {
			return s, s.advance()
		}
		return s, nil

	case favoriteToggledMsg:
		if msg.Err != nil {
			s.hint = msg.Err.Error()
		} else if msg.Favorited {
			s.hint = "Added to favorites"
		} else {
			s.hint = "Removed from favorites"
		}
		return s, nil

	case components.ToggledMsg:
		if s.ctrl.Toggle(msg.OptionID) {
			return s, s.submit()
		}
		s.syncChosen()
		return s, nil

	case components.SubmitMsg:
		if s.mode == sess.ModeReview {
			return s, s.advance()
		}
		return s, s.submit()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *QuizScreen) handleGraded(msg answerGradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, sess.ErrNoSelection) {
			s.hint = "Select an option first"
			return s, nil
		}
		s.errMsg = msg.Err.Error()
		s.phase = phaseError
		return s, nil
	}

	res := msg.Result
	if res.AlreadyAnswered {
		return s, s.advance()
	}

	if s.mode == sess.ModeExam {
		// Feedback waits for the result view.
		return s, tea.Tick(examAdvanceDelay, func(t time.Time) tea.Msg { return autoAdvanceMsg(t) })
	}

	s.lastRes = res
	s.options.Reveal(res.CorrectIDs)
	s.phase = phaseFeedback
	if res.AutoAdvance {
		return s, tea.Tick(feedbackAdvanceWait, func(t time.Time) tea.Msg { return autoAdvanceMsg(t) })
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case phaseResumePrompt:
		switch key {
		case "r", "enter":
			s.phase = phaseLoading
			return s, s.begin(true)
		case "s", "n":
			s.phase = phaseLoading
			return s, s.begin(false)
		}
		return s, nil

	case phaseQuitConfirm:
		switch key {
		case "y":
			return s.finish()
		case "n", "esc":
			s.phase = s.prevPhase
		}
		return s, nil

	case phaseFeedback:
		switch key {
		case "esc":
			s.prevPhase = s.phase
			s.phase = phaseQuitConfirm
			return s, nil
		case "f":
			return s, s.toggleFavorite()
		case "enter", "space", " ", "n", "right":
			return s, s.advance()
		}
		return s, nil

	case phaseActive:
		if s.mode == sess.ModeReview {
			switch key {
			case "right", "n", "enter", "space", " ":
				return s, s.advance()
			case "left", "p":
				return s, s.back()
			}
			return s, nil
		}

		switch key {
		case "esc":
			s.prevPhase = s.phase
			s.phase = phaseQuitConfirm
			return s, nil
		case "f":
			return s, s.toggleFavorite()
		}

		var cmd tea.Cmd
		s.options, cmd = s.options.Update(msg)
		return s, cmd
	}

	return s, nil
}

// syncChosen mirrors the controller's staged selection into the list.
func (s *QuizScreen) syncChosen() {
	chosen := make(map[string]bool)
	for id, on := range s.ctrl.Pending() {
		if on {
			chosen[id] = true
		}
	}
	s.options.Chosen = chosen
}

func (s *QuizScreen) View(width, height int) string {
	switch s.phase {
	case phaseError:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Session error")+"\n\n"+
				theme.Body.Render(s.errMsg)+"\n\n"+
				theme.Hint.Render("Press Esc to go back"))

	case phaseLoading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Loading session..."))

	case phaseResumePrompt:
		return s.renderResumePrompt(width, height)

	case phaseQuitConfirm:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Body.Render("End this session?")+"\n\n"+
				theme.Hint.Render("Progress is saved. Y to end, N to keep going."))
	}

	return s.renderQuestion(width, height)
}

func (s *QuizScreen) renderResumePrompt(width, height int) string {
	stored := s.decision.Stored
	detail := ""
	if stored != nil {
		detail = fmt.Sprintf("%d of %d answered (%d correct), last touched %s",
			stored.AnsweredCount, len(stored.QuestionIDs), stored.CorrectCount,
			stored.UpdatedAt.Local().Format("Jan 2 15:04"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Bold(true).Render("Unfinished session found")+"\n\n"+
			theme.Body.Render(detail)+"\n\n"+
			theme.Hint.Render("R resume    S start over"))
}

func (s *QuizScreen) renderQuestion(width, height int) string {
	q := s.ctrl.Current()
	if q == nil {
		return ""
	}

	contentWidth := width - 8
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder

	position := fmt.Sprintf("Question %d / %d", s.ctrl.CurrentIndex()+1, len(s.items))
	answered := s.answeredCount()
	bar := components.NewProgressBar(position, float64(answered)/float64(len(s.items)), false, contentWidth)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	stemStyle := theme.Body.Bold(true).Width(contentWidth)
	stem := q.Stem
	if q.Type == qz.TypeMultiple {
		stem += "  (select all that apply)"
	}
	b.WriteString(stemStyle.Render(stem))
	b.WriteString("\n\n")

	b.WriteString(s.options.View())

	if s.phase == phaseFeedback && s.mode != sess.ModeReview {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(q, contentWidth))
	} else if s.mode == sess.ModeReview {
		b.WriteString("\n")
		b.WriteString(renderExplanation(q, contentWidth))
	}

	if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.hint))
	}

	return lipgloss.NewStyle().Padding(1, 4).Width(width).Render(b.String())
}

func (s *QuizScreen) renderFeedback(q *qz.Question, width int) string {
	var b strings.Builder

	if s.lastRes != nil {
		if s.lastRes.Correct {
			b.WriteString(theme.Correct.Render("✓ Correct"))
		} else {
			b.WriteString(theme.Incorrect.Render("✗ Wrong — correct answer: " + strings.Join(s.lastRes.CorrectIDs, ", ")))
		}
		b.WriteString("\n")
	}

	if exp := renderExplanation(q, width); exp != "" {
		b.WriteString("\n")
		b.WriteString(exp)
	}
	return b.String()
}

// renderExplanation shows whatever explanation material the question
// carries, richest form first.
func renderExplanation(q *qz.Question, width int) string {
	var parts []string

	if q.CoreConcept != "" {
		parts = append(parts, theme.Body.Bold(true).Render("Core concept: ")+
			theme.Body.Width(width).Render(q.CoreConcept))
	}
	if len(q.OptionAnalyses) > 0 {
		var b strings.Builder
		for _, opt := range q.Options {
			if a := q.OptionAnalyses[opt.ID]; a != "" {
				b.WriteString(theme.Hint.Render(fmt.Sprintf("  %s) %s", opt.ID, a)))
				b.WriteString("\n")
			}
		}
		if b.Len() > 0 {
			parts = append(parts, strings.TrimRight(b.String(), "\n"))
		}
	} else if q.Analysis != "" {
		parts = append(parts, theme.Hint.Width(width).Render(q.Analysis))
	}
	if len(q.ExtendedCases) > 0 {
		parts = append(parts, theme.Hint.Width(width).Render("Also consider: "+strings.Join(q.ExtendedCases, "; ")))
	}

	return strings.Join(parts, "\n")
}

func (s *QuizScreen) answeredCount() int {
	n := 0
	for _, q := range s.items {
		if _, ok := s.ctrl.AnswerFor(q.ID); ok {
			n++
		}
	}
	return n
}
