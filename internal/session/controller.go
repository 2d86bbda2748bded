package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rahulm/quizforge/internal/quiz"
)

// Mode selects the session's interaction rules.
type Mode int

const (
	// ModePractice shows feedback per question; auto-advance is
	// configurable per outcome.
	ModePractice Mode = iota
	// ModeExam always advances after a short delay and defers feedback
	// to the result view.
	ModeExam
	// ModeReview is a read-only walkthrough showing correct answers
	// immediately; submissions are rejected.
	ModeReview
)

// Settings are the user-facing toggles the controller honors.
type Settings struct {
	// ConfirmBeforeSubmit stages single-answer selections until an
	// explicit confirm instead of submitting on first pick.
	ConfirmBeforeSubmit bool
	AutoAdvanceOnCorrect bool
	AutoAdvanceOnWrong   bool
}

// MistakeRecorder captures wrong submissions. Implementations must
// deduplicate by question id — first occurrence wins, repeats neither
// duplicate nor update the stored entry.
type MistakeRecorder interface {
	AddMistake(ctx context.Context, entry quiz.MistakeEntry) error
}

// SubmitResult reports the outcome of one answer submission.
type SubmitResult struct {
	Correct     bool
	CorrectIDs  []string
	AutoAdvance bool
	// AlreadyAnswered marks an idempotent no-op: the question had been
	// answered before and nothing changed.
	AlreadyAnswered bool
}

// Result is the end-of-session summary.
type Result struct {
	Total    int
	Answered int
	Correct  int
	Score    int
	Elapsed  time.Duration
}

// StartDecision tells the caller whether a resume offer applies.
type StartDecision struct {
	Resumable bool
	Stored    *StoredProgress
}

var (
	ErrNoSession   = errors.New("no open session")
	ErrReviewMode  = errors.New("review sessions are read-only")
	ErrNoSelection = errors.New("nothing selected")
)

// Controller orchestrates one quiz session: the resume-or-restart
// decision, answer submission and scoring, mistake capture, and
// write-through progress persistence. Question order is never reshuffled
// between sessions, which is what keeps CurrentIndex meaningful across
// resumes and makes id-set equality a sound "same quiz" proxy.
type Controller struct {
	repo     ProgressRepo
	mistakes MistakeRecorder

	mode     Mode
	settings Settings

	key       Key
	sourceTag string // bank title or scope label, carried into mistakes
	questions []quiz.Question
	current   int
	answers   map[string]AnswerRecord
	pending   map[string]bool
	startedAt time.Time
	open      bool
}

// NewController wires a controller. mistakes may be nil when capture is
// not wanted (review flows).
func NewController(repo ProgressRepo, mistakes MistakeRecorder) *Controller {
	return &Controller{repo: repo, mistakes: mistakes}
}

// Prepare loads stored progress for the scope and decides resumability:
// the offer is made iff the fresh question-id set exactly matches the
// stored one, order ignored.
func (c *Controller) Prepare(ctx context.Context, key Key, questions []quiz.Question) (StartDecision, error) {
	if len(questions) == 0 {
		return StartDecision{}, errors.New("no questions in scope")
	}
	stored, err := c.repo.Progress(ctx, key.String())
	if err != nil {
		return StartDecision{}, fmt.Errorf("load progress: %w", err)
	}
	if stored == nil || !stored.SameQuestionSet(questionIDs(questions)) {
		return StartDecision{}, nil
	}
	return StartDecision{Resumable: true, Stored: stored}, nil
}

// Begin opens the session. With resume true (only valid after a
// resumable Prepare), the stored index and answers are restored;
// otherwise stored progress for the key is cleared and the session
// starts at question 1.
func (c *Controller) Begin(ctx context.Context, key Key, questions []quiz.Question, mode Mode, settings Settings, sourceTag string, resume bool) error {
	if len(questions) == 0 {
		return errors.New("no questions in scope")
	}

	c.key = key
	c.sourceTag = sourceTag
	c.questions = questions
	c.mode = mode
	c.settings = settings
	c.current = 0
	c.answers = make(map[string]AnswerRecord)
	c.pending = make(map[string]bool)
	c.startedAt = time.Now()
	c.open = true

	if resume {
		stored, err := c.repo.Progress(ctx, key.String())
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		if stored != nil && stored.SameQuestionSet(questionIDs(questions)) {
			c.current = stored.CurrentIndex
			if c.current < 0 || c.current >= len(questions) {
				c.current = 0
			}
			for id, a := range stored.Answers {
				c.answers[id] = a
			}
			return nil
		}
		// Set drifted between Prepare and Begin; fall through to restart.
	}

	if c.mode == ModeReview {
		return nil
	}
	if err := c.repo.DeleteProgress(ctx, key.String()); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return c.persist(ctx)
}

// Open reports whether a session is active.
func (c *Controller) Open() bool { return c.open }

// Mode returns the active session mode.
func (c *Controller) Mode() Mode { return c.mode }

// Questions returns the session's ordered question list.
func (c *Controller) Questions() []quiz.Question { return c.questions }

// CurrentIndex returns the position of the active question.
func (c *Controller) CurrentIndex() int { return c.current }

// Current returns the active question, or nil when no session is open.
func (c *Controller) Current() *quiz.Question {
	if !c.open || c.current < 0 || c.current >= len(c.questions) {
		return nil
	}
	return &c.questions[c.current]
}

// AnswerFor returns the submitted answer for a question id, if any.
func (c *Controller) AnswerFor(id string) (AnswerRecord, bool) {
	a, ok := c.answers[id]
	return a, ok
}

// Pending returns the staged (unsubmitted) selection for the current
// question.
func (c *Controller) Pending() map[string]bool { return c.pending }

// Toggle stages an option. For multiple-answer questions it toggles set
// membership; for single-answer questions it replaces the staged pick.
// Returns true when the caller should submit immediately (single answer,
// confirm-before-submit off).
func (c *Controller) Toggle(optionID string) bool {
	q := c.Current()
	if q == nil || c.mode == ModeReview {
		return false
	}
	if _, done := c.answers[q.ID]; done {
		return false
	}

	if q.Type == quiz.TypeMultiple {
		c.pending[optionID] = !c.pending[optionID]
		if !c.pending[optionID] {
			delete(c.pending, optionID)
		}
		return false
	}

	c.pending = map[string]bool{optionID: true}
	return !c.settings.ConfirmBeforeSubmit
}

// Submit grades the staged selection against the current question.
// Correctness is exact set equality; partial credit does not exist.
// Re-submitting an answered question is a no-op.
func (c *Controller) Submit(ctx context.Context) (*SubmitResult, error) {
	if !c.open {
		return nil, ErrNoSession
	}
	if c.mode == ModeReview {
		return nil, ErrReviewMode
	}
	q := c.Current()
	if q == nil {
		return nil, ErrNoSession
	}
	if prev, done := c.answers[q.ID]; done {
		return &SubmitResult{
			Correct:         prev.IsCorrect,
			CorrectIDs:      q.AnswerIDs,
			AlreadyAnswered: true,
		}, nil
	}
	if len(c.pending) == 0 {
		return nil, ErrNoSelection
	}

	selected := make([]string, 0, len(c.pending))
	for _, o := range q.Options {
		if c.pending[o.ID] {
			selected = append(selected, o.ID)
		}
	}

	correct := setsEqual(selected, q.AnswerIDs)
	c.answers[q.ID] = AnswerRecord{AnswerIDs: selected, IsCorrect: correct}
	c.pending = make(map[string]bool)

	if !correct && c.mistakes != nil {
		entry := quiz.MistakeEntry{
			Question:   *q,
			AnswerIDs:  selected,
			MissedAt:   time.Now(),
			SourceBank: c.sourceTag,
		}
		if err := c.mistakes.AddMistake(ctx, entry); err != nil {
			return nil, fmt.Errorf("record mistake: %w", err)
		}
	}

	if err := c.persist(ctx); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Correct:     correct,
		CorrectIDs:  q.AnswerIDs,
		AutoAdvance: c.shouldAutoAdvance(correct),
	}, nil
}

func (c *Controller) shouldAutoAdvance(correct bool) bool {
	switch c.mode {
	case ModeExam:
		return true
	case ModePractice:
		if correct {
			return c.settings.AutoAdvanceOnCorrect
		}
		return c.settings.AutoAdvanceOnWrong
	}
	return false
}

// Advance moves to the next question. Returns false at the end of the
// list.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	if !c.open {
		return false, ErrNoSession
	}
	if c.current+1 >= len(c.questions) {
		return false, nil
	}
	c.current++
	c.pending = make(map[string]bool)
	if c.mode == ModeReview {
		return true, nil
	}
	return true, c.persist(ctx)
}

// Back moves to the previous question (review navigation).
func (c *Controller) Back(ctx context.Context) (bool, error) {
	if !c.open {
		return false, ErrNoSession
	}
	if c.current == 0 {
		return false, nil
	}
	c.current--
	c.pending = make(map[string]bool)
	if c.mode == ModeReview {
		return true, nil
	}
	return true, c.persist(ctx)
}

// End closes the session and computes the result view. Persisted
// progress is deliberately retained so reopening the same scope still
// offers resume.
func (c *Controller) End() Result {
	r := Result{
		Total:   len(c.questions),
		Elapsed: time.Since(c.startedAt),
	}
	for _, id := range questionIDs(c.questions) {
		if a, ok := c.answers[id]; ok {
			r.Answered++
			if a.IsCorrect {
				r.Correct++
			}
		}
	}
	if r.Total > 0 {
		r.Score = int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
	}
	c.open = false
	return r
}

// persist writes the session state through to the progress store,
// recomputing the derived counts.
func (c *Controller) persist(ctx context.Context) error {
	p := &StoredProgress{
		QuestionIDs:  questionIDs(c.questions),
		CurrentIndex: c.current,
		Answers:      make(map[string]AnswerRecord, len(c.answers)),
		UpdatedAt:    time.Now(),
	}
	for id, a := range c.answers {
		p.Answers[id] = a
	}
	p.Recompute()
	if err := c.repo.SaveProgress(ctx, c.key.String(), p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func questionIDs(questions []quiz.Question) []string {
	ids := make([]string, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	return ids
}

func setsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	for _, id := range a {
		if !set[id] {
			return false
		}
	}
	return true
}
