package quiz

import (
	"time"

	sess "github.com/rahulm/quizforge/internal/session"
)

// prepareDoneMsg is sent when stored progress has been checked.
type prepareDoneMsg struct {
	Decision sess.StartDecision
	Settings sess.Settings
	Err      error
}

// beginDoneMsg is sent when the session has been opened.
type beginDoneMsg struct {
	Err error
}

// answerGradedMsg is sent after a submission has been graded and
// persisted.
type answerGradedMsg struct {
	Result *sess.SubmitResult
	Err    error
}

// advanceDoneMsg is sent after moving to an adjacent question.
type advanceDoneMsg struct {
	Moved bool
	Err   error
}

// autoAdvanceMsg fires when the feedback display period ends.
type autoAdvanceMsg time.Time

// favoriteToggledMsg is sent after the current question's favorite
// state has been flipped.
type favoriteToggledMsg struct {
	Favorited bool
	Err       error
}
