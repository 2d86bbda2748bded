package llm

import "context"

type ctxKey int

const ctxKeyPurpose ctxKey = iota

// WithPurpose labels the context so the event log records what a call
// was for ("quiz-batch", "syllabus-parse", ...).
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, ctxKeyPurpose, purpose)
}

// PurposeFrom returns the purpose label, or "unknown" for unlabeled
// contexts.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(ctxKeyPurpose).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
