package quizgen

// Config controls the behavior of the generation Service.
type Config struct {
	// BatchSize is the number of questions requested per LLM call.
	BatchSize int

	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorStems is the maximum number of already-generated stems
	// to include in the prompt for deduplication.
	MaxPriorStems int

	// SpeedMode selects the prompt depth: "standard" asks for full
	// per-option explanations, "fast" asks for answers and a short
	// analysis only.
	SpeedMode string
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     10,
		MaxTokens:     8192,
		Temperature:   0.7,
		MaxPriorStems: 40,
		SpeedMode:     SpeedStandard,
	}
}

// Speed modes.
const (
	SpeedStandard = "standard"
	SpeedFast     = "fast"
)
