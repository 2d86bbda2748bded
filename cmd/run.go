package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rahulm/quizforge/internal/app"
	"github.com/rahulm/quizforge/internal/llm"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	opts := app.Options{Store: st}

	provider, err := buildProvider(ctx, st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM endpoint not configured:", err)
		fmt.Fprintln(os.Stderr, "Generation features will be unavailable.")
	} else {
		cfg, err := generatorConfig(ctx, st)
		if err != nil {
			return err
		}
		opts.Generator = quizgen.New(provider, cfg)
	}

	return app.Run(opts)
}

// buildProvider resolves the LLM configuration: the endpoint persisted
// in Settings wins, then QUIZFORGE_* env vars, then well-known API key
// env vars.
func buildProvider(ctx context.Context, st *store.Store) (llm.Provider, error) {
	api, err := st.APIConfig(ctx)
	if err != nil {
		return nil, err
	}

	var cfg llm.Config
	if api.Protocol != "" {
		cfg = llm.ConfigFromStored(llm.StoredEndpoint{
			Protocol:   api.Protocol,
			BaseURL:    api.BaseURL,
			Model:      api.Model,
			APIKey:     api.APIKey,
			CustomPath: api.CustomPath,
		})
	} else {
		cfg = llm.ConfigFromEnv()
		if cfg.Validate() != nil {
			if found, ok := llm.DiscoverConfig(); ok {
				cfg = found
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, cfg, st.EventRepo())
}

// generatorConfig overlays the persisted generation settings on the
// defaults.
func generatorConfig(ctx context.Context, st *store.Store) (quizgen.Config, error) {
	cfg := quizgen.DefaultConfig()
	batch, err := st.BatchSize(ctx)
	if err != nil {
		return cfg, err
	}
	if batch > 0 {
		cfg.BatchSize = batch
	}
	speed, err := st.SpeedMode(ctx)
	if err != nil {
		return cfg, err
	}
	if speed != "" {
		cfg.SpeedMode = speed
	}
	return cfg, nil
}
