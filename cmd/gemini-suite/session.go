package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jxucoder/gemini-suite/internal/config"
	"github.com/jxucoder/gemini-suite/internal/journal"
	"github.com/jxucoder/gemini-suite/internal/logging"
	"github.com/jxucoder/gemini-suite/internal/modes"
	"github.com/jxucoder/gemini-suite/internal/output"
	"github.com/jxucoder/gemini-suite/internal/shell"
	"github.com/jxucoder/gemini-suite/llm"
	"github.com/jxucoder/gemini-suite/llm/gemini"
)

// runSession wires the shell and runs it. An empty mode shows the menu.
func runSession(cmd *cobra.Command, mode modes.Name) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	catalog, err := modes.Load(cfg.TemplatesPath)
	if err != nil {
		return err
	}

	var jr shell.Journal
	if cfg.JournalEnabled {
		store, err := openJournal(cfg)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.JournalPath).Msg("Journal unavailable, continuing without it")
		} else {
			defer store.Close()
			jr = store
		}
	}

	sh := shell.New(shell.Options{
		In:     os.Stdin,
		Out:    os.Stdout,
		APIKey: cfg.APIKey,
		Connect: func(apiKey string) llm.Generator {
			return gemini.New(apiKey, gemini.Options{
				BaseURL: cfg.BaseURL,
				Model:   cfg.Model,
				Timeout: cfg.Timeout,
			}, &logger)
		},
		Modes:   catalog,
		Output:  output.Writer{Dir: cfg.OutputDir},
		Journal: jr,
		Model:   cfg.Model,
		Logger:  &logger,
	})

	logger.Debug().
		Str("model", cfg.Model).
		Str("output_dir", cfg.OutputDir).
		Bool("journal", jr != nil).
		Str("session", sh.SessionID()).
		Msg("Session starting")

	if mode == "" {
		return sh.Run(cmd.Context())
	}
	return sh.RunMode(cmd.Context(), mode)
}

// loadConfig resolves configuration and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("journal") {
		cfg.JournalEnabled = flagJournal
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openJournal(cfg *config.Config) (*journal.Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	return journal.NewStore(cfg.JournalPath)
}
