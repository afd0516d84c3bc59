// gemini-suite
//
// Chat, summarize text, generate emails, review resumes and get code help
// from Gemini, straight from the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jxucoder/gemini-suite/internal/modes"
)

var version = "dev"

// Persistent flags; a flag that is set wins over env and config file.
var (
	flagAPIKey    string
	flagModel     string
	flagBaseURL   string
	flagTimeout   time.Duration
	flagOutputDir string
	flagJournal   bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "gemini-suite",
	Short: "Gemini CLI Suite - chat, summaries, emails, resume reviews and code help",
	Long: `Gemini CLI Suite relays your text to Gemini and prints (and saves) the reply.

  gemini-suite                    Pick a mode from the menu
  gemini-suite chat               Chat until you type 'exit'
  gemini-suite summarize          Summarize pasted text      -> summary.txt
  gemini-suite email              Write an email             -> email.txt
  gemini-suite resume             Review a resume            -> resume_review.txt
  gemini-suite code               Explain or debug code      -> code_assistant.txt
  gemini-suite config setup       Store your API key (first time)
  gemini-suite history            List recorded exchanges (with --journal)`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, "")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	pf.StringVar(&flagModel, "model", "", "Gemini model (default $GEMINI_MODEL or gemini-2.0-flash)")
	pf.StringVar(&flagBaseURL, "base-url", "", "API base URL (default $GEMINI_BASE_URL)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Request timeout (default $GEMINI_TIMEOUT or 2m)")
	pf.StringVar(&flagOutputDir, "output-dir", "", "Directory for result files (default $GEMINI_SUITE_OUTPUT_DIR or .)")
	pf.BoolVar(&flagJournal, "journal", false, "Record exchanges in the local journal")
	pf.StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error (default warn)")

	for _, m := range modes.Default().All() {
		rootCmd.AddCommand(modeCommand(m))
	}
}

func modeCommand(m *modes.Mode) *cobra.Command {
	name := m.Name
	short := m.Title
	if m.Saves() {
		short = fmt.Sprintf("%s (saves %s)", m.Title, m.OutputFile)
	}
	return &cobra.Command{
		Use:   string(name),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, name)
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
