package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jxucoder/gemini-suite/internal/config"
)

// configKey describes a single configuration value.
type configKey struct {
	Key    string
	Desc   string
	Secret bool
	Prefix string // expected prefix for validation (e.g. "AIza"), empty = no check
	// Check validates a non-empty value; nil = any value.
	Check func(string) error
}

// allConfigKeys lists every configurable value in display order.
var allConfigKeys = []configKey{
	{Key: config.KeyAPIKey, Desc: "Gemini API key (from Google AI Studio)", Secret: true, Prefix: "AIza"},
	{Key: config.KeyModel, Desc: "Gemini model name"},
	{Key: config.KeyBaseURL, Desc: "API base URL", Check: checkURL},
	{Key: config.KeyTimeout, Desc: "Request timeout (e.g. 90s, 2m)", Check: checkDuration},
	{Key: config.KeyOutputDir, Desc: "Directory for result files"},
	{Key: config.KeyTemplates, Desc: "YAML file overriding mode templates"},
	{Key: config.KeyJournal, Desc: "Record exchanges in the local journal (true/false)", Check: checkBool},
	{Key: config.KeyLogLevel, Desc: "Diagnostic log level (debug, info, warn, error)", Check: checkLevel},
}

// ---------------------------------------------------------------------------
// Cobra commands
// ---------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gemini-suite configuration",
	Long: `Manage gemini-suite configuration (API key, model, output directory, etc.).

Configuration is stored in ~/.gemini-suite/config.env and can be overridden
by environment variables or a .env file in the working directory.

  gemini-suite config setup              Interactive setup wizard
  gemini-suite config set KEY VALUE      Set a single config value
  gemini-suite config show               Show current configuration
  gemini-suite config path               Print config file path`,
}

var setupNonInteractive bool

var configSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Long: `Guided setup that stores your Gemini API key and preferences.

Non-interactive mode for CI/scripting:
  gemini-suite config setup --non-interactive --api-key=AIza... [--model=gemini-1.5-pro]`,
	Args: cobra.NoArgs,
	RunE: runConfigSetup,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value. Example:
  gemini-suite config set GEMINI_MODEL gemini-1.5-pro`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all configured values. Secrets are masked.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

func init() {
	configSetupCmd.Flags().BoolVar(&setupNonInteractive, "non-interactive", false, "Run without prompts (requires --api-key)")

	configCmd.AddCommand(configSetupCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// ---------------------------------------------------------------------------
// Config file helpers
// ---------------------------------------------------------------------------

// loadConfigFile reads key=value pairs from the config file.
func loadConfigFile() (map[string]string, error) {
	values, err := godotenv.Read(config.FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	return values, err
}

// saveConfigFile writes key=value pairs to the config file.
func saveConfigFile(values map[string]string) error {
	path := config.FilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	kept := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" {
			kept[k] = v
		}
	}
	body, err := godotenv.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	header := "# gemini-suite configuration\n" +
		"# Managed by: gemini-suite config\n" +
		"# Environment variables override these values.\n\n"
	if err := os.WriteFile(path, []byte(header+body+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// effectiveValue returns the current value for a key, preferring env vars over config file.
func effectiveValue(key string, fileValues map[string]string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValues[key]
}

// maskSecret masks a secret string, showing only the first 4 and last 4 characters.
func maskSecret(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

// findKey looks up a configKey by name.
func findKey(name string) (configKey, bool) {
	for _, ck := range allConfigKeys {
		if ck.Key == name {
			return ck, true
		}
	}
	return configKey{Key: name}, false
}

// validate reports why value is unacceptable for ck, or nil.
func (ck configKey) validate(value string) error {
	if ck.Prefix != "" && !strings.HasPrefix(value, ck.Prefix) {
		return fmt.Errorf("expected prefix %q", ck.Prefix)
	}
	if ck.Check != nil {
		return ck.Check(value)
	}
	return nil
}

func checkURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return errors.New("expected an http(s) URL")
	}
	return nil
}

func checkDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return errors.New("expected a positive duration such as 90s or 2m")
	}
	return nil
}

func checkBool(v string) error {
	switch strings.ToLower(v) {
	case "1", "0", "t", "f", "true", "false":
		return nil
	}
	return errors.New("expected true or false")
}

func checkLevel(v string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(v)); err != nil {
		return errors.New("expected debug, info, warn or error")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Interactive helpers
// ---------------------------------------------------------------------------

// wizard holds shared state for the interactive setup.
type wizard struct {
	reader     *bufio.Reader
	out        io.Writer
	fileValues map[string]string
	changed    int // number of values the user entered or changed
}

// newWizard creates a wizard with existing config values loaded.
func newWizard(in io.Reader, out io.Writer, fileValues map[string]string) *wizard {
	return &wizard{
		reader:     bufio.NewReader(in),
		out:        out,
		fileValues: fileValues,
	}
}

// askYesNo asks a yes/no question and returns true for yes.
// defaultYes controls what happens when the user presses Enter.
func (w *wizard) askYesNo(prompt string, defaultYes bool) (bool, error) {
	hint := "[Y/n]"
	if !defaultYes {
		hint = "[y/N]"
	}
	fmt.Fprintf(w.out, "  %s %s ", prompt, hint)
	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return false, err
	}
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultYes, nil
	}
	return input == "y" || input == "yes", nil
}

// askValue prompts for a single config value with validation.
// Returns true if a new value was accepted.
func (w *wizard) askValue(ck configKey) (bool, error) {
	current := effectiveValue(ck.Key, w.fileValues)

	status := "\033[31m✗ not set\033[0m"
	if current != "" {
		if ck.Secret {
			status = fmt.Sprintf("\033[32m✓ set\033[0m (%s)", maskSecret(current))
		} else {
			status = fmt.Sprintf("\033[32m✓ set\033[0m (%s)", current)
		}
	}

	fmt.Fprintf(w.out, "  %s  %s\n", ck.Key, status)
	fmt.Fprintf(w.out, "  %s\n", ck.Desc)

	for {
		fmt.Fprint(w.out, "  Value (Enter to keep): ")
		input, err := w.reader.ReadString('\n')
		if err != nil && input == "" {
			return false, err
		}
		input = strings.TrimSpace(input)

		if input == "" {
			return false, nil
		}

		if err := ck.validate(input); err != nil {
			fmt.Fprintf(w.out, "  \033[33m!\033[0m  That doesn't look right: %v. Try again or press Enter to skip.\n", err)
			continue
		}

		w.fileValues[ck.Key] = input
		w.changed++
		fmt.Fprintf(w.out, "  \033[32m✓ saved\033[0m\n")
		return true, nil
	}
}

// ---------------------------------------------------------------------------
// Setup wizard
// ---------------------------------------------------------------------------

func runConfigSetup(cmd *cobra.Command, args []string) error {
	fileValues, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if setupNonInteractive {
		return runNonInteractiveSetup(cmd, fileValues)
	}

	out := cmd.OutOrStdout()
	w := newWizard(cmd.InOrStdin(), out, fileValues)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  \033[1mGemini CLI Suite Setup\033[0m")
	fmt.Fprintln(out, "  ──────────────────────")
	fmt.Fprintln(out, "  Press Enter at any prompt to keep the current value.")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  \033[1mStep 1 of 2: API Key\033[0m")
	fmt.Fprintln(out, "  Create a key at: \033[4mhttps://aistudio.google.com/app/apikey\033[0m")
	fmt.Fprintln(out, "  Without one, gemini-suite asks for the key every time it starts.")
	fmt.Fprintln(out)

	apiKey, _ := findKey(config.KeyAPIKey)
	if _, err := w.askValue(apiKey); err != nil {
		return err
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  \033[1mStep 2 of 2: Preferences (optional)\033[0m")
	more, err := w.askYesNo("Change model, output directory or journal settings?", false)
	if err != nil {
		return err
	}
	if more {
		for _, name := range []string{config.KeyModel, config.KeyOutputDir, config.KeyJournal} {
			fmt.Fprintln(out)
			ck, _ := findKey(name)
			if _, err := w.askValue(ck); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(out)

	if w.changed == 0 {
		fmt.Fprintln(out, "  Nothing changed.")
		return nil
	}
	if err := saveConfigFile(w.fileValues); err != nil {
		return err
	}

	fmt.Fprintf(out, "  Saved %d value(s) to %s\n", w.changed, config.FilePath())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  \033[1mNext Steps\033[0m")
	fmt.Fprintln(out, "  ──────────")
	fmt.Fprintln(out, "  1. Pick a mode from the menu:  gemini-suite")
	fmt.Fprintln(out, "  2. Or jump straight in:        gemini-suite summarize")
	fmt.Fprintln(out)
	return nil
}

// runNonInteractiveSetup handles --non-interactive mode. It takes values
// from the persistent --api-key and --model flags.
func runNonInteractiveSetup(cmd *cobra.Command, fileValues map[string]string) error {
	if flagAPIKey == "" {
		return errors.New("--api-key is required in non-interactive mode")
	}
	apiKey, _ := findKey(config.KeyAPIKey)
	if err := apiKey.validate(flagAPIKey); err != nil {
		return fmt.Errorf("invalid --api-key: %w", err)
	}
	fileValues[config.KeyAPIKey] = flagAPIKey
	if cmd.Flags().Changed("model") {
		fileValues[config.KeyModel] = flagModel
	}

	if err := saveConfigFile(fileValues); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", config.FilePath())
	return nil
}

// ---------------------------------------------------------------------------
// config set / config show
// ---------------------------------------------------------------------------

// runConfigSet sets a single key=value in the config file.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])

	ck, known := findKey(key)
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := ck.validate(value); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	fileValues, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	fileValues[key] = value
	if err := saveConfigFile(fileValues); err != nil {
		return err
	}

	display := value
	if ck.Secret {
		display = maskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, display)
	return nil
}

// runConfigShow displays the current effective configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	fileValues, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n\n", config.FilePath())

	for _, ck := range allConfigKeys {
		value := effectiveValue(ck.Key, fileValues)
		source := ""
		if os.Getenv(ck.Key) != "" {
			source = " (from env)"
		} else if fileValues[ck.Key] != "" {
			source = " (from config file)"
		}

		display := "(default)"
		if value != "" {
			if ck.Secret {
				display = maskSecret(value)
			} else {
				display = value
			}
		}

		fmt.Fprintf(out, "  %-25s %s%s\n", ck.Key, display, source)
	}
	return nil
}
