package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jxucoder/gemini-suite/internal/journal"
)

var (
	historyLimit   int
	historySession string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded exchanges",
	Long: `List exchanges recorded in the local journal, newest first.

Recording is off by default; enable it with --journal or GEMINI_SUITE_JOURNAL=true.

  gemini-suite history                 Last 20 exchanges
  gemini-suite history --limit 0       All exchanges
  gemini-suite history --session ID    One session, in order
  gemini-suite history show <id>       Full prompt and reply`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one exchange in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to list (0 = all)")
	historyCmd.Flags().StringVar(&historySession, "session", "", "List every exchange of one session, oldest first")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// openExistingJournal opens the journal without creating one. It returns a
// nil store when nothing has been recorded yet.
func openExistingJournal(cmd *cobra.Command) (*journal.Store, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(cfg.JournalPath); errors.Is(err, os.ErrNotExist) {
		return nil, cfg.JournalPath, nil
	}
	store, err := journal.NewStore(cfg.JournalPath)
	if err != nil {
		return nil, cfg.JournalPath, fmt.Errorf("opening journal: %w", err)
	}
	return store, cfg.JournalPath, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, path, err := openExistingJournal(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(out, "No journal at %s. Enable it with --journal or GEMINI_SUITE_JOURNAL=true.\n", path)
		return nil
	}
	defer store.Close()

	var entries []*journal.Entry
	if historySession != "" {
		entries, err = store.Session(historySession)
	} else {
		entries, err = store.List(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("listing journal: %w", err)
	}
	if len(entries) == 0 {
		if historySession != "" {
			fmt.Fprintf(out, "No exchanges recorded for session %s.\n", historySession)
			return nil
		}
		fmt.Fprintln(out, "No exchanges recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-10s  %-9s  %-16s  %s\n", "ID", "MODE", "RESULT", "WHEN", "PROMPT")
	for _, e := range entries {
		fmt.Fprintf(out, "%-36s  %-10s  %-9s  %-16s  %s\n",
			e.ID, e.Mode, e.Kind, humanize.Time(e.CreatedAt), preview(e.Prompt, 50))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, path, err := openExistingJournal(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no journal at %s", path)
	}
	defer store.Close()
	out := cmd.OutOrStdout()

	e, err := store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ID:       %s\n", e.ID)
	fmt.Fprintf(out, "Session:  %s\n", e.SessionID)
	fmt.Fprintf(out, "Mode:     %s\n", e.Mode)
	fmt.Fprintf(out, "Model:    %s\n", e.Model)
	fmt.Fprintf(out, "Result:   %s\n", e.Kind)
	if e.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", e.Error)
	}
	if e.OutputFile != "" {
		fmt.Fprintf(out, "Saved to: %s\n", e.OutputFile)
	}
	fmt.Fprintf(out, "When:     %s (%s)\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(e.CreatedAt))
	fmt.Fprintf(out, "\nPrompt:\n%s\n", strings.TrimRight(e.Prompt, "\n"))
	fmt.Fprintf(out, "\nReply:\n%s\n", e.Response)
	return nil
}

// preview flattens s to one line and cuts it to at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
