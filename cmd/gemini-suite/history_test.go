package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/jxucoder/gemini-suite/internal/config"
	"github.com/jxucoder/gemini-suite/internal/journal"
)

// newHistoryDataDir points the config at a fresh data directory and clears
// the values loadConfig validates.
func newHistoryDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.KeyDataDir, dir)
	for _, key := range []string{config.KeyModel, config.KeyBaseURL, config.KeyTimeout} {
		t.Setenv(key, "")
	}
	return dir
}

func seedJournal(t *testing.T, dir string, entries ...*journal.Entry) {
	t.Helper()
	store, err := journal.NewStore(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	for _, e := range entries {
		if err := store.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
}

// runHistory runs fn against a bare command with the given flag values and
// returns what it printed.
func runHistory(t *testing.T, fn func(*cobra.Command, []string) error, args []string, limit int, session string) (string, error) {
	t.Helper()
	prevLimit, prevSession := historyLimit, historySession
	historyLimit, historySession = limit, session
	t.Cleanup(func() { historyLimit, historySession = prevLimit, prevSession })

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

func sampleEntries() []*journal.Entry {
	now := time.Now().UTC()
	return []*journal.Entry{
		{ID: "id-1", SessionID: "sess-a", Mode: "chat", Prompt: "hello", Response: "hi", Kind: "ok", CreatedAt: now.Add(-3 * time.Minute)},
		{ID: "id-2", SessionID: "sess-b", Mode: "summarize", Prompt: "Summarize the following text:\nThe quick brown fox.\n",
			Response: "A fox is quick and brown.", Kind: "ok", OutputFile: "summary.txt", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "id-3", SessionID: "sess-a", Mode: "chat", Prompt: "again", Response: "Error: Could not parse Gemini response.",
			Kind: "transport", Error: "gemini API: connection refused", CreatedAt: now.Add(-1 * time.Minute)},
	}
}

// ---------------------------------------------------------------------------
// history
// ---------------------------------------------------------------------------

func TestHistoryList_NoJournal(t *testing.T) {
	newHistoryDataDir(t)

	out, err := runHistory(t, runHistoryList, nil, 20, "")
	if err != nil {
		t.Fatalf("runHistoryList: %v", err)
	}
	if !strings.Contains(out, "No journal at") {
		t.Errorf("output = %q, want missing-journal notice", out)
	}
}

func TestHistoryList_NewestFirstWithLimit(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	out, err := runHistory(t, runHistoryList, nil, 2, "")
	if err != nil {
		t.Fatalf("runHistoryList: %v", err)
	}
	if !strings.HasPrefix(out, "ID") {
		t.Errorf("missing header:\n%s", out)
	}
	if strings.Contains(out, "id-1") {
		t.Errorf("limit 2 should drop the oldest entry:\n%s", out)
	}
	i3, i2 := strings.Index(out, "id-3"), strings.Index(out, "id-2")
	if i3 < 0 || i2 < 0 || i3 > i2 {
		t.Errorf("want id-3 before id-2:\n%s", out)
	}
	if !strings.Contains(out, "Summarize the following text: The quick brown fox.") {
		t.Errorf("missing flattened prompt preview:\n%s", out)
	}
}

func TestHistoryList_Session(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	out, err := runHistory(t, runHistoryList, nil, 1, "sess-a")
	if err != nil {
		t.Fatalf("runHistoryList: %v", err)
	}
	if strings.Contains(out, "id-2") {
		t.Errorf("other session listed:\n%s", out)
	}
	i1, i3 := strings.Index(out, "id-1"), strings.Index(out, "id-3")
	if i1 < 0 || i3 < 0 || i1 > i3 {
		t.Errorf("want every sess-a exchange oldest first:\n%s", out)
	}
}

func TestHistoryList_UnknownSession(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	out, err := runHistory(t, runHistoryList, nil, 20, "nope")
	if err != nil {
		t.Fatalf("runHistoryList: %v", err)
	}
	if !strings.Contains(out, "No exchanges recorded for session nope.") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryShow(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	out, err := runHistory(t, runHistoryShow, []string{"id-2"}, 20, "")
	if err != nil {
		t.Fatalf("runHistoryShow: %v", err)
	}
	for _, want := range []string{
		"ID:       id-2",
		"Session:  sess-b",
		"Mode:     summarize",
		"Saved to: summary.txt",
		"Prompt:\nSummarize the following text:\nThe quick brown fox.\n",
		"Reply:\nA fox is quick and brown.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Error:") {
		t.Errorf("successful exchange should not print an error line:\n%s", out)
	}
}

func TestHistoryShow_Failure(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	out, err := runHistory(t, runHistoryShow, []string{"id-3"}, 20, "")
	if err != nil {
		t.Fatalf("runHistoryShow: %v", err)
	}
	if !strings.Contains(out, "Result:   transport") || !strings.Contains(out, "Error:    gemini API: connection refused") {
		t.Errorf("output missing failure details:\n%s", out)
	}
}

func TestHistoryShow_NotFound(t *testing.T) {
	dir := newHistoryDataDir(t)
	seedJournal(t, dir, sampleEntries()...)

	_, err := runHistory(t, runHistoryShow, []string{"missing"}, 20, "")
	if !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers and registration
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"Summarize the following text:\nThe quick  brown fox.\n", 60, "Summarize the following text: The quick brown fox."},
		{"abcdefghij", 5, "abcd…"},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := preview(tt.in, tt.n); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestModeCommands(t *testing.T) {
	want := map[string]string{
		"chat":      "",
		"summarize": "summary.txt",
		"email":     "email.txt",
		"resume":    "resume_review.txt",
		"code":      "code_assistant.txt",
	}
	for name, file := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %q not registered: %v", name, err)
		}
		if file != "" && !strings.Contains(cmd.Short, file) {
			t.Errorf("%s short = %q, want mention of %s", name, cmd.Short, file)
		}
	}
}
