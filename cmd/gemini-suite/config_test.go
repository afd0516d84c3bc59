package main

import (
	"os"
	"strings"
	"testing"

	"github.com/jxucoder/gemini-suite/internal/config"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"exactly12chr", "************"},
		{"AIzaSyABCDEFGH1234", "AIza**********1234"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigKeyValidate(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{config.KeyAPIKey, "AIzaSyExample", false},
		{config.KeyAPIKey, "sk-not-a-gemini-key", true},
		{config.KeyModel, "anything-goes", false},
		{config.KeyBaseURL, "http://localhost:8080/v1beta", false},
		{config.KeyBaseURL, "localhost:8080", true},
		{config.KeyBaseURL, "http://exa mple.com", true},
		{config.KeyTimeout, "90s", false},
		{config.KeyTimeout, "-1s", true},
		{config.KeyTimeout, "soon", true},
		{config.KeyJournal, "TRUE", false},
		{config.KeyJournal, "maybe", true},
		{config.KeyLogLevel, "debug", false},
		{config.KeyLogLevel, "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			ck, ok := findKey(tt.key)
			if !ok {
				t.Fatalf("findKey(%q) not found", tt.key)
			}
			err := ck.validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFindKey_Unknown(t *testing.T) {
	if _, ok := findKey("GITHUB_TOKEN"); ok {
		t.Fatal("expected unknown key")
	}
}

// ---------------------------------------------------------------------------
// Config file round trip
// ---------------------------------------------------------------------------

func TestConfigFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.KeyDataDir, dir)

	values, err := loadConfigFile()
	if err != nil {
		t.Fatalf("loadConfigFile on missing file: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty map, got %v", values)
	}

	values[config.KeyAPIKey] = "AIza key with spaces"
	values[config.KeyModel] = "gemini-1.5-pro"
	values[config.KeyOutputDir] = ""
	if err := saveConfigFile(values); err != nil {
		t.Fatalf("saveConfigFile: %v", err)
	}

	info, err := os.Stat(config.FilePath())
	if err != nil {
		t.Fatalf("stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	raw, err := os.ReadFile(config.FilePath())
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "# gemini-suite configuration") {
		t.Errorf("missing header:\n%s", raw)
	}
	if strings.Contains(string(raw), config.KeyOutputDir) {
		t.Errorf("empty values should not be written:\n%s", raw)
	}

	got, err := loadConfigFile()
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if got[config.KeyAPIKey] != "AIza key with spaces" {
		t.Errorf("%s = %q", config.KeyAPIKey, got[config.KeyAPIKey])
	}
	if got[config.KeyModel] != "gemini-1.5-pro" {
		t.Errorf("%s = %q", config.KeyModel, got[config.KeyModel])
	}
}

func TestConfigFile_FeedsLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.KeyDataDir, dir)
	t.Setenv(config.KeyModel, "")
	os.Unsetenv(config.KeyModel)

	if err := saveConfigFile(map[string]string{config.KeyModel: "gemini-1.5-flash"}); err != nil {
		t.Fatalf("saveConfigFile: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q, want value from saved file", cfg.Model)
	}
}

func TestEffectiveValue_EnvWins(t *testing.T) {
	t.Setenv(config.KeyModel, "from-env")
	file := map[string]string{config.KeyModel: "from-file", config.KeyOutputDir: "/out"}

	if got := effectiveValue(config.KeyModel, file); got != "from-env" {
		t.Errorf("effectiveValue = %q, want env value", got)
	}
	if got := effectiveValue(config.KeyOutputDir, file); got != "/out" {
		t.Errorf("effectiveValue = %q, want file value", got)
	}
}

// ---------------------------------------------------------------------------
// Wizard
// ---------------------------------------------------------------------------

func TestWizard_AskValueRetriesInvalidInput(t *testing.T) {
	t.Setenv(config.KeyAPIKey, "")
	os.Unsetenv(config.KeyAPIKey)

	var out strings.Builder
	w := newWizard(strings.NewReader("sk-wrong\nAIzaGood\n"), &out, map[string]string{})
	ck, _ := findKey(config.KeyAPIKey)

	changed, err := w.askValue(ck)
	if err != nil {
		t.Fatalf("askValue: %v", err)
	}
	if !changed || w.changed != 1 {
		t.Fatalf("changed = %v (%d), want one accepted value", changed, w.changed)
	}
	if w.fileValues[config.KeyAPIKey] != "AIzaGood" {
		t.Errorf("stored %q", w.fileValues[config.KeyAPIKey])
	}
	if !strings.Contains(out.String(), `expected prefix "AIza"`) {
		t.Errorf("expected a validation hint, got:\n%s", out.String())
	}
}

func TestWizard_EnterKeepsValue(t *testing.T) {
	var out strings.Builder
	w := newWizard(strings.NewReader("\n"), &out, map[string]string{config.KeyModel: "gemini-1.5-pro"})
	ck, _ := findKey(config.KeyModel)

	changed, err := w.askValue(ck)
	if err != nil {
		t.Fatalf("askValue: %v", err)
	}
	if changed {
		t.Fatal("expected value to be kept")
	}
	if w.fileValues[config.KeyModel] != "gemini-1.5-pro" {
		t.Errorf("value changed to %q", w.fileValues[config.KeyModel])
	}
}

func TestWizard_AskYesNo(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"\n", false, false},
		{"\n", true, true},
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
	}
	for _, tt := range tests {
		var out strings.Builder
		w := newWizard(strings.NewReader(tt.input), &out, map[string]string{})
		got, err := w.askYesNo("Continue?", tt.defaultYes)
		if err != nil {
			t.Fatalf("askYesNo(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("askYesNo(%q, %v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
		}
	}
}
