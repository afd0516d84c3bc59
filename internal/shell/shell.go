// Package shell runs the interactive gemini-suite session: the mode menu,
// sentinel-terminated input, printing replies and saving them to files.
package shell

//go:generate mockgen -source=../../llm/llm.go -destination=mocks/mock_generator.go -package=mocks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jxucoder/gemini-suite/internal/journal"
	"github.com/jxucoder/gemini-suite/internal/modes"
	"github.com/jxucoder/gemini-suite/internal/output"
	"github.com/jxucoder/gemini-suite/llm"
)

const (
	// ExitSentinel ends a chat session.
	ExitSentinel = "exit"
	// EndSentinel ends multi-line input.
	EndSentinel = "END"
)

// Journal records exchanges. *journal.Store satisfies it.
type Journal interface {
	Record(e *journal.Entry) error
}

// Options configures a Shell.
type Options struct {
	In  io.Reader
	Out io.Writer

	// APIKey is handed to Connect. When empty the shell asks for it first.
	APIKey string
	// Connect builds the generator once the API key is known.
	Connect func(apiKey string) llm.Generator

	Modes   *modes.Catalog
	Output  output.Writer
	Journal Journal // optional
	Model   string  // recorded in the journal
	Logger  *zerolog.Logger
}

// Shell is a single interactive session.
type Shell struct {
	in        *bufio.Reader
	out       io.Writer
	apiKey    string
	connect   func(apiKey string) llm.Generator
	gen       llm.Generator
	modes     *modes.Catalog
	output    output.Writer
	journal   Journal
	model     string
	sessionID string
	logger    *zerolog.Logger
}

// New creates a Shell. In and Connect are required.
func New(opts Options) *Shell {
	in, ok := opts.In.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(opts.In)
	}
	catalog := opts.Modes
	if catalog == nil {
		catalog = modes.Default()
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Shell{
		in:        in,
		out:       opts.Out,
		apiKey:    opts.APIKey,
		connect:   opts.Connect,
		modes:     catalog,
		output:    opts.Output,
		journal:   opts.Journal,
		model:     opts.Model,
		sessionID: uuid.NewString(),
		logger:    logger,
	}
}

// SessionID identifies this session's journal entries.
func (s *Shell) SessionID() string {
	return s.sessionID
}

// Run asks for the API key if needed, shows the menu and runs the chosen mode.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\nWelcome to Gemini CLI Suite!")
	fmt.Fprintln(s.out, "Choose mode:")
	for _, m := range s.modes.All() {
		fmt.Fprintf(s.out, "%s. %s\n", m.Key, m.Title)
	}
	fmt.Fprint(s.out, "> ")

	choice, ok := s.readLine()
	m, found := s.modes.Lookup(choice)
	if !ok || !found {
		s.logger.Debug().Str("choice", choice).Msg("Invalid menu choice")
		fmt.Fprintln(s.out, "\nInvalid option. Exiting.")
		s.end()
		return nil
	}

	s.dispatch(ctx, m)
	s.end()
	return nil
}

// RunMode skips the menu and runs a single mode.
func (s *Shell) RunMode(ctx context.Context, name modes.Name) error {
	m, ok := s.modes.Get(name)
	if !ok {
		return fmt.Errorf("unknown mode %q", name)
	}
	if err := s.start(); err != nil {
		return err
	}
	s.dispatch(ctx, m)
	s.end()
	return nil
}

func (s *Shell) start() error {
	if s.gen != nil {
		return nil
	}
	if s.connect == nil {
		return errors.New("shell: no generator configured")
	}
	if s.apiKey == "" {
		fmt.Fprint(s.out, "Enter your Gemini API key: ")
		key, ok := s.readLine()
		if !ok {
			return errors.New("no API key provided")
		}
		s.apiKey = strings.TrimSpace(key)
	}
	s.gen = s.connect(s.apiKey)
	return nil
}

func (s *Shell) end() {
	fmt.Fprintln(s.out, "\nSession ended.")
}

func (s *Shell) dispatch(ctx context.Context, m *modes.Mode) {
	s.logger.Debug().Str("mode", string(m.Name)).Str("session", s.sessionID).Msg("Mode selected")
	if m.Input == modes.InputTurns {
		s.chat(ctx, m)
		return
	}
	s.oneShot(ctx, m)
}

// chat sends each line as an independent prompt until the exit sentinel or EOF.
func (s *Shell) chat(ctx context.Context, m *modes.Mode) {
	fmt.Fprintf(s.out, "\n%s\n", m.Intro)
	for {
		fmt.Fprint(s.out, "\nYou: ")
		line, ok := s.readLine()
		if !ok || line == ExitSentinel {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		prompt, err := m.Render(modes.Fields{Text: line})
		if err != nil {
			s.logger.Error().Err(err).Msg("Rendering prompt failed")
			fmt.Fprintf(s.out, "Could not build prompt: %v\n", err)
			continue
		}
		res := s.gen.Generate(ctx, prompt)
		fmt.Fprintf(s.out, "Gemini: %s\n", res.Text)
		s.record(m, prompt, res, "")
	}
}

// oneShot collects input, makes one call, prints and saves the result.
func (s *Shell) oneShot(ctx context.Context, m *modes.Mode) {
	fields := s.collect(m)
	prompt, err := m.Render(fields)
	if err != nil {
		s.logger.Error().Err(err).Msg("Rendering prompt failed")
		fmt.Fprintf(s.out, "\nCould not build prompt: %v\n", err)
		return
	}

	res := s.gen.Generate(ctx, prompt)
	fmt.Fprintf(s.out, "\n%s\n%s\n", m.Heading, res.Text)

	saved := ""
	if m.Saves() {
		path, err := s.output.Save(m.OutputFile, res.Text)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", m.OutputFile).Msg("Saving result failed")
			fmt.Fprintf(s.out, "\n⚠️ Could not save %s to file.\n", strings.ToLower(m.Label))
		} else {
			saved = path
			fmt.Fprintf(s.out, "\n✅ %s saved to %s\n", m.Label, path)
		}
	}
	s.record(m, prompt, res, saved)
}

func (s *Shell) collect(m *modes.Mode) modes.Fields {
	switch m.Input {
	case modes.InputSubjectDetails:
		fmt.Fprint(s.out, "\nEnter email subject: ")
		subject, _ := s.readLine()
		fmt.Fprintln(s.out, "Enter details or purpose of the email:")
		details, _ := s.readLine()
		return modes.Fields{Subject: subject, Details: details}
	default:
		fmt.Fprintf(s.out, "\n%s\n", m.Intro)
		return modes.Fields{Text: s.readUntil(EndSentinel)}
	}
}

// readLine returns the next line without its terminator. ok is false once
// input is exhausted.
func (s *Shell) readLine() (string, bool) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Warn().Err(err).Msg("Reading input failed")
		}
		if line == "" {
			return "", false
		}
	}
	return strings.TrimRight(line, "\r\n"), true
}

// readUntil joins lines up to the sentinel line or EOF, keeping a newline
// after each line.
func (s *Shell) readUntil(sentinel string) string {
	var b strings.Builder
	for {
		line, ok := s.readLine()
		if !ok || line == sentinel {
			return b.String()
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func (s *Shell) record(m *modes.Mode, prompt string, res llm.Result, outputFile string) {
	if s.journal == nil {
		return
	}
	e := &journal.Entry{
		SessionID:  s.sessionID,
		Mode:       string(m.Name),
		Model:      s.model,
		Prompt:     prompt,
		Response:   res.Text,
		Kind:       string(res.Kind),
		OutputFile: outputFile,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if err := s.journal.Record(e); err != nil {
		s.logger.Warn().Err(err).Msg("Recording exchange failed")
	}
}
