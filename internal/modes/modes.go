// Package modes defines the interaction modes of the suite: how input is
// collected, how it is wrapped into a prompt, and where the result is saved.
package modes

import (
	"fmt"
	"strings"
	"text/template"
)

// Name identifies a mode.
type Name string

const (
	Chat      Name = "chat"
	Summarize Name = "summarize"
	Email     Name = "email"
	Resume    Name = "resume"
	Code      Name = "code"
)

// Input describes how the shell collects a mode's raw text.
type Input int

const (
	// InputTurns reads one line per turn until the exit sentinel.
	InputTurns Input = iota
	// InputUntilEnd reads lines until the END sentinel line.
	InputUntilEnd
	// InputSubjectDetails reads a subject line and then a details line.
	InputSubjectDetails
)

// Fields are the values available to a prompt template.
type Fields struct {
	Text    string
	Subject string
	Details string
}

// Mode is one entry of the menu.
type Mode struct {
	Name  Name
	Key   string // menu choice, "1".."5"
	Title string // menu label
	Input Input

	// Intro is printed before collecting input.
	Intro string
	// Heading is printed above the generated text.
	Heading string
	// OutputFile is the fixed file name the result is saved to; empty for chat.
	OutputFile string
	// Label names the saved artifact in status lines ("Summary", "Feedback").
	Label string

	source string
	tmpl   *template.Template
}

// Template returns the template source used to build prompts.
func (m *Mode) Template() string {
	return m.source
}

// Saves reports whether the mode persists its result.
func (m *Mode) Saves() bool {
	return m.OutputFile != ""
}

// Render wraps the operator's input into the final prompt.
func (m *Mode) Render(f Fields) (string, error) {
	var b strings.Builder
	if err := m.tmpl.Execute(&b, f); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", m.Name, err)
	}
	return b.String(), nil
}

// setTemplate parses src and checks it renders against Fields.
func (m *Mode) setTemplate(src string) error {
	t, err := template.New(string(m.Name)).Option("missingkey=error").Parse(src)
	if err != nil {
		return fmt.Errorf("parsing %s template: %w", m.Name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, Fields{}); err != nil {
		return fmt.Errorf("checking %s template: %w", m.Name, err)
	}
	m.source = src
	m.tmpl = t
	return nil
}

// Catalog is the ordered set of modes offered by the menu.
type Catalog struct {
	modes []*Mode
}

// Default returns the built-in modes.
func Default() *Catalog {
	defs := []struct {
		mode Mode
		tmpl string
	}{
		{Mode{
			Name: Chat, Key: "1", Title: "Chat", Input: InputTurns,
			Intro: "Chat mode started. Type 'exit' to quit.",
		}, "{{.Text}}"},
		{Mode{
			Name: Summarize, Key: "2", Title: "Summarize", Input: InputUntilEnd,
			Intro:      "Paste the text to summarize (type 'END' on a new line to finish):",
			Heading:    "Summary:",
			OutputFile: "summary.txt",
			Label:      "Summary",
		}, "Summarize the following text:\n{{.Text}}"},
		{Mode{
			Name: Email, Key: "3", Title: "Email Generator", Input: InputSubjectDetails,
			Heading:    "Generated Email:",
			OutputFile: "email.txt",
			Label:      "Email",
		}, "Write a professional email with subject: '{{.Subject}}'. The details are: {{.Details}}"},
		{Mode{
			Name: Resume, Key: "4", Title: "Resume Reviewer", Input: InputUntilEnd,
			Intro:      "Paste your resume content (type 'END' on a new line to finish):",
			Heading:    "Resume Feedback:",
			OutputFile: "resume_review.txt",
			Label:      "Feedback",
		}, "Review the following resume and provide constructive feedback and improvement suggestions:\n{{.Text}}"},
		{Mode{
			Name: Code, Key: "5", Title: "Code Assistant", Input: InputUntilEnd,
			Intro:      "Paste your code snippet or problem (type 'END' on a new line to finish):",
			Heading:    "Code Assistant Response:",
			OutputFile: "code_assistant.txt",
			Label:      "Response",
		}, "Explain or help debug the following code:\n{{.Text}}"},
	}

	c := &Catalog{}
	for _, d := range defs {
		m := d.mode
		if err := m.setTemplate(d.tmpl); err != nil {
			panic(err) // built-in templates are constant
		}
		c.modes = append(c.modes, &m)
	}
	return c
}

// All returns the modes in menu order.
func (c *Catalog) All() []*Mode {
	return c.modes
}

// Get returns the mode with the given name.
func (c *Catalog) Get(name Name) (*Mode, bool) {
	for _, m := range c.modes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Lookup resolves a menu choice: either the numeric key or the mode name.
func (c *Catalog) Lookup(choice string) (*Mode, bool) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	for _, m := range c.modes {
		if m.Key == choice || string(m.Name) == choice {
			return m, true
		}
	}
	return nil, false
}
