// Package confirm asks the user whether a network transfer may start.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Confirmer decides whether a download may proceed.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Func adapts a function to a Confirmer.
type Func func(title, message string) bool

func (f Func) Confirm(title, message string) bool { return f(title, message) }

// Always answers every question with answer.
func Always(answer bool) Confirmer {
	return Func(func(string, string) bool { return answer })
}

// Recorder answers with a fixed value and keeps the questions asked.
type Recorder struct {
	Answer bool

	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Confirm(_, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return r.Answer
}

// Messages returns the questions asked so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Prompt asks on a terminal and reads a y/N answer. When the input is not
// a terminal the fallback answer is used without asking.
type Prompt struct {
	in       *bufio.Reader
	out      io.Writer
	terminal bool
	fallback bool
}

// NewPrompt creates a prompt on stdin/stderr.
func NewPrompt(fallback bool) *Prompt {
	return NewPromptWith(os.Stdin, os.Stderr, isatty.IsTerminal(os.Stdin.Fd()), fallback)
}

// NewPromptWith creates a prompt on the given streams.
func NewPromptWith(in io.Reader, out io.Writer, terminal, fallback bool) *Prompt {
	return &Prompt{
		in:       bufio.NewReader(in),
		out:      out,
		terminal: terminal,
		fallback: fallback,
	}
}

func (p *Prompt) Confirm(title, message string) bool {
	if !p.terminal {
		return p.fallback
	}
	fmt.Fprintf(p.out, "%s\n%s [y/N] ", title, message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
