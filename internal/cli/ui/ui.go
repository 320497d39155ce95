// Package ui prints user-facing messages for the algohub CLI.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// LoginHint tells the user how to start a new session
const LoginHint = "Run 'algohub login' to sign in"

// Printer writes styled messages to one writer. It is safe for concurrent
// use, so it can receive notices from background verification.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a printer on out
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// DisableColor turns off ANSI styling for every printer
func DisableColor() {
	pterm.DisableStyling()
}

// Writer returns the underlying writer, for tables and plain output
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) Success(format string, args ...any) {
	p.print(pterm.Success, format, args...)
}

func (p *Printer) Info(format string, args ...any) {
	p.print(pterm.Info, format, args...)
}

// Warn shows a warning. It also satisfies the session notifier.
func (p *Printer) Warn(message string) {
	p.print(pterm.Warning, "%s", message)
}

func (p *Printer) Error(format string, args ...any) {
	p.print(pterm.Error, format, args...)
}

// Println writes an unstyled line
func (p *Printer) Println(args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Fprintln(p.out, args...)
}

// Printf writes unstyled formatted text
func (p *Printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Fprint(p.out, fmt.Sprintf(format, args...))
}

// Box prints body inside a titled box
func (p *Printer) Box(title, body string) {
	box := pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(body)

	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Fprintln(p.out, box)
}

// RedirectToLogin points the user at the login command. A terminal client
// has no page to navigate to, so the redirect is a hint.
func (p *Printer) RedirectToLogin() {
	p.print(pterm.Info, "%s", LoginHint)
}

func (p *Printer) print(prefix pterm.PrefixPrinter, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix.WithWriter(p.out).Printfln(format, args...)
}
