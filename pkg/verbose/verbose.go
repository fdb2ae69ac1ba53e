// Package verbose writes styled status output to a terminal: timestamped
// messages, aligned key/value blocks and separator rules.
package verbose

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

// ansi 256-colour index used for timestamps and keys
const accent = 208

// rfc2822 is RFC 2822 without zero-padding the day of month
const rfc2822 = "Mon, 2 Jan 2006 15:04:05 -0700"

// Printer renders styled lines to an output stream
type Printer struct {
	out   io.Writer
	width func() (int, bool)
	now   func() time.Time

	lead  *color.Color
	key   *color.Color
	value *color.Color
	rule  *color.Color
}

// Option configures a Printer
type Option func(*Printer)

// WithWidth fixes the separator width instead of asking the terminal.
// Values <= 0 keep terminal detection.
func WithWidth(n int) Option {
	return func(p *Printer) {
		if n > 0 {
			p.width = func() (int, bool) { return n, true }
		}
	}
}

// WithColor forces colour on or off regardless of the NO_COLOR and TTY
// checks done by fatih/color.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		for _, c := range []*color.Color{p.lead, p.key, p.value, p.rule} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithClock replaces the clock used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Printer) {
		p.now = now
	}
}

// New creates a Printer writing to out
func New(out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:   out,
		width: func() (int, bool) { return terminalWidth(out) },
		now:   time.Now,
		lead:  color.New(38, 5, accent),
		key:   color.New(38, 5, accent),
		value: color.New(color.FgGreen),
		rule:  color.New(color.FgBlue),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Say writes a single message prefixed with an RFC 2822 UTC timestamp
func (p *Printer) Say(message string) error {
	lead := p.lead.Sprintf("[ %s ] :: ", p.now().UTC().Format(rfc2822))
	_, err := fmt.Fprintln(p.out, lead+message)
	return err
}

// Sayf formats and writes a timestamped message
func (p *Printer) Sayf(format string, args ...interface{}) error {
	return p.Say(fmt.Sprintf(format, args...))
}

// HeaderLines writes one "key :: value" line per entry, keys sorted and
// padded to the longest key.
func (p *Printer) HeaderLines(lines map[string]string) error {
	keys := make([]string, 0, len(lines))
	pad := 0
	for k := range lines {
		keys = append(keys, k)
		if n := utf8.RuneCountInString(k); n > pad {
			pad = n
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		line := fmt.Sprintf("%s :: %s",
			p.key.Sprintf("%-*s", pad, k),
			p.value.Sprint(lines[k]))
		if _, err := fmt.Fprintln(p.out, line); err != nil {
			return err
		}
	}
	return nil
}

// PaddingLine writes a blank line, a rule as wide as the terminal and
// another blank line. Nothing is written when the width is unknown.
func (p *Printer) PaddingLine() error {
	width, ok := p.width()
	if !ok || width <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(p.out, "\n%s\n\n", p.rule.Sprint(strings.Repeat("-", width)))
	return err
}

// Announce echoes preload as plain "key: value" lines, then writes info
// merged over preload between two padding lines.
func (p *Printer) Announce(info, preload map[string]string) error {
	merged := make(map[string]string, len(info)+len(preload))
	keys := make([]string, 0, len(preload))
	for k, v := range preload {
		merged[k] = v
		keys = append(keys, k)
	}
	for k, v := range info {
		merged[k] = v
	}

	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(p.out, "%s: %s\n", k, preload[k]); err != nil {
			return err
		}
	}

	if err := p.PaddingLine(); err != nil {
		return err
	}
	if err := p.HeaderLines(merged); err != nil {
		return err
	}
	return p.PaddingLine()
}
