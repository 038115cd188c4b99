package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/syssam/crudgen/compiler/gen"
)

// actionColors holds the color of every reported action.
var actionColors = map[gen.Action]*color.Color{
	gen.ActionCreated:     color.New(color.FgGreen),
	gen.ActionOverwritten: color.New(color.FgCyan),
	gen.ActionSkipped:     color.New(color.FgYellow),
	gen.ActionBackedUp:    color.New(color.FgBlue),
	gen.ActionRestored:    color.New(color.FgGreen),
	gen.ActionDeleted:     color.New(color.FgMagenta),
	gen.ActionFailed:      color.New(color.FgRed, color.Bold),
	gen.ActionWarning:     color.New(color.FgYellow),
}

// printer reports generation events, one line each.
type printer struct {
	w io.Writer
	// quiet hides backed up events.
	quiet bool
}

// Report implements gen.Reporter.
func (p *printer) Report(e gen.Event) {
	if p.quiet && e.Action == gen.ActionBackedUp {
		return
	}
	label := fmt.Sprintf("%-11s", e.Action)
	if c, ok := actionColors[e.Action]; ok {
		label = c.Sprint(label)
	}
	fmt.Fprintf(p.w, "%s %s\n", label, describe(e))
}

// describe returns the event without its action.
func describe(e gen.Event) string {
	s := strings.TrimPrefix(e.String(), string(e.Action))
	return strings.TrimSpace(strings.TrimPrefix(s, ":"))
}

// summary prints the end-of-run counts.
func summary(w io.Writer, r *gen.Report) {
	line := "Done: " + r.Summary()
	if r.Backup != "" {
		line += fmt.Sprintf(" (backup %s)", r.Backup)
	}
	if r.Failed() {
		color.New(color.FgRed).Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, line)
}

// prompt asks yes/no questions on a terminal.
type prompt struct {
	in  *bufio.Reader
	out io.Writer
	// yes answers every question without reading input.
	yes bool
}

func newPrompt(in io.Reader, out io.Writer, yes bool) *prompt {
	return &prompt{in: bufio.NewReader(in), out: out, yes: yes}
}

// Confirm implements gen.Confirmer. Anything but "y" or "yes" declines,
// including the end of input.
func (p *prompt) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.yes {
		return true, nil
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
