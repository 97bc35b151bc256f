// Package diag writes the verbosity-gated chat echoes that senders and
// receivers produce for debugging a live session. It is user-facing console
// output, not an operational log; connection lifecycle events go through
// the structured logger instead.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
)

// Printer echoes sent and received messages at a fixed verbosity:
//
//	0:  silent
//	1:  just the message
//	2:  the counterpart's id and the message
//	3:  both ids and the message
//	4+: a two-line verbose form
//
// Each Sender and Receiver carries its own Printer, so verbosity can differ
// per direction and multiple participants in one process don't interfere.
type Printer struct {
	out       io.Writer
	verbosity int
}

// NewPrinter builds a Printer writing to out. A nil out means stdout.
func NewPrinter(out io.Writer, verbosity int) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, verbosity: verbosity}
}

// Sent echoes an outbound message.
func (p *Printer) Sent(selfID int, message string) {
	switch {
	case p.verbosity <= 0:
		return
	case p.verbosity == 2:
		fmt.Fprintf(p.out, "Sent by %d: ", selfID)
	case p.verbosity == 3:
		fmt.Fprintf(p.out, "Sent by %d to all: ", selfID)
	case p.verbosity >= 4:
		fmt.Fprintf(p.out, "Sent by %d to all:\n  -- ", selfID)
	}
	fmt.Fprintln(p.out, color.Blue.Render(message))
}

// Received echoes an inbound message.
func (p *Printer) Received(selfID, senderID int, message string) {
	switch {
	case p.verbosity <= 0:
		return
	case p.verbosity == 2:
		fmt.Fprintf(p.out, "Received from %d: ", senderID)
	case p.verbosity == 3:
		fmt.Fprintf(p.out, "Received by %d from %d: ", selfID, senderID)
	case p.verbosity >= 4:
		fmt.Fprintf(p.out, "Received by %d from %d:\n  -- ", selfID, senderID)
	}
	fmt.Fprintln(p.out, color.Blue.Render(message))
}

// Info prints a status line in blue, regardless of verbosity.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.out, color.Blue.Render(fmt.Sprintf(format, args...)))
}

// Problem prints an error line in red, regardless of verbosity.
func (p *Printer) Problem(format string, args ...any) {
	fmt.Fprintln(p.out, color.Red.Render(fmt.Sprintf(format, args...)))
}
