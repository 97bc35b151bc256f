package mqchat

import (
	"errors"
	"io"
	"os"

	"github.com/peerwire/mqchat/diag"
)

var ErrNoHandler = errors.New("receiver requires a message handler")

// Handler acts on messages that arrive from other participants.
//
// ActOnMessage runs on the connection's background goroutine, not on the
// goroutine that called Activate. If the implementation touches state that
// a foreground loop also reads, the implementation must do its own
// synchronization, or hand the message off through a channel the way
// cmd/walkers does.
type Handler interface {
	ActOnMessage(message string, senderID int)
}

// Receiver hands inbound messages to a caller-supplied Handler.
type Receiver struct {
	handler Handler
	printer *diag.Printer
}

// NewReceiver wires a handler to inbound messages. The handler must not be
// nil; everything else about its shape is enforced by the Handler interface
// at compile time.
func NewReceiver(handler Handler, verbosity int) (*Receiver, error) {
	return newReceiver(handler, verbosity, os.Stdout)
}

func newReceiver(handler Handler, verbosity int, out io.Writer) (*Receiver, error) {
	printer := diag.NewPrinter(out, verbosity)
	if handler == nil {
		printer.Problem("You constructed a Receiver without a handler.")
		printer.Problem("The first argument must be a value implementing:")
		printer.Problem("  ActOnMessage(message string, senderID int)")
		return nil, ErrNoHandler
	}
	return &Receiver{handler: handler, printer: printer}, nil
}

// deliver echoes the message per verbosity, then invokes the handler
// synchronously. Handler panics propagate; containing them is the talker's
// job, since it owns the receive loop.
func (r *Receiver) deliver(m Message, recipientID int) {
	r.printer.Received(recipientID, m.SenderID, m.Text)
	r.handler.ActOnMessage(m.Text, m.SenderID)
}
