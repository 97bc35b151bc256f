package mqchat

import (
	"io"
	"os"

	"github.com/peerwire/mqchat/diag"
)

// Sender publishes messages to every other participant in the session.
// It does nothing useful until Activate has connected it to a broker.
type Sender struct {
	id      int
	count   int
	printer *diag.Printer

	talker *Talker // set by Activate
}

// NewSender creates the outbound half for participant id out of count
// participants. Verbosity controls how loudly sent messages are echoed.
func NewSender(id, count, verbosity int) *Sender {
	return newSender(id, count, verbosity, os.Stdout)
}

func newSender(id, count, verbosity int, out io.Writer) *Sender {
	return &Sender{
		id:      id,
		count:   count,
		printer: diag.NewPrinter(out, verbosity),
	}
}

// ID returns this participant's number.
func (s *Sender) ID() int { return s.id }

// Count returns how many participants the session has.
func (s *Sender) Count() int { return s.count }

// Send publishes message to all other participants. Calling Send before
// Activate is not an error: the message is dropped with a diagnostic so
// that a live chat loop keeps running.
func (s *Sender) Send(message string) {
	if s.talker == nil {
		s.printer.Problem("It appears that this Sender has NOT been activated.")
		s.printer.Problem("No message will be sent.")
		return
	}
	s.printer.Sent(s.id, message)
	s.talker.publish(message)
}
