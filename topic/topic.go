// Package topic derives broker topic names from participant identity.
//
// Every participant publishes to exactly one topic of the form
// "{session}/computer-{id}" and subscribes to the corresponding topics of
// every other participant. All functions are pure.
package topic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("topic does not carry a participant number")

// Name returns the topic that participant id publishes to within a session.
func Name(session string, id int) string {
	return fmt.Sprintf("%s/computer-%d", session, id)
}

// Peers returns the topics of every other participant in the session,
// in participant order.
func Peers(session string, id, count int) []string {
	peers := make([]string, 0, count-1)
	for k := 1; k <= count; k++ {
		if k != id {
			peers = append(peers, Name(session, k))
		}
	}
	return peers
}

// SenderID decodes the participant number back out of a topic produced by
// Name. Topics are self-generated, so a failure here means the naming
// contract was broken somewhere and should be treated as a defect.
func SenderID(topic string) (int, error) {
	idx := strings.LastIndex(topic, "-")
	if idx < 0 || idx == len(topic)-1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, topic)
	}
	id, err := strconv.Atoi(topic[idx+1:])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, topic)
	}
	return id, nil
}
