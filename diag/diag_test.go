package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		contains  []string
		excludes  []string
	}{
		{name: "silent", verbosity: 0, excludes: []string{"hello"}},
		{name: "message only", verbosity: 1, contains: []string{"hello"}, excludes: []string{"Sent"}},
		{name: "with own id", verbosity: 2, contains: []string{"Sent by 1: ", "hello"}},
		{name: "with both ids", verbosity: 3, contains: []string{"Sent by 1 to all: ", "hello"}},
		{name: "verbose", verbosity: 5, contains: []string{"Sent by 1 to all:\n  -- ", "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewPrinter(buf, tt.verbosity).Sent(1, "hello")

			out := buf.String()
			for _, want := range tt.contains {
				require.Contains(t, out, want)
			}
			for _, not := range tt.excludes {
				require.NotContains(t, out, not)
			}
			if tt.verbosity == 0 {
				require.Empty(t, out)
			}
		})
	}
}

func TestReceivedVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		contains  []string
		excludes  []string
	}{
		{name: "silent", verbosity: 0, excludes: []string{"hello"}},
		{name: "message only", verbosity: 1, contains: []string{"hello"}, excludes: []string{"Received"}},
		{name: "with sender id", verbosity: 2, contains: []string{"Received from 2: ", "hello"}},
		{name: "with both ids", verbosity: 3, contains: []string{"Received by 1 from 2: ", "hello"}},
		{name: "verbose", verbosity: 4, contains: []string{"Received by 1 from 2:\n  -- ", "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewPrinter(buf, tt.verbosity).Received(1, 2, "hello")

			out := buf.String()
			for _, want := range tt.contains {
				require.Contains(t, out, want)
			}
			for _, not := range tt.excludes {
				require.NotContains(t, out, not)
			}
		})
	}
}

func TestInfoAndProblemIgnoreVerbosity(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, 0)

	p.Info("connecting to %s", "somewhere")
	p.Problem("that did not work: %d", 42)

	out := buf.String()
	require.Contains(t, out, "connecting to somewhere")
	require.Contains(t, out, "that did not work: 42")
}
