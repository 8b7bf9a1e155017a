package pubsub_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto/sessioncore/pubsub"
)

// collect drains n Messages off sub (or fails the test on timeout) and
// returns their Text values in arrival order.
func collect(t *testing.T, sub chan pubsub.Message, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		select {
		case msg := <-sub:
			out = append(out, msg.Text)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d/%d, got %v so far", i+1, n, out)
		}
	}
	return out
}

// TestAttachReader_CRLFPairIsOneTerminator is the regression for the "\r\n"
// double-split bug: a device that terminates every line with "\r\n" (every
// real device does) must not produce a spurious empty Message between
// lines.
func TestAttachReader_CRLFPairIsOneTerminator(t *testing.T) {
	server, device := net.Pipe()
	defer server.Close()
	defer device.Close()

	p := pubsub.New(make(chan pubsub.Message, 8))
	sub := make(chan pubsub.Message, 8)
	p.Subscribe(sub)

	shutdown := make(chan struct{})
	var wg sync.WaitGroup
	go p.Attach(server, nil, shutdown, &wg)
	defer close(shutdown)

	go func() {
		_, _ = device.Write([]byte("line one\r\nline two\r\n"))
	}()

	got := collect(t, sub, 2)
	assert.Equal(t, []string{"line one", "line two"}, got)
}

// TestAttachReader_CRLFSplitAcrossChunks confirms a "\r\n" pair split across
// two separate reads (the "\r" landing at the very end of pending) still
// counts as one terminator once the "\n" half arrives, rather than emitting
// an early empty line for the lone "\r".
func TestAttachReader_CRLFSplitAcrossChunks(t *testing.T) {
	server, device := net.Pipe()
	defer server.Close()
	defer device.Close()

	p := pubsub.New(make(chan pubsub.Message, 8))
	sub := make(chan pubsub.Message, 8)
	p.Subscribe(sub)

	shutdown := make(chan struct{})
	var wg sync.WaitGroup
	go p.Attach(server, nil, shutdown, &wg)
	defer close(shutdown)

	go func() {
		_, _ = device.Write([]byte("line one\r"))
		time.Sleep(10 * time.Millisecond)
		_, _ = device.Write([]byte("\nline two\r\n"))
	}()

	got := collect(t, sub, 2)
	assert.Equal(t, []string{"line one", "line two"}, got)
}

// TestAttachReader_BareLFStillWorks confirms the fix didn't regress the
// plain "\n"-only devices every other mock in this codebase scripts.
func TestAttachReader_BareLFStillWorks(t *testing.T) {
	server, device := net.Pipe()
	defer server.Close()
	defer device.Close()

	p := pubsub.New(make(chan pubsub.Message, 8))
	sub := make(chan pubsub.Message, 8)
	p.Subscribe(sub)

	shutdown := make(chan struct{})
	var wg sync.WaitGroup
	go p.Attach(server, nil, shutdown, &wg)
	defer close(shutdown)

	go func() {
		_, _ = device.Write([]byte("line one\nline two\n"))
	}()

	got := collect(t, sub, 2)
	require.Equal(t, []string{"line one", "line two"}, got)
}
