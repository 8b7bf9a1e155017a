// Package channelio implements the byte-level Channel I/O primitives of
// §4.2: writeChannel, readChannel, and the higher-level readUntilPrompt
// that polls for a prompt occurrence at the tail of the accumulated
// buffer. Line-oriented accumulation is delegated to pubsub, exactly as
// the teacher's transport.base did with its own Publisher.
package channelio

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/netauto/sessioncore/prompt"
	"github.com/netauto/sessioncore/pubsub"
	"github.com/netauto/sessioncore/schema"
)

// pollInterval is how often readUntilPrompt re-checks the accumulated
// buffer for a prompt match (§4.2: "a short interval (50-200ms)").
const pollInterval = 75 * time.Millisecond

// pagerPrompts are continuation markers answered with a single space
// while a read is in flight — the generalization of every teacher
// transport file's handleContinuation, moved from "strip after the fact"
// to "answer while reading" per SUPPLEMENTED FEATURES.
var pagerPrompts = []*regexp.Regexp{
	regexp.MustCompile(`-+ ?[Mm]ore ?-+`),
	regexp.MustCompile(`(?i)press enter to continue`),
	regexp.MustCompile(`(?i)--more--\s*$`),
}

// Channel wraps one shell channel's stdin/stdout/stderr with the polling
// primitives every Session operation is built from. One Channel is
// created per Session.
type Channel struct {
	stdin  io.WriteCloser
	log    schema.Logger
	pub    *pubsub.Publisher
	events chan pubsub.Message
	shut   chan struct{}
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// New builds a Channel over an already-open shell's stdin/stdout/stderr.
func New(stdin io.WriteCloser, stdout, stderr io.Reader, log schema.Logger) *Channel {
	events := make(chan pubsub.Message, 64)
	c := &Channel{
		stdin:  stdin,
		log:    log,
		events: events,
		pub:    pubsub.New(events),
		shut:   make(chan struct{}),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pub.Attach(stdout, stderr, c.shut, &sync.WaitGroup{})
	}()
	return c
}

// Write appends bytes to the shell channel in a single call; it never
// buffers a partial write across calls (§4.2).
func (c *Channel) Write(data string) error {
	_, err := io.WriteString(c.stdin, data)
	return err
}

// WriteLine writes data followed by the session's newline convention.
func (c *Channel) WriteLine(data, newline string) error {
	return c.Write(data + newline)
}

// Read returns whatever has arrived within the given window, including
// the empty string on a quiet channel (§4.2 readChannel).
func (c *Channel) Read(timeout time.Duration) string {
	sub := make(chan pubsub.Message, 64)
	id := c.pub.Subscribe(sub)
	defer c.pub.Unsubscribe(id)

	var buf strings.Builder
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	quiet := time.NewTimer(pollInterval)
	defer quiet.Stop()
	for {
		select {
		case msg := <-sub:
			buf.WriteString(msg.Text)
			buf.WriteString("\n")
			quiet.Reset(pollInterval)
		case <-deadline.C:
			return buf.String()
		case <-quiet.C:
			if buf.Len() > 0 {
				return buf.String()
			}
			quiet.Reset(pollInterval)
		}
	}
}

// ReadUntilPrompt polls the channel, concatenating received chunks, until
// the tail of the accumulated buffer matches expected verbatim, basePrompt
// followed by a terminator, or — in fast mode — any non-empty line ending
// in a terminator, optionally followed by whitespace (§4.2). On timeout it returns
// whatever was collected together with schema.ErrTimeout.
func (c *Channel) ReadUntilPrompt(expected *regexp.Regexp, basePrompt string, fastMode bool, timeout time.Duration) (string, error) {
	sub := make(chan pubsub.Message, 256)
	id := c.pub.Subscribe(sub)
	defer c.pub.Unsubscribe(id)

	var buf strings.Builder
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case msg := <-sub:
			buf.WriteString(msg.Text)
			buf.WriteString("\n")
			c.answerPager(msg.Text)
			if matchesTail(buf.String(), expected, basePrompt, fastMode) {
				return buf.String(), nil
			}
		case <-deadline.C:
			return buf.String(), schema.ErrTimeout
		case <-time.After(pollInterval):
			if matchesTail(buf.String(), expected, basePrompt, fastMode) {
				return buf.String(), nil
			}
		}
	}
}

// answerPager writes a continuation keystroke when line looks like a
// pager prompt, so a long `show running-config` doesn't stall behind
// "---- More ----" waiting for a human.
func (c *Channel) answerPager(line string) {
	for _, re := range pagerPrompts {
		if re.MatchString(line) {
			_ = c.Write(" ")
			return
		}
	}
}

// Close shuts down the publisher goroutines and the write side of the
// channel. Idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.shut)
	c.wg.Wait()
	return c.stdin.Close()
}

func matchesTail(buf string, expected *regexp.Regexp, basePrompt string, fastMode bool) bool {
	return prompt.MatchesTail(buf, expected, basePrompt, fastMode)
}
