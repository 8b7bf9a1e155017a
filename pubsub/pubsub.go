// Package pubsub turns a raw io.Reader into a fan-out stream of line
// events. It is the implementation of the Channel I/O component's
// "buffered line-oriented accumulation" (§4.2): the channelio package
// attaches a Publisher to a shell channel's stdout/stderr and subscribes
// its own reader loop to it.
package pubsub

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
)

// Direction distinguishes which stream a Message arrived on.
type Direction int

const (
	Stdout Direction = iota
	Stderr
)

// Message is one line received from a device's shell channel.
type Message struct {
	Text string
	Dir  Direction
	Time time.Time
}

var log schema.Logger

func init() {
	log = logger.Log
}

// Publisher distributes lines read from a shell channel to every
// subscriber attached to it. One Publisher is created per Session.
type Publisher struct {
	input  chan Message
	subs   map[int64]chan Message
	nextID int64
	mut    sync.RWMutex
}

// New creates a Publisher. Call Attach to begin pumping.
func New(input chan Message) *Publisher {
	return &Publisher{
		input: input,
		subs:  make(map[int64]chan Message, 2),
	}
}

// Subscribe adds a listener; the returned id is used to Unsubscribe.
// IDs are handed out from a monotonic counter, so an id is never reused
// even after another subscriber unsubscribes — the teacher's version
// derived the next id from the current max key, which reissues an id as
// soon as the subscriber holding the max key leaves, letting two
// unrelated subscribers collide on the same channel.
func (p *Publisher) Subscribe(s chan Message) (id int64) {
	p.mut.Lock()
	defer p.mut.Unlock()
	id = atomic.AddInt64(&p.nextID, 1)
	p.subs[id] = s
	return id
}

func (p *Publisher) Unsubscribe(id int64) {
	p.mut.Lock()
	defer p.mut.Unlock()
	delete(p.subs, id)
}

// Attach starts reader goroutines for stdout/stderr and the distribution
// loop, and blocks until shutdown is signaled.
func (p *Publisher) Attach(stdout, stderr io.Reader, shutdown <-chan struct{}, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	readerWg := sync.WaitGroup{}
	qstdout := make(chan struct{})
	qstderr := make(chan struct{})
	if stdout != nil {
		readerWg.Add(1)
		go attachReader(&readerWg, stdout, Stdout, p.input, qstdout)
	}
	if stderr != nil {
		readerWg.Add(1)
		go attachReader(&readerWg, stderr, Stderr, p.input, qstderr)
	}

	loopDone := make(chan struct{})
	go p.loop(loopDone)

	<-shutdown

	close(qstdout)
	close(qstderr)
	close(loopDone)
	readerWg.Wait()
	log.Debug("publisher detached")
}

func (p *Publisher) loop(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-p.input:
			p.mut.RLock()
			for _, s := range p.subs {
				if len(s) < cap(s) {
					s <- msg
				}
			}
			p.mut.RUnlock()
		}
	}
}

// quietFlush is how long attachReader waits for more bytes before treating
// whatever is left in the pending buffer as a complete line. A device's
// final prompt has no trailing newline — it is the last thing written
// before the device goes idle waiting for input — so relying on a
// terminator or on EOF to flush the tail would mean prompt detection never
// sees it. Chosen shorter than channelio's poll interval so a pending
// prompt is visible on essentially the first poll after the device stops
// writing.
const quietFlush = 40 * time.Millisecond

// rawChunk is a slice read off the underlying stream, or an error/EOF
// signal, handed from the blocking read goroutine to attachReader's
// buffering loop.
type rawChunk struct {
	data []byte
	err  error
}

func attachReader(wg *sync.WaitGroup, r io.Reader, dir Direction, out chan Message, stop <-chan struct{}) {
	defer wg.Done()

	// chunks is buffered so the read goroutine's final send (on EOF/error,
	// often racing a stop signal from a caller that already closed the
	// underlying connection) never blocks waiting for attachReader's loop,
	// which may have already returned.
	chunks := make(chan rawChunk, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				select {
				case chunks <- rawChunk{data: cp}:
				case <-stop:
					return
				}
			}
			if err != nil {
				select {
				case chunks <- rawChunk{err: err}:
				case <-stop:
				}
				return
			}
		}
	}()

	var pending []byte
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	timerRunning := false

	emit := func(text string) {
		out <- Message{Text: text, Dir: dir, Time: time.Now()}
	}

	// drainLines pulls complete, terminator-delimited lines out of pending,
	// emitting each and leaving any trailing partial line in place. A
	// "\r\n" pair counts as one terminator, not two — otherwise every
	// CRLF-terminated line (what a real device actually sends) leaves a
	// lone "\n" at the head of the next chunk that drains as a spurious
	// empty line.
	drainLines := func() {
		for {
			idx := indexCRorLF(pending)
			if idx < 0 {
				return
			}
			if pending[idx] == '\r' {
				if idx+1 == len(pending) {
					// the \n half of a split "\r\n" may still be in
					// flight; wait for it rather than guessing.
					return
				}
				if pending[idx+1] == '\n' {
					emit(string(pending[:idx]))
					pending = pending[idx+2:]
					continue
				}
			}
			emit(string(pending[:idx]))
			pending = pending[idx+1:]
		}
	}

	for {
		select {
		case <-stop:
			if timerRunning {
				timer.Stop()
			}
			return
		case c, ok := <-chunks:
			if !ok {
				return
			}
			if c.err != nil {
				if len(pending) > 0 {
					emit(string(pending))
				}
				return
			}
			pending = append(pending, c.data...)
			drainLines()
			if timerRunning && !timer.Stop() {
				<-timer.C
			}
			if len(pending) > 0 {
				timer.Reset(quietFlush)
				timerRunning = true
			} else {
				timerRunning = false
			}
		case <-timer.C:
			timerRunning = false
			if len(pending) > 0 {
				emit(string(pending))
				pending = nil
			}
		}
	}
}

// indexCRorLF returns the index of the first \r or \n in b, or -1.
func indexCRorLF(b []byte) int {
	for i, c := range b {
		if c == '\n' || c == '\r' {
			return i
		}
	}
	return -1
}
