// Package pool implements the process-wide Connection Pool (§4.8): a map
// of live Sessions keyed by (host, port, username, deviceType), with
// reuse, idle reaping, and a forced-cleanup path. Grounded on the
// teacher's pubsub package-level singleton shape (a package var guarded
// by one mutex, initialized in init()) — generalized here to hold
// Sessions instead of subscriber channels.
package pool

import (
	"sync"
	"time"

	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
)

// IdleTimeout is how long an unused PoolEntry survives before the reaper
// closes it (§3, §4.8).
const IdleTimeout = 10 * time.Minute

// ReapInterval is how often the reaper sweeps for idle entries (§4.8).
const ReapInterval = 60 * time.Second

// Entry is the PoolEntry of §3: a non-owning reference to a live Session.
type Entry struct {
	Key      schema.PoolKey
	Session  schema.Session
	LastUsed time.Time
	InUse    bool
}

// Pool is the process-wide registry. Default is the one instance the
// Dispatcher consults; tests may construct their own with New().
type Pool struct {
	mu      sync.Mutex
	entries map[schema.PoolKey]*Entry
	log     schema.Logger

	stop     chan struct{}
	reapOnce sync.Once
}

// Default is the process-wide pool every Dispatcher.Open call shares.
var Default = New()

func New() *Pool {
	return &Pool{
		entries: make(map[schema.PoolKey]*Entry),
		log:     logger.Log,
		stop:    make(chan struct{}),
	}
}

// Acquire returns a free live entry for key and marks it in-use, or false
// on a miss. Per §4.8 this is the default reuse path: a miss means the
// caller should open a fresh, unpooled session rather than error.
func (p *Pool) Acquire(key schema.PoolKey) (schema.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok || e.InUse || !e.Session.Connected() {
		return nil, false
	}
	e.InUse = true
	e.LastUsed = time.Now()
	return e.Session, true
}

// AcquireExclusive is the variant that errors with schema.ErrBusy instead
// of missing when the entry is already in use (§4.8: "fails the open
// request with BusyError only if an explicit exclusive acquire is
// requested").
func (p *Pool) AcquireExclusive(key schema.PoolKey) (schema.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok {
		return nil, nil
	}
	if e.InUse {
		return nil, schema.ErrBusy
	}
	e.InUse = true
	e.LastUsed = time.Now()
	return e.Session, nil
}

// Release clears the in-use flag and refreshes LastUsed (§4.8).
func (p *Pool) Release(key schema.PoolKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[key]; ok {
		e.InUse = false
		e.LastUsed = time.Now()
	}
}

// Insert adds a new live entry, rejecting the call if one already exists
// for key (invariant I5).
func (p *Pool) Insert(key schema.PoolKey, s schema.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[key]; ok && e.Session.Connected() {
		return schema.ErrDuplicatePoolEntry
	}
	p.entries[key] = &Entry{Key: key, Session: s, LastUsed: time.Now()}
	return nil
}

// Evict removes key's entry without closing the Session — used when a
// cancellation marks a Session unhealthy and it must not be handed to
// another caller (§5: "The Pool must evict any cancelled Session before
// reuse").
func (p *Pool) Evict(key schema.PoolKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
}

// Reap closes and removes every entry idle longer than IdleTimeout. It
// takes the lock only long enough to collect the expired keys, then
// closes the Sessions outside the lock (§5).
func (p *Pool) Reap() {
	cutoff := time.Now().Add(-IdleTimeout)
	var expired []*Entry

	p.mu.Lock()
	for k, e := range p.entries {
		if !e.InUse && e.LastUsed.Before(cutoff) {
			expired = append(expired, e)
			delete(p.entries, k)
		}
	}
	p.mu.Unlock()

	for _, e := range expired {
		p.log.Debugf("reaping idle pool entry %+v", e.Key)
		_ = e.Session.Disconnect()
	}
}

// ForceCleanup closes every entry synchronously, regardless of idle time
// or in-use state (§4.8).
func (p *Pool) ForceCleanup() {
	p.mu.Lock()
	entries := make([]*Entry, 0, len(p.entries))
	for k, e := range p.entries {
		entries = append(entries, e)
		delete(p.entries, k)
	}
	p.mu.Unlock()

	for _, e := range entries {
		_ = e.Session.Disconnect()
	}
}

// StartReaper launches the background reap timer (§4.8, §5). Safe to call
// more than once; only the first call starts the goroutine.
func (p *Pool) StartReaper() {
	p.reapOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(ReapInterval)
			defer ticker.Stop()
			for {
				select {
				case <-p.stop:
					return
				case <-ticker.C:
					p.Reap()
				}
			}
		}()
	})
}

// StopReaper stops the background reap timer.
func (p *Pool) StopReaper() {
	close(p.stop)
}
