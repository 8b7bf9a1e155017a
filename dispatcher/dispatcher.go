// Package dispatcher implements the Dispatcher (§4.9): it selects the
// correct vendor plugin for a device-type tag, wraps it in the Jump-Host
// Wrapper when the credentials carry a complete bastion block, and
// consults the Connection Pool when pooling is requested. Grounded on
// transport/device.go's New(deviceType) switch, converted per §9 into a
// data-driven lookup against vendor.Table instead of a scattered switch.
package dispatcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/netauto/sessioncore/jumphost"
	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/pool"
	"github.com/netauto/sessioncore/schema"
	"github.com/netauto/sessioncore/transport"
	"github.com/netauto/sessioncore/vendor"
)

// Create builds the Session for credentials.DeviceType, wrapping it in
// the jump-host decorator if the credentials carry one. The returned
// Session is not yet connected (§4.9 step d).
func Create(creds schema.Credentials, advanced schema.AdvancedOptions) (schema.Session, error) {
	tag := schema.DeviceType(strings.ToLower(string(creds.DeviceType)))
	hooks, ok := vendor.Table[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", schema.ErrUnsupportedDevice, tag, strings.Join(supportedTags(), ", "))
	}

	opts := advanced.Resolve()
	target := transport.New(creds, tag, opts, hooks, logger.Log)

	if creds.HasJumpHost() {
		return jumphost.Wrap(target, logger.Log), nil
	}
	return target, nil
}

// Open is Create plus the pool consultation described in §4.8's reuse
// policy: the pool is only consulted when advanced.ConnectionPooling is
// set. By default a busy existing entry is not an error — Open falls back
// to a fresh unpooled connection. When advanced.ReuseConnection is also
// set, that fallback is disabled: Open uses AcquireExclusive instead of
// Acquire and fails the request with schema.ErrBusy rather than silently
// opening a second connection to a device the caller explicitly asked to
// share.
func Open(creds schema.Credentials, advanced schema.AdvancedOptions) (schema.Session, error) {
	opts := advanced.Resolve()
	if !opts.ConnectionPooling {
		return connectFresh(creds, advanced)
	}

	key := schema.KeyOf(creds)
	if opts.ReuseConnection {
		s, err := pool.Default.AcquireExclusive(key)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	} else if s, ok := pool.Default.Acquire(key); ok {
		return s, nil
	}

	s, err := connectFresh(creds, advanced)
	if err != nil {
		return nil, err
	}
	if err := pool.Default.Insert(key, s); err != nil {
		// Someone else won the race to insert first; our session is
		// still perfectly usable standalone, just not pooled.
		logger.Log.Debugf("pool insert race for %+v: %s", key, err)
		return s, nil
	}
	// The caller now holds this Session; mark the entry in-use so a
	// concurrent Open sees it as checked out rather than free for the
	// taking until this caller explicitly Releases it.
	pool.Default.Acquire(key)
	return s, nil
}

// Release returns a pooled Session acquired through Open back to the
// pool by clearing the in-use flag of whatever entry is pooled under
// creds' key. It is a no-op when no entry exists for that key; when one
// does, it is released even if the caller's Session is not that entry
// (ConnectionPooling was false, or the insert race was lost).
func Release(creds schema.Credentials) {
	pool.Default.Release(schema.KeyOf(creds))
}

// Cancel implements §5's cancellation model end to end: it aborts s
// immediately and evicts its pool entry so a Session a caller has already
// walked away from can never be handed to a later Acquire/AcquireExclusive
// (§5: "The Pool must evict any cancelled Session before reuse"). Safe to
// call for a Session that was never pooled — Evict is a harmless no-op for
// a key the pool doesn't recognize.
func Cancel(creds schema.Credentials, s schema.Session) error {
	err := s.Cancel()
	pool.Default.Evict(schema.KeyOf(creds))
	return err
}

func connectFresh(creds schema.Credentials, advanced schema.AdvancedOptions) (schema.Session, error) {
	s, err := Create(creds, advanced)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func supportedTags() []string {
	tags := vendor.Tags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	sort.Strings(out)
	return out
}
