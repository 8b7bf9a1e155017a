// Package schema defines the data model and core interfaces shared by every
// component of the session engine: credentials, per-operation options, the
// Session contract vendor plugins implement, and the logger abstraction.
package schema

import "time"

// DeviceType is the lower-cased dispatch tag identifying a vendor plugin,
// e.g. "cisco_ios", "juniper_junos", "mikrotik_routeros".
type DeviceType string

// AuthMethod distinguishes how Credentials authenticates.
type AuthMethod int

const (
	AuthPassword AuthMethod = iota
	AuthPrivateKey
)

// JumpHost describes an optional bastion used to reach a target that isn't
// directly routable from the caller.
type JumpHost struct {
	Host       string
	Port       int
	Username   string
	Auth       AuthMethod
	Password   string
	PrivateKey []byte
	Passphrase string
}

// Credentials identifies a target device and how to authenticate against
// it. Supplied by the caller per request; immutable for the lifetime of a
// Session.
type Credentials struct {
	Host           string
	Port           int
	Username       string
	Auth           AuthMethod
	Password       string
	PrivateKey     []byte
	Passphrase     string
	DeviceType     DeviceType
	EnablePassword string
	JumpHost       *JumpHost
	KeepAlive      bool
	ConnectTimeout time.Duration
}

// HasJumpHost reports whether the credentials carry a complete bastion
// block, which is what the Dispatcher (§4.9) checks before wrapping a
// Session in the jump-host decorator.
func (c Credentials) HasJumpHost() bool {
	return c.JumpHost != nil && c.JumpHost.Host != "" && c.JumpHost.Username != ""
}

// PoolKey is the identity the Connection Pool uses to key live sessions.
type PoolKey struct {
	Host       string
	Port       int
	Username   string
	DeviceType DeviceType
}

// KeyOf derives the pool key for a set of credentials.
func KeyOf(c Credentials) PoolKey {
	return PoolKey{Host: c.Host, Port: c.Port, Username: c.Username, DeviceType: c.DeviceType}
}

// AdvancedOptions are the only recognized per-operation knobs (§9).
// Pointer fields distinguish "caller didn't say" from "caller said zero",
// so Resolve can fill only the gaps left by the caller.
type AdvancedOptions struct {
	CommandTimeout       *time.Duration
	ConnectionTimeout    *time.Duration
	FastMode             *bool
	ConnectionPooling    *bool
	ReuseConnection      *bool
	ConnectionRetryCount *int
	CommandRetryCount    *int
	RetryDelay           *time.Duration
	FailOnError          *bool
}

// ResolvedOptions is AdvancedOptions after merging with the documented
// defaults; every field has a concrete value.
type ResolvedOptions struct {
	CommandTimeout       time.Duration
	ConnectionTimeout    time.Duration
	FastMode             bool
	ConnectionPooling    bool
	ReuseConnection      bool
	ConnectionRetryCount int
	CommandRetryCount    int
	RetryDelay           time.Duration
	FailOnError          bool
}

// Resolve merges o on top of the documented defaults.
func (o AdvancedOptions) Resolve() ResolvedOptions {
	r := ResolvedOptions{
		CommandTimeout:       10 * time.Second,
		ConnectionTimeout:    15 * time.Second,
		FastMode:             false,
		ConnectionPooling:    false,
		ReuseConnection:      false,
		ConnectionRetryCount: 3,
		CommandRetryCount:    2,
		RetryDelay:           2 * time.Second,
		FailOnError:          true,
	}
	if o.CommandTimeout != nil {
		r.CommandTimeout = *o.CommandTimeout
	}
	if o.ConnectionTimeout != nil {
		r.ConnectionTimeout = *o.ConnectionTimeout
	}
	if o.FastMode != nil {
		r.FastMode = *o.FastMode
		if r.FastMode && o.CommandTimeout == nil {
			r.CommandTimeout = 5 * time.Second
		}
	}
	if o.ConnectionPooling != nil {
		r.ConnectionPooling = *o.ConnectionPooling
	}
	if o.ReuseConnection != nil {
		r.ReuseConnection = *o.ReuseConnection
	}
	if o.ConnectionRetryCount != nil {
		r.ConnectionRetryCount = *o.ConnectionRetryCount
	}
	if o.CommandRetryCount != nil {
		r.CommandRetryCount = *o.CommandRetryCount
	}
	if o.RetryDelay != nil {
		r.RetryDelay = *o.RetryDelay
	}
	if o.FailOnError != nil {
		r.FailOnError = *o.FailOnError
	}
	return r
}

// CommandResult is the pure value produced by every operation.
type CommandResult struct {
	Command           string
	Output            string
	Success           bool
	Error             string
	DeviceType        DeviceType
	Host              string
	Timestamp         time.Time
	ExecutionTime     time.Duration
	ConnectionRetries int
	CommandRetries    int
}

// Session is the polymorphic per-device object (§4.5, §9). Vendor plugins
// are built by combining *transport.Session with a transport.Hooks value
// (see the transport package), so this interface is satisfied once, by the
// base implementation; vendor behavior differs only through the Hooks it
// was constructed with.
type Session interface {
	// Connect establishes the transport, opens the shell channel, and
	// runs SessionPreparation.
	Connect() error
	// SessionPreparation learns the base prompt and runs vendor setup
	// steps (disable paging, set terminal width). In fast mode restricted
	// to just the base prompt.
	SessionPreparation() error
	SendCommand(command string) CommandResult
	SendConfig(commands []string) CommandResult
	GetCurrentConfig() CommandResult
	SaveConfig() CommandResult
	RebootDevice() CommandResult
	Disconnect() error
	// Cancel is the caller-initiated abort of §5's cancellation model: it
	// tears the Session down immediately (no graceful logout) and marks it
	// unhealthy for good. Blocked-on-connection operations invoked after
	// Cancel report ErrCanceled instead of the plain not-connected error.
	Cancel() error
	// Connected reports whether this Session currently owns a live SSH
	// client and shell channel (invariant I1).
	Connected() bool
	// Credentials returns the credentials this Session was built with.
	Credentials() Credentials
	// DeviceType returns the vendor tag this Session was dispatched for.
	DeviceType() DeviceType
}

// Logger is the structured logging interface every component takes a
// dependency on instead of calling a package-level global mid-call.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}
