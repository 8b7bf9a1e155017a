package transport_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
	"github.com/netauto/sessioncore/transport"
	"github.com/netauto/sessioncore/vendor"
)

// spyLogger wraps logger.Log, forwarding every call but additionally
// counting Errorf calls, used to confirm FailOnError actually gates the
// surfacing behavior rather than both settings taking an identical path.
type spyLogger struct {
	mu      sync.Mutex
	errorfs int
}

func (l *spyLogger) Debug(args ...interface{})                 { logger.Log.Debug(args...) }
func (l *spyLogger) Debugf(format string, args ...interface{}) { logger.Log.Debugf(format, args...) }
func (l *spyLogger) Info(args ...interface{})                  { logger.Log.Info(args...) }
func (l *spyLogger) Infof(format string, args ...interface{})  { logger.Log.Infof(format, args...) }
func (l *spyLogger) Warning(args ...interface{}) { logger.Log.Warning(args...) }
func (l *spyLogger) Warningf(format string, args ...interface{}) {
	logger.Log.Warningf(format, args...)
}
func (l *spyLogger) Error(args ...interface{}) { logger.Log.Error(args...) }
func (l *spyLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.errorfs++
	l.mu.Unlock()
	logger.Log.Errorf(format, args...)
}

func (l *spyLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorfs
}

func newTestCreds(host string, port int) schema.Credentials {
	return schema.Credentials{
		Host:           host,
		Port:           port,
		Username:       mockUser,
		Auth:           schema.AuthPassword,
		Password:       mockPassword,
		EnablePassword: "enablesecret",
	}
}

// TestSession_Connect_LearnsBasePrompt covers P1/I4: SessionPreparation
// succeeds and leaves a non-empty basePrompt for a plain Cisco IOS device.
func TestSession_Connect_LearnsBasePrompt(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	assert.True(t, s.Connected())
	assert.Equal(t, "Router", s.BasePrompt())
}

// TestSession_SendCommand_ShowVersion is scenario 1: a Cisco IOS
// `show version` in default (non-fast) mode, exercising the basePrompt tail
// match fix directly (fastMode is off here, unlike most of the other
// tests, precisely to cover that path).
func TestSession_SendCommand_ShowVersion(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()
	require.False(t, opts.FastMode)

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	result := s.SendCommand("show version")
	assert.True(t, result.Success, "error: %s", result.Error)
	assert.Contains(t, result.Output, "Cisco IOS Software")
	assert.Empty(t, result.Error)
}

// TestSession_SendConfig_EnterExitConfigMode exercises the Enable->Config
// privilege transition and a decorated "Router(config)#" prompt, which is
// exactly what the \S* tolerance in prompt.MatchesTail's basePrompt branch
// is for.
func TestSession_SendConfig_EnterExitConfigMode(t *testing.T) {
	fast := true
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{FastMode: &fast}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	result := s.SendConfig([]string{"hostname newname"})
	assert.True(t, result.Success, "error: %s", result.Error)
}

// TestSession_SaveConfig confirms the write-memory sequence completes and
// reports success against the mock's canned "[OK]" response.
func TestSession_SaveConfig(t *testing.T) {
	fast := true
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{FastMode: &fast}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	result := s.SaveConfig()
	assert.True(t, result.Success, "error: %s", result.Error)
	assert.Contains(t, result.Output, "[OK]")
}

// TestSession_RebootDevice confirms a confirmation dialog is answered and
// success is reported without waiting for the device to come back (§7).
func TestSession_RebootDevice(t *testing.T) {
	fast := true
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{FastMode: &fast}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	start := time.Now()
	result := s.RebootDevice()
	elapsed := time.Since(start)

	assert.True(t, result.Success, "error: %s", result.Error)
	assert.Less(t, elapsed, 5*time.Second, "reboot must not wait for the device to come back")
}

// TestSession_Disconnect_Idempotent is P3.
func TestSession_Disconnect_Idempotent(t *testing.T) {
	fast := true
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{FastMode: &fast}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())

	assert.NoError(t, s.Disconnect())
	assert.NoError(t, s.Disconnect())
	assert.False(t, s.Connected())
}

// TestSession_SendCommand_NotConnected confirms the ErrNotConnected path
// short-circuits before ever touching the (nil) channel.
func TestSession_SendCommand_NotConnected(t *testing.T) {
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()
	s := transport.New(newTestCreds("127.0.0.1", 1), vendor.CiscoIOS, opts, hooks, logger.Log)

	result := s.SendCommand("show version")
	assert.False(t, result.Success)
	assert.Equal(t, schema.ErrNotConnected.Error(), result.Error)
}

// TestSession_SendCommand_FailOnError_LogsErrorRegexMatch covers §7's
// propagation policy: an ErrorRegex match still produces a
// CommandResult{success:false} either way, but with FailOnError true (the
// default) the failure is also surfaced through the Logger.
func TestSession_SendCommand_FailOnError_LogsErrorRegexMatch(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()
	require.True(t, opts.FailOnError)
	spy := &spyLogger{}

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, spy)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	result := s.SendCommand("bogus command")
	assert.False(t, result.Success)
	assert.Equal(t, schema.ErrCommand.Error(), result.Error)
	assert.Equal(t, 1, spy.count(), "FailOnError=true must surface the error through the Logger")
}

// TestSession_SendCommand_FailOnErrorFalse_DoesNotLog confirms the same
// failure stays silent in the Logger when FailOnError is explicitly off —
// the CommandResult still reports the failure either way.
func TestSession_SendCommand_FailOnErrorFalse_DoesNotLog(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	failOnError := false
	opts := schema.AdvancedOptions{FailOnError: &failOnError}.Resolve()
	spy := &spyLogger{}

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, spy)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	result := s.SendCommand("bogus command")
	assert.False(t, result.Success)
	assert.Equal(t, schema.ErrCommand.Error(), result.Error)
	assert.Equal(t, 0, spy.count(), "FailOnError=false must not surface the error through the Logger")
}

// TestSession_Cancel_MarksUnhealthyAndReportsCanceled is §5's cancellation
// model: Cancel tears the Session down immediately, and any subsequent
// blocked-on-connection operation reports ErrCanceled instead of the plain
// not-connected error.
func TestSession_Cancel_MarksUnhealthyAndReportsCanceled(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())

	require.NoError(t, s.Cancel())
	assert.False(t, s.Connected())

	result := s.SendCommand("show version")
	assert.False(t, result.Success)
	assert.Equal(t, schema.ErrCanceled.Error(), result.Error)

	assert.ErrorIs(t, s.Connect(), schema.ErrCanceled, "a canceled Session must refuse to reconnect")
}

// TestSession_Cancel_Idempotent confirms a second Cancel is a harmless
// no-op, mirroring Disconnect's idempotency (P3).
func TestSession_Cancel_Idempotent(t *testing.T) {
	host, port := startMockDevice(t, promptDevice("Router"))
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())

	assert.NoError(t, s.Cancel())
	assert.NoError(t, s.Cancel())
	assert.False(t, s.Connected())
}

// TestSession_AlgorithmFallback is P7: a server that only accepts the
// ultra-legacy profile (diffie-hellman-group1-sha1 + 3des-cbc) still gets a
// successful handshake because Dial walks the profile ladder down to it.
func TestSession_AlgorithmFallback(t *testing.T) {
	host, port := startRestrictedMockDevice(t, promptDevice("Router"), transport.Profiles[len(transport.Profiles)-1])
	hooks := vendor.Table[vendor.CiscoIOS]
	opts := schema.AdvancedOptions{}.Resolve()

	s := transport.New(newTestCreds(host, port), vendor.CiscoIOS, opts, hooks, logger.Log)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	assert.True(t, s.Connected())
	assert.Equal(t, "Router", s.BasePrompt())
}
