// Package transport implements the SSH Transport (§4.1), the Session base
// contract (§4.5), and the privilege/config mode state machine shared by
// every vendor plugin. Vendor behavior is injected as a Hooks value
// (§9: "implement as an interface with a shared default implementation...
// each vendor overrides exactly the deltas") rather than duplicated per
// vendor the way the teacher's transport/*.go files did.
package transport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/netauto/sessioncore/channelio"
	"github.com/netauto/sessioncore/prompt"
	"github.com/netauto/sessioncore/sanitize"
	"github.com/netauto/sessioncore/schema"
	"golang.org/x/crypto/ssh"
)

// Session is the concrete implementation behind every schema.Session value
// the Dispatcher hands back. Its behavior is entirely parameterized by the
// Hooks it was built with.
type Session struct {
	creds      schema.Credentials
	deviceType schema.DeviceType
	opts       schema.ResolvedOptions
	hooks      Hooks
	log        schema.Logger

	opened *Opened
	ch     *channelio.Channel
	prompt prompt.Model

	connected    bool
	canceled     bool
	inEnable     bool
	inConfig     bool
	newlineSeq   string
	authUsername string
	bannerText   string

	mu sync.Mutex
}

// New builds an unconnected Session (§4.9: the Dispatcher "returns the
// Session, not yet connected").
func New(creds schema.Credentials, deviceType schema.DeviceType, opts schema.ResolvedOptions, hooks Hooks, log schema.Logger) *Session {
	if hooks.Newline == "" {
		hooks.Newline = "\n"
	}
	return &Session{
		creds:      creds,
		deviceType: deviceType,
		opts:       opts,
		hooks:      hooks,
		log:        log,
		newlineSeq: hooks.Newline,
	}
}

func (s *Session) Credentials() schema.Credentials { return s.creds }
func (s *Session) DeviceType() schema.DeviceType   { return s.deviceType }

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// notConnectedError reports why a blocked-on-connection operation refused
// to run: ErrCanceled if a caller already walked away via Cancel, otherwise
// the plain ErrNotConnected (never connected, or already disconnected).
func (s *Session) notConnectedError() error {
	if s.canceled {
		return schema.ErrCanceled
	}
	return schema.ErrNotConnected
}

// Cancel tears the Session down immediately without the graceful teardown
// Disconnect attempts (§5): no exit-config, no logout commands, since the
// caller cancelling mid-operation is exactly the case where waiting on a
// vendor prompt would hang. Once canceled the Session is marked unhealthy
// for good — Cancel does not support reconnecting; the caller is expected
// to open a fresh Session and let the Pool evict this one before any other
// caller can reuse it (§5: "The Pool must evict any cancelled Session
// before reuse").
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return nil
	}
	s.canceled = true
	if !s.connected {
		return nil
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.opened != nil {
		if s.opened.SSHSession != nil {
			_ = s.opened.SSHSession.Close()
		}
		if s.opened.Client != nil {
			_ = s.opened.Client.Close()
		}
	}
	s.connected = false
	s.inEnable = false
	s.inConfig = false
	return nil
}

// Connect establishes the transport, opens the shell channel, and runs
// SessionPreparation (§4.5).
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if s.canceled {
		return schema.ErrCanceled
	}

	if s.hooks.ConnectFunc != nil {
		if err := s.hooks.ConnectFunc(s); err != nil {
			return err
		}
	} else if err := s.defaultConnect(); err != nil {
		return err
	}

	s.connected = true
	if err := s.sessionPreparationLocked(); err != nil {
		s.disconnectLocked()
		return err
	}
	return nil
}

// SetAuthUsername overrides the username presented during SSH
// authentication without changing what Credentials() reports back to the
// caller (MikroTik mutates the wire username with a terminal-size suffix;
// scenario 4 requires Credentials().Username to stay "admin").
func (s *Session) SetAuthUsername(u string) { s.authUsername = u }

func (s *Session) defaultConnect() error {
	port := s.creds.Port
	if port == 0 {
		port = 22
	}
	dialCreds := s.creds
	if s.authUsername != "" {
		dialCreds.Username = s.authUsername
	}
	opened, err := Dial(s.creds.Host, port, dialCreds, s.opts, s.log)
	if err != nil {
		if s.hooks.TelnetFallback {
			s.log.Debugf("ssh dial to %s failed (%s), falling back to telnet", s.creds.Host, err)
			return s.connectTelnetFallback()
		}
		return err
	}
	if err := s.attachOpened(opened); err != nil {
		opened.Client.Close()
		return err
	}
	if err := RequestShell(opened.SSHSession, s.hooks.PTY, s.opts.FastMode); err != nil {
		_ = s.ch.Close()
		opened.Client.Close()
		return err
	}
	return nil
}

// attachOpened wires a live *ssh.Session's pipes into a Channel. It must
// run before the session's shell is started, since the pipes cannot be
// taken afterwards. Exposed as AttachChannel for ConnectFunc overrides
// that open their own *ssh.Session.
func (s *Session) attachOpened(opened *Opened) error {
	stdin, err := opened.SSHSession.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %s", schema.ErrConnect, err)
	}
	stdout, err := opened.SSHSession.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %s", schema.ErrConnect, err)
	}
	stderr, err := opened.SSHSession.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: stderr pipe: %s", schema.ErrConnect, err)
	}
	s.opened = opened
	s.ch = channelio.New(stdin, stdout, stderr, s.log)
	return nil
}

// SSHClient exposes the live client so composite Sessions (jump-host) can
// layer a tunneled dial on top of it. Nil before Connect.
func (s *Session) SSHClient() *ssh.Client {
	if s.opened == nil {
		return nil
	}
	return s.opened.Client
}

// Channel exposes the live Channel to callers that drive the shell
// directly (the sessiondemo raw terminal).
func (s *Session) Channel() *channelio.Channel { return s.ch }

// AttachChannel lets a custom ConnectFunc hand back an already-open
// *ssh.Session (e.g. after a second login hop) for the base machinery to
// adopt.
func (s *Session) AttachChannel(opened *Opened) error {
	return s.attachOpened(opened)
}

// ConnectOverClient allocates a shell on an already-established
// *ssh.Client instead of dialing one itself — the jump-host wrapper uses
// this once it has tunneled a direct-tcpip channel and authenticated the
// inner client over it (§4.7).
func (s *Session) ConnectOverClient(client *ssh.Client) error {
	sess, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: tunneled session: %s", schema.ErrConnect, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachOpened(&Opened{Client: client, SSHSession: sess, Profile: "tunneled"}); err != nil {
		sess.Close()
		return err
	}
	if err := RequestShell(sess, s.hooks.PTY, s.opts.FastMode); err != nil {
		_ = s.ch.Close()
		sess.Close()
		return err
	}
	s.connected = true
	return nil
}

// DefaultConnect runs the base SSH dial + PTY allocation, without
// SessionPreparation. Vendor ConnectFunc overrides that only need to
// change what happens *after* the shell is open (MikroTik's username
// suffix happens before dial, UniFi's telnet hop happens after) call this
// first.
func (s *Session) DefaultConnect() error { return s.defaultConnect() }

// Newline returns the session's configured line terminator.
func (s *Session) Newline() string { return s.newlineSeq }

// SetNewline overrides the line terminator mid-session. No vendor hook in
// this repository calls it; UniFi's ConnectFunc keeps the table's newline
// across its telnet hop.
func (s *Session) SetNewline(nl string) { s.newlineSeq = nl }

// BannerText returns the raw text captured while learning the base
// prompt — the banner the Auto-Detector (§4.10) matches device-type
// substrings against.
func (s *Session) BannerText() string { return s.bannerText }

// BasePrompt returns the currently learned base prompt.
func (s *Session) BasePrompt() string { return s.prompt.BasePrompt }

// SetBasePrompt overrides the learned base prompt — used by ConnectFunc
// overrides that re-learn a second prompt after hopping shells.
func (s *Session) SetBasePrompt(p string) { s.prompt.BasePrompt = p }

// Options returns the resolved per-request options this Session was built
// with (commandTimeout, fastMode, ...).
func (s *Session) Options() schema.ResolvedOptions { return s.opts }

// RunRaw writes command and reads until the current base prompt
// reappears, without sanitizing — the primitive vendor hook functions
// build on top of (e.g. UniFi's telnet handshake).
func (s *Session) RunRaw(command string, timeout time.Duration) (string, error) {
	return s.writeAndCollect(command, timeout)
}

// SessionPreparation learns the base prompt and runs vendor setup steps
// (§4.5). In fast mode it is restricted to just the base prompt.
func (s *Session) SessionPreparation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionPreparationLocked()
}

func (s *Session) sessionPreparationLocked() error {
	if s.hooks.PrepareFunc != nil {
		return s.hooks.PrepareFunc(s)
	}
	return s.defaultPrepare()
}

func (s *Session) defaultPrepare() error {
	if err := s.learnPrompt(); err != nil {
		return err
	}
	if s.opts.FastMode {
		return nil
	}

	if s.hooks.PagingNeedsEnable && s.hooks.RequiresEnable {
		_ = s.ensureEnable() // best-effort; a failure here just leaves paging on (§7)
	}

	steps := [][]string{s.hooks.DisablePagingCmds, s.hooks.TerminalWidthCmds, s.hooks.ExtraPrepCmds}
	run := func(cmds []string) {
		for _, c := range cmds {
			_, _ = s.writeAndCollect(c, s.opts.CommandTimeout) // best-effort; errors swallowed (§7)
		}
	}
	if s.hooks.ParallelPrep {
		var wg sync.WaitGroup
		for _, cmds := range steps {
			cmds := cmds
			if len(cmds) == 0 {
				continue
			}
			wg.Add(1)
			go func() { defer wg.Done(); run(cmds) }()
		}
		wg.Wait()
	} else {
		for _, cmds := range steps {
			run(cmds)
		}
	}
	return nil
}

// learnPrompt implements §4.3's setBasePrompt: write a bare newline, read
// the response, and derive BasePrompt from the last non-empty line.
func (s *Session) learnPrompt() error {
	learn := s.hooks.LearnPrompt
	if learn == nil {
		learn = prompt.LearnBase
	}
	if err := s.ch.WriteLine("", s.newlineSeq); err != nil {
		return fmt.Errorf("%w: %s", schema.ErrConnect, err)
	}
	text, err := s.ch.ReadUntilPrompt(nil, "", true, s.opts.ConnectionTimeout)
	if err != nil && text == "" {
		return fmt.Errorf("%w: %s", schema.ErrPromptNotFound, err)
	}
	s.bannerText = text
	base := learn(text)
	if base == "" {
		return schema.ErrPromptNotFound
	}
	s.prompt.BasePrompt = base
	return nil
}

// writeAndCollect writes command and reads until a prompt, without
// sanitizing — the raw text is what callers sanitize themselves.
func (s *Session) writeAndCollect(command string, timeout time.Duration) (string, error) {
	if err := s.ch.WriteLine(command, s.newlineSeq); err != nil {
		return "", err
	}
	return s.ch.ReadUntilPrompt(nil, s.prompt.BasePrompt, s.opts.FastMode, timeout)
}

// SendCommand writes text, reads until the prompt reappears, sanitizes,
// and returns a CommandResult (§4.5). Does not enter config mode.
func (s *Session) SendCommand(command string) schema.CommandResult {
	start := time.Now()
	result := schema.CommandResult{
		Command:    command,
		DeviceType: s.deviceType,
		Host:       s.creds.Host,
		Timestamp:  start,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		result.Error = s.notConnectedError().Error()
		result.ExecutionTime = time.Since(start)
		return result
	}

	if s.hooks.RelearnPromptPerCommand {
		_ = s.learnPrompt()
	}

	var raw string
	var err error
	retries := 0
	for {
		if s.hooks.SendCommandFunc != nil {
			raw, err = s.hooks.SendCommandFunc(s, command)
		} else {
			raw, err = s.writeAndCollect(command, s.opts.CommandTimeout)
		}
		if err == nil || retries >= s.opts.CommandRetryCount {
			break
		}
		retries++
	}
	result.CommandRetries = retries
	result.ExecutionTime = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		result.Output = sanitize.Sanitize(raw, command)
		if s.opts.FailOnError {
			s.log.Errorf("sendCommand %q on %s: %s", command, s.creds.Host, err)
		}
		return result
	}

	clean := sanitize.Sanitize(raw, command)
	result.Output = clean
	if s.hooks.ErrorRegex != nil && s.hooks.ErrorRegex.MatchString(clean) {
		result.Error = schema.ErrCommand.Error()
		if s.opts.FailOnError {
			s.log.Errorf("sendCommand %q on %s: %s", command, s.creds.Host, schema.ErrCommand)
		}
		return result
	}
	result.Success = true
	return result
}

// ensureEnable implements the User->Enable privilege transition, handling
// the enable-password prompt per the Open Question decision (§9): a
// Password: prompt seen within 2s of "enable" gets the enable password.
func (s *Session) ensureEnable() error {
	if s.inEnable {
		return nil
	}
	if err := s.ch.WriteLine(s.hooks.EnableCmd, s.newlineSeq); err != nil {
		return fmt.Errorf("%w: %s", schema.ErrConfigMode, err)
	}
	chunk := s.ch.Read(enablePasswordWindow)
	if passwordPromptRegex.MatchString(chunk) {
		if err := s.ch.WriteLine(s.creds.EnablePassword, s.newlineSeq); err != nil {
			return fmt.Errorf("%w: %s", schema.ErrConfigMode, err)
		}
	}
	out, err := s.ch.ReadUntilPrompt(nil, s.prompt.BasePrompt, true, s.opts.CommandTimeout)
	if err != nil && out == "" {
		return fmt.Errorf("%w: enable failed: %s", schema.ErrConfigMode, err)
	}
	last := prompt.LastNonEmptyLine(chunk + out)
	if !strings.HasSuffix(strings.TrimRight(last, " \t"), "#") {
		// Some vendors keep '>' even once privileged; don't fail hard,
		// the next command's own error regex will catch a real rejection.
	}
	s.inEnable = true
	return nil
}

// enterConfigMode implements Enable->Config (§4.5), confirming via the
// vendor's ConfigPromptRegex when supplied.
func (s *Session) enterConfigMode() error {
	if s.inConfig {
		return nil
	}
	if s.hooks.RequiresEnable {
		if err := s.ensureEnable(); err != nil {
			return err
		}
	}
	for _, cmd := range s.hooks.EnterConfigCmds {
		out, err := s.writeAndCollect(cmd, s.opts.CommandTimeout)
		if err != nil && out == "" {
			return fmt.Errorf("%w: %s", schema.ErrConfigMode, err)
		}
		if s.hooks.ConfigPromptRegex != nil && !s.hooks.ConfigPromptRegex.MatchString(prompt.LastNonEmptyLine(out)) {
			// keep going; some vendors need a second command to settle
			continue
		}
	}
	s.inConfig = true
	return nil
}

// exitConfigMode implements the reverse transition, issuing commit
// commands first for commit-based vendors (§4.5). A commit whose output
// matches ErrorRegex is a rejected commit (§7 CommitError); exit-config
// still runs regardless so a rejected commit doesn't leave the Session
// stuck in config mode.
func (s *Session) exitConfigMode() error {
	if !s.inConfig {
		return nil
	}
	var commitErr error
	for _, cmd := range s.hooks.CommitCmds {
		out, _ := s.writeAndCollect(cmd, s.opts.CommandTimeout)
		if s.hooks.ErrorRegex != nil && s.hooks.ErrorRegex.MatchString(sanitize.Sanitize(out, cmd)) {
			commitErr = schema.ErrCommit
		}
	}
	for _, cmd := range s.hooks.ExitConfigCmds {
		_, _ = s.writeAndCollect(cmd, s.opts.CommandTimeout)
	}
	s.inConfig = false
	return commitErr
}

// SendConfig enters config mode, sends each command, stops on the first
// error-matching output, attempts to exit config regardless, and returns
// the aggregated CommandResult (§4.5).
func (s *Session) SendConfig(commands []string) schema.CommandResult {
	start := time.Now()
	joined := strings.Join(commands, "; ")
	result := schema.CommandResult{
		Command:    joined,
		DeviceType: s.deviceType,
		Host:       s.creds.Host,
		Timestamp:  start,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		result.Error = s.notConnectedError().Error()
		result.ExecutionTime = time.Since(start)
		return result
	}

	if err := s.enterConfigMode(); err != nil {
		result.Error = err.Error()
		result.ExecutionTime = time.Since(start)
		if s.opts.FailOnError {
			s.log.Errorf("sendConfig %q on %s: %s", joined, s.creds.Host, err)
		}
		return result
	}

	var out strings.Builder
	var failed error
	for _, cmd := range commands {
		raw, err := s.writeAndCollect(cmd, s.opts.CommandTimeout)
		clean := sanitize.Sanitize(raw, cmd)
		out.WriteString(clean)
		out.WriteString("\n")
		if err != nil {
			failed = err
			break
		}
		if s.hooks.ErrorRegex != nil && s.hooks.ErrorRegex.MatchString(clean) {
			failed = schema.ErrCommand
			break
		}
	}

	if commitErr := s.exitConfigMode(); commitErr != nil && failed == nil {
		failed = commitErr
	}

	result.Output = strings.TrimSpace(out.String())
	result.ExecutionTime = time.Since(start)
	if failed != nil {
		result.Error = failed.Error()
		if s.opts.FailOnError {
			s.log.Errorf("sendConfig %q on %s: %s", joined, s.creds.Host, failed)
		}
		return result
	}
	result.Success = true
	return result
}

// GetCurrentConfig issues the vendor's show-running-config command.
func (s *Session) GetCurrentConfig() schema.CommandResult {
	cmd := s.hooks.GetConfigCmd
	if cmd == "" {
		cmd = "show running-config"
	}
	return s.SendCommand(cmd)
}

// SaveConfig issues the vendor's persist-configuration sequence, answering
// any [Y/N]-style confirmation automatically (§4.5).
func (s *Session) SaveConfig() schema.CommandResult {
	start := time.Now()
	result := schema.CommandResult{
		Command:    strings.Join(s.hooks.SaveConfigCmds, "; "),
		DeviceType: s.deviceType,
		Host:       s.creds.Host,
		Timestamp:  start,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		result.Error = s.notConnectedError().Error()
		result.ExecutionTime = time.Since(start)
		return result
	}

	var out strings.Builder
	for _, cmd := range s.hooks.SaveConfigCmds {
		chunk, ok := s.sendAndConfirm(cmd, s.opts.CommandTimeout, true)
		out.WriteString(sanitize.Sanitize(chunk, cmd))
		out.WriteString("\n")
		if !ok {
			result.Error = schema.ErrTimeout.Error()
			result.Output = strings.TrimSpace(out.String())
			result.ExecutionTime = time.Since(start)
			return result
		}
	}
	result.Output = strings.TrimSpace(out.String())
	result.Success = true
	result.ExecutionTime = time.Since(start)
	return result
}

// RebootDevice issues the vendor's reboot command and accepts the
// confirmation dialog; it does not wait for the device to come back
// (§7: "Reboot requests surface success as soon as the confirmation is
// accepted").
func (s *Session) RebootDevice() schema.CommandResult {
	start := time.Now()
	result := schema.CommandResult{
		Command:    s.hooks.RebootCmd,
		DeviceType: s.deviceType,
		Host:       s.creds.Host,
		Timestamp:  start,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		result.Error = s.notConnectedError().Error()
		result.ExecutionTime = time.Since(start)
		return result
	}
	if s.hooks.RebootCmd == "" {
		result.Error = "vendor does not define a reboot command"
		result.ExecutionTime = time.Since(start)
		return result
	}
	chunk, _ := s.sendAndConfirm(s.hooks.RebootCmd, s.opts.CommandTimeout, false)
	result.Output = sanitize.Sanitize(chunk, s.hooks.RebootCmd)
	result.Success = true
	result.ExecutionTime = time.Since(start)
	return result
}

// sendAndConfirm writes command, then polls short reads answering "y" to
// any chunk matching ConfirmationRegex. When waitForPrompt is true it
// keeps polling until the base prompt reappears or the timeout elapses;
// otherwise it returns as soon as a confirmation was accepted.
func (s *Session) sendAndConfirm(command string, timeout time.Duration, waitForPrompt bool) (string, bool) {
	if err := s.ch.WriteLine(command, s.newlineSeq); err != nil {
		return "", false
	}
	var acc strings.Builder
	deadline := time.Now().Add(timeout)
	confirmed := false
	for time.Now().Before(deadline) {
		chunk := s.ch.Read(300 * time.Millisecond)
		acc.WriteString(chunk)
		if chunk == "" {
			if confirmed && !waitForPrompt {
				return acc.String(), true
			}
			continue
		}
		if s.hooks.ConfirmationRegex != nil && s.hooks.ConfirmationRegex.MatchString(chunk) {
			reply := "y"
			if s.hooks.ConfirmationReply != nil {
				reply = s.hooks.ConfirmationReply(s, chunk)
			}
			_ = s.ch.WriteLine(reply, s.newlineSeq)
			confirmed = true
			if !waitForPrompt {
				return acc.String(), true
			}
			continue
		}
		if prompt.MatchesTail(acc.String(), nil, s.prompt.BasePrompt, true) {
			return acc.String(), true
		}
	}
	return acc.String(), confirmed && !waitForPrompt
}

// Disconnect exits config mode if entered, issues a graceful logout,
// closes the channel and the SSH client. Idempotent (§4.5, P3).
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hooks.DisconnectFunc != nil {
		return s.hooks.DisconnectFunc(s)
	}
	return s.disconnectLocked()
}

// DefaultDisconnect runs the base logout/close sequence. Vendor
// DisconnectFunc overrides that only need to run something *before* the
// standard teardown (UniFi's telnet exit) call this last. Must only be
// called while already holding s.mu (i.e. from within a DisconnectFunc).
func (s *Session) DefaultDisconnect() error { return s.disconnectLocked() }

func (s *Session) disconnectLocked() error {
	if !s.connected {
		return nil
	}
	if s.inConfig {
		_ = s.exitConfigMode()
	}
	for _, cmd := range s.hooks.LogoutCmds {
		chunk, _ := s.sendAndConfirm(cmd, 3*time.Second, false)
		if s.hooks.SaveOnLogoutRegex != nil && s.hooks.SaveOnLogoutRegex.MatchString(chunk) {
			reply := s.hooks.SaveOnLogoutReply
			if reply == "" {
				reply = "n"
			}
			_ = s.ch.WriteLine(reply, s.newlineSeq)
		}
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.opened != nil {
		if s.opened.SSHSession != nil {
			_ = s.opened.SSHSession.Close()
		}
		if s.opened.Client != nil {
			_ = s.opened.Client.Close()
		}
	}
	s.connected = false
	s.inEnable = false
	s.inConfig = false
	return nil
}
