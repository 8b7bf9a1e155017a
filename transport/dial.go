package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
	"golang.org/x/crypto/ssh"
)

// PTYSize is the default pseudo-terminal geometry requested for every
// device shell (§4.1): vt100, 200x24.
type PTYSize struct {
	Term   string
	Width  int
	Height int
}

// DefaultPTY is the size used unless a vendor plugin overrides it.
var DefaultPTY = PTYSize{Term: "vt100", Width: 200, Height: 24}

// Opened bundles the live transport handles a Session owns after a
// successful dial (invariant I1: one client, at most one channel).
type Opened struct {
	Client      *ssh.Client
	SSHSession  *ssh.Session
	Profile     string
	connRetries int
}

// BuildAuthMethods converts Credentials' auth block into the
// golang.org/x/crypto/ssh auth methods list. Exported so the jump-host
// wrapper can build the bastion's own auth from a JumpHost block.
func BuildAuthMethods(c schema.Credentials) ([]ssh.AuthMethod, error) {
	return buildAuthMethods(c)
}

func buildAuthMethods(c schema.Credentials) ([]ssh.AuthMethod, error) {
	switch c.Auth {
	case schema.AuthPassword:
		return []ssh.AuthMethod{ssh.Password(c.Password)}, nil
	case schema.AuthPrivateKey:
		var signer ssh.Signer
		var err error
		if c.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(c.PrivateKey, []byte(c.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(c.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing private key: %s", schema.ErrAuthOrAlgorithm, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown auth method", schema.ErrAuthOrAlgorithm)
	}
}

// Dial opens an SSH connection to host:port, retrying up to
// opts.ConnectionRetryCount times with opts.RetryDelay between attempts.
// Each attempt itself tries every algorithm profile in §4.1 order; that
// fallback is not counted against the retry budget.
func Dial(host string, port int, conf schema.Credentials, opts schema.ResolvedOptions, log schema.Logger) (*Opened, error) {
	auth, err := buildAuthMethods(conf)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, fmt.Sprint(port))

	var lastErr error
	for attempt := 0; attempt <= opts.ConnectionRetryCount; attempt++ {
		if attempt > 0 {
			log.Debugf("retrying dial to %s (attempt %d/%d) after %s", addr, attempt, opts.ConnectionRetryCount, opts.RetryDelay)
			time.Sleep(opts.RetryDelay)
		}
		client, profile, err := dialWithFallback(addr, conf.Username, auth, opts.ConnectionTimeout, log)
		if err == nil {
			sess, err := client.NewSession()
			if err != nil {
				client.Close()
				lastErr = fmt.Errorf("%w: creating ssh session: %s", schema.ErrConnect, err)
				continue
			}
			return &Opened{Client: client, SSHSession: sess, Profile: profile, connRetries: attempt}, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// dialWithFallback tries each algorithm profile in order against one
// address, returning on the first successful handshake.
func dialWithFallback(addr, user string, auth []ssh.AuthMethod, timeout time.Duration, log schema.Logger) (*ssh.Client, string, error) {
	var lastErr error
	for _, profile := range Profiles {
		cfg := &ssh.ClientConfig{
			User:            user,
			Auth:            auth,
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         timeout,
		}
		profile.Apply(cfg)

		if logger.Debug {
			log.Debugf("dialing %s with %s algorithm profile", addr, profile.Name)
		}
		client, err := ssh.Dial("tcp", addr, cfg)
		if err == nil {
			log.Infof("connected to %s using %s algorithm profile", addr, profile.Name)
			return client, profile.Name, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("%w: %s", schema.ErrAuthOrAlgorithm, lastErr)
}

// RequestShell allocates an interactive shell with the given PTY size and
// waits the fast/slow settle interval before the channel is considered
// usable (§4.1). It does not touch the session's stdin/stdout/stderr: the
// caller takes those pipes before calling it, since an *ssh.Session
// refuses pipe requests once Shell has started.
func RequestShell(sess *ssh.Session, size PTYSize, fastMode bool) error {
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty(size.Term, size.Height, size.Width, modes); err != nil {
		return fmt.Errorf("%w: pty request failed: %s", schema.ErrConnect, err)
	}
	if err := sess.Shell(); err != nil {
		return fmt.Errorf("%w: shell request failed: %s", schema.ErrConnect, err)
	}
	if fastMode {
		time.Sleep(200 * time.Millisecond)
	} else {
		time.Sleep(800 * time.Millisecond)
	}
	return nil
}
