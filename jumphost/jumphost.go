// Package jumphost implements the Jump-Host Wrapper (§4.7): a Session
// decorator that dials a bastion first, then tunnels a direct-tcpip
// channel to the real target and runs the wrapped Session's Connect over
// it. Grounded on DevOps2100-lwshell's internal/ssh/client.go bastion-dial
// pattern (ssh.Dial to an intermediate host, then driving further
// connections off the resulting *ssh.Client) — the teacher repo itself has
// no bastion support, so this component is enriched from the rest of the
// example pack.
package jumphost

import (
	"fmt"
	"net"

	"github.com/netauto/sessioncore/schema"
	"github.com/netauto/sessioncore/transport"
	"golang.org/x/crypto/ssh"
)

// Wrapper owns the outer (bastion) *ssh.Client exclusively; the wrapped
// Session owns the inner, tunneled client (§3 Ownership).
type Wrapper struct {
	*transport.Session // the wrapped target Session; unexported fields stay private to transport

	outer *ssh.Client
	log   schema.Logger
}

// Wrap decorates a not-yet-connected target Session with bastion
// tunneling. The target Session must have been built with credentials
// whose JumpHost block is complete (schema.Credentials.HasJumpHost).
func Wrap(target *transport.Session, log schema.Logger) *Wrapper {
	return &Wrapper{Session: target, log: log}
}

// Connect dials the bastion, opens a direct-tcpip channel to the target,
// authenticates a second SSH client over that channel, and then runs the
// wrapped Session's shell allocation over the tunneled client (§4.7).
func (w *Wrapper) Connect() error {
	creds := w.Session.Credentials()
	jh := creds.JumpHost
	if jh == nil || jh.Host == "" || jh.Username == "" {
		return fmt.Errorf("%w: jump-host block incomplete", schema.ErrConnect)
	}

	bastionCreds := schema.Credentials{
		Host:       jh.Host,
		Port:       jh.Port,
		Username:   jh.Username,
		Auth:       jh.Auth,
		Password:   jh.Password,
		PrivateKey: jh.PrivateKey,
		Passphrase: jh.Passphrase,
	}
	auth, err := transport.BuildAuthMethods(bastionCreds)
	if err != nil {
		return err
	}
	bastionPort := jh.Port
	if bastionPort == 0 {
		bastionPort = 22
	}
	bastionAddr := net.JoinHostPort(jh.Host, fmt.Sprint(bastionPort))

	outerCfg := &ssh.ClientConfig{
		User:            jh.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         w.Session.Options().ConnectionTimeout,
	}
	outer, err := ssh.Dial("tcp", bastionAddr, outerCfg)
	if err != nil {
		return fmt.Errorf("%w: bastion dial: %s", schema.ErrConnect, err)
	}
	w.outer = outer

	targetPort := creds.Port
	if targetPort == 0 {
		targetPort = 22
	}
	targetAddr := net.JoinHostPort(creds.Host, fmt.Sprint(targetPort))

	// direct-tcpip: ask the bastion to open a TCP stream to the real
	// target on our behalf.
	tunneled, err := outer.Dial("tcp", targetAddr)
	if err != nil {
		outer.Close()
		return fmt.Errorf("%w: direct-tcpip to %s: %s", schema.ErrConnect, targetAddr, err)
	}

	targetAuth, err := transport.BuildAuthMethods(creds)
	if err != nil {
		tunneled.Close()
		outer.Close()
		return err
	}
	innerCfg := &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            targetAuth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         w.Session.Options().ConnectionTimeout,
	}
	clientConn, chans, reqs, err := ssh.NewClientConn(tunneled, targetAddr, innerCfg)
	if err != nil {
		tunneled.Close()
		outer.Close()
		return fmt.Errorf("%w: %s", schema.ErrAuthOrAlgorithm, err)
	}
	inner := ssh.NewClient(clientConn, chans, reqs)

	if err := w.Session.ConnectOverClient(inner); err != nil {
		inner.Close()
		outer.Close()
		return err
	}
	return w.Session.SessionPreparation()
}

// Disconnect closes the inner (tunneled) session first, then the outer
// bastion client (§4.7, scenario 5).
func (w *Wrapper) Disconnect() error {
	err := w.Session.Disconnect()
	if w.outer != nil {
		if cerr := w.outer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.outer = nil
	}
	return err
}

// Cancel aborts the inner Session and then the outer bastion client — the
// embedded *transport.Session's Cancel has no visibility into the bastion
// leg, so leaving this unoverridden would abandon the outer client open
// (§4.7 ownership: the Wrapper owns the outer client exclusively).
func (w *Wrapper) Cancel() error {
	err := w.Session.Cancel()
	if w.outer != nil {
		if cerr := w.outer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.outer = nil
	}
	return err
}
