package transport_test

import (
	"bufio"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/netauto/sessioncore/transport"
)

const mockUser = "admin"
const mockPassword = "secret"

// deviceScript plays the part of the device once a client has requested an
// interactive shell over the mock server's session channel.
type deviceScript func(ch ssh.Channel)

// startMockDevice spins up a real loopback SSH server, exactly the way
// transport/casa_test.go drove a fake device over a real net.Listen socket
// — generalized from a plain TCP/telnet listener to a genuine
// golang.org/x/crypto/ssh server since the target here is SSH, not telnet.
func startMockDevice(t *testing.T, script deviceScript) (host string, port int) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if meta.User() == mockUser && string(password) == mockPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("denied")
		},
	}
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			nConn, err := ln.Accept()
			if err != nil {
				return
			}
			go acceptSession(nConn, config, script)
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	var portNum int
	fmt.Sscanf(p, "%d", &portNum)
	return h, portNum
}

// startRestrictedMockDevice is startMockDevice but pins the server's
// negotiable algorithms to a single profile, so only a client that walks
// the fallback ladder down to (or starts at) that profile can complete a
// handshake — the grounding for the algorithm-fallback test (P7).
func startRestrictedMockDevice(t *testing.T, script deviceScript, profile transport.AlgorithmProfile) (host string, port int) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		Config: ssh.Config{
			KeyExchanges: profile.KeyExchanges,
			Ciphers:      profile.Ciphers,
			MACs:         profile.MACs,
		},
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if meta.User() == mockUser && string(password) == mockPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("denied")
		},
	}
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			nConn, err := ln.Accept()
			if err != nil {
				return
			}
			go acceptSession(nConn, config, script)
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	var portNum int
	fmt.Sscanf(p, "%d", &portNum)
	return h, portNum
}

func acceptSession(nConn net.Conn, config *ssh.ServerConfig, script deviceScript) {
	sConn, chans, reqs, err := ssh.NewServerConn(nConn, config)
	if err != nil {
		return
	}
	defer sConn.Close()
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			return
		}
		go serveRequests(channel, requests, script)
	}
}

func serveRequests(channel ssh.Channel, requests <-chan *ssh.Request, script deviceScript) {
	for req := range requests {
		switch req.Type {
		case "pty-req", "shell", "env", "window-change":
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
			if req.Type == "shell" {
				go func() {
					script(channel)
					_ = channel.Close()
				}()
			}
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

// promptDevice builds a scripted "device" that answers a small command set
// the way a Cisco-family CLI would: a bare-prompt banner with no trailing
// newline, an enable/Password: escalation, config-mode entry/exit, and a
// handful of show/save/reload commands. Unrecognized commands get the
// vendor's generic error text.
func promptDevice(hostname string) deviceScript {
	return func(ch ssh.Channel) {
		r := bufio.NewReader(ch)
		write := func(s string) { _, _ = ch.Write([]byte(s)) }

		userPrompt := hostname + "> "
		privPrompt := hostname + "# "
		cur := userPrompt

		for {
			line, rerr := r.ReadString('\n')
			cmd := strings.TrimRight(strings.TrimRight(line, "\n"), "\r")

			switch {
			case cmd == "":
				write(cur)
			case cmd == "enable":
				write("Password: ")
				_, _ = r.ReadString('\n')
				cur = privPrompt
				write("\n" + cur)
			case cmd == "terminal length 0" || cmd == "terminal width 511":
				write("\n" + cur)
			case cmd == "configure terminal":
				cur = hostname + "(config)# "
				write("\nEnter configuration commands, one per line.\n" + cur)
			case cmd == "end":
				cur = privPrompt
				write("\n" + cur)
			case cmd == "hostname newname":
				write("\n" + cur)
			case cmd == "show version":
				write("\nCisco IOS Software, Version 15.2(4)M\n" + cur)
			case cmd == "write memory":
				write("\nBuilding configuration...\n[OK]\n" + cur)
			case cmd == "reload":
				write("\nProceed with reload? [confirm]")
				_, _ = r.ReadString('\n')
				write("\n" + cur)
			case cmd == "exit":
				write("\n")
				return
			default:
				write("\n% Invalid input detected\n" + cur)
			}

			if rerr != nil {
				return
			}
		}
	}
}
