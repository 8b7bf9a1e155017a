package autodetect_test

import (
	"bufio"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/netauto/sessioncore/autodetect"
	"github.com/netauto/sessioncore/schema"
	"github.com/netauto/sessioncore/vendor"
)

// startBannerDevice answers the Auto-Detector's single blank-line probe
// with a canned banner, then closes on whatever the probe sends next
// (Detect's deferred Disconnect issuing "exit"). Grounded on the same
// embedded golang.org/x/crypto/ssh server pattern transport's mock device
// uses, pared down to the one exchange Detect actually needs.
func startBannerDevice(t *testing.T, banner string) (host string, port int) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, pw []byte) (*ssh.Permissions, error) {
			if meta.User() == "probe" && string(pw) == "probe" {
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
			go acceptBannerConn(nConn, config, banner)
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	var portNum int
	fmt.Sscanf(p, "%d", &portNum)
	return h, portNum
}

func acceptBannerConn(nConn net.Conn, config *ssh.ServerConfig, banner string) {
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
		go func() {
			for req := range requests {
				if req.Type == "pty-req" || req.Type == "shell" || req.Type == "env" || req.Type == "window-change" {
					if req.WantReply {
						_ = req.Reply(true, nil)
					}
					if req.Type == "shell" {
						go func() {
							r := bufio.NewReader(channel)
							_, _ = r.ReadString('\n') // the probe's blank-line write
							_, _ = channel.Write([]byte(banner))
							_, _ = r.ReadString('\n') // "exit" from the deferred Disconnect
							_ = channel.Close()
						}()
					}
				} else if req.WantReply {
					_ = req.Reply(false, nil)
				}
			}
		}()
	}
}

func detectCreds(host string, port int) schema.Credentials {
	return schema.Credentials{
		Host:     host,
		Port:     port,
		Username: "probe",
		Auth:     schema.AuthPassword,
		Password: "probe",
	}
}

// TestDetect_NexusBeforeGenericCisco is P8: a banner containing both
// "cisco" and "nexus" must resolve to cisco_nxos, not the generic cisco_ios
// fallback, because the nexus rule is checked first.
func TestDetect_NexusBeforeGenericCisco(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nCisco Nexus Operating System (NX-OS) Software\r\nswitch#")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.CiscoNXOS, tag)
}

func TestDetect_PlainCiscoIOS(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nCisco IOS Software\r\nRouter#")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.CiscoIOS, tag)
}

func TestDetect_MikrotikSwitchOSOverRouterOS(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nMikroTik SwitchOS\r\n[admin@switch]> ")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.MikrotikSwitchOS, tag)
}

func TestDetect_UbiquitiUniFiSubCase(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nUbiquiti UniFi Switch\r\nBZ.v4#")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.UbiquitiUniFi, tag)
}

// TestDetect_UbiquitiHeuristicDefault covers the §9 Open Question decision:
// a bare "ubnt" banner with none of the sub-case substrings falls back to
// EdgeSwitch.
func TestDetect_UbiquitiHeuristicDefault(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nUBNT\r\nubnt#")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.UbiquitiEdgeSwitch, tag)
}

func TestDetect_ExtremeEXOS(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nExtremeXOS\r\nswitch.1#")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, vendor.ExtremeEXOS, tag)
}

func TestDetect_NoMatch(t *testing.T) {
	host, port := startBannerDevice(t, "\r\nUnknown Widget OS\r\nwidget>")
	tag, err := autodetect.Detect(detectCreds(host, port), schema.AdvancedOptions{})
	require.NoError(t, err)
	assert.Equal(t, schema.DeviceType(""), tag)
}
