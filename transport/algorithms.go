package transport

import "golang.org/x/crypto/ssh"

// AlgorithmProfile is one rung of the progressive SSH algorithm fallback
// ladder described in §4.1: modern, then legacy, then ultra-legacy.
type AlgorithmProfile struct {
	Name              string
	KeyExchanges      []string
	Ciphers           []string
	MACs              []string
	HostKeyAlgorithms []string
}

// Profiles is tried in order; exhausting all of them without a successful
// handshake is a permanent AuthOrAlgorithmError (§4.1).
var Profiles = []AlgorithmProfile{
	{
		Name: "modern",
		KeyExchanges: []string{
			"curve25519-sha256", "curve25519-sha256@libssh.org",
			"ecdh-sha2-nistp256", "ecdh-sha2-nistp384", "ecdh-sha2-nistp521",
		},
		Ciphers: []string{
			"aes128-gcm@openssh.com", "aes256-gcm@openssh.com",
			"chacha20-poly1305@openssh.com",
		},
		MACs:              []string{"hmac-sha2-256", "hmac-sha2-512"},
		HostKeyAlgorithms: []string{"ssh-ed25519", "rsa-sha2-256", "rsa-sha2-512"},
	},
	{
		Name: "legacy",
		KeyExchanges: []string{
			"diffie-hellman-group-exchange-sha256",
			"diffie-hellman-group-exchange-sha1",
			"diffie-hellman-group14-sha1",
		},
		Ciphers:           []string{"aes128-cbc", "aes192-cbc", "aes256-cbc"},
		MACs:              []string{"hmac-sha1"},
		HostKeyAlgorithms: []string{"ssh-rsa", "ssh-dss"},
	},
	{
		Name:              "ultra-legacy",
		KeyExchanges:      []string{"diffie-hellman-group1-sha1"},
		Ciphers:           []string{"3des-cbc"},
		MACs:              []string{"hmac-md5"},
		HostKeyAlgorithms: []string{"ssh-rsa"},
	},
}

// Apply layers the profile's algorithm lists onto a client config.
func (p AlgorithmProfile) Apply(cfg *ssh.ClientConfig) {
	cfg.Config.KeyExchanges = p.KeyExchanges
	cfg.Config.Ciphers = p.Ciphers
	cfg.Config.MACs = p.MACs
	cfg.HostKeyAlgorithms = p.HostKeyAlgorithms
}
