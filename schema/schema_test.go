package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netauto/sessioncore/schema"
)

func TestAdvancedOptions_ResolveDefaults(t *testing.T) {
	r := schema.AdvancedOptions{}.Resolve()
	assert.Equal(t, 10*time.Second, r.CommandTimeout)
	assert.Equal(t, 15*time.Second, r.ConnectionTimeout)
	assert.False(t, r.FastMode)
	assert.False(t, r.ConnectionPooling)
	assert.False(t, r.ReuseConnection)
	assert.Equal(t, 3, r.ConnectionRetryCount)
	assert.Equal(t, 2, r.CommandRetryCount)
	assert.Equal(t, 2*time.Second, r.RetryDelay)
	assert.True(t, r.FailOnError)
}

func TestAdvancedOptions_ResolveOverrides(t *testing.T) {
	timeout := 3 * time.Second
	retries := 7
	r := schema.AdvancedOptions{
		CommandTimeout:       &timeout,
		ConnectionRetryCount: &retries,
	}.Resolve()
	assert.Equal(t, timeout, r.CommandTimeout)
	assert.Equal(t, retries, r.ConnectionRetryCount)
	// untouched fields keep their documented defaults
	assert.Equal(t, 15*time.Second, r.ConnectionTimeout)
	assert.True(t, r.FailOnError)
}

func TestAdvancedOptions_FastModeShortensCommandTimeoutUnlessOverridden(t *testing.T) {
	fast := true
	r := schema.AdvancedOptions{FastMode: &fast}.Resolve()
	assert.True(t, r.FastMode)
	assert.Equal(t, 5*time.Second, r.CommandTimeout)

	explicit := 9 * time.Second
	r2 := schema.AdvancedOptions{FastMode: &fast, CommandTimeout: &explicit}.Resolve()
	assert.Equal(t, explicit, r2.CommandTimeout)
}

func TestCredentials_HasJumpHost(t *testing.T) {
	c := schema.Credentials{}
	assert.False(t, c.HasJumpHost())

	c.JumpHost = &schema.JumpHost{}
	assert.False(t, c.HasJumpHost(), "empty jump-host block is incomplete")

	c.JumpHost = &schema.JumpHost{Host: "bastion"}
	assert.False(t, c.HasJumpHost(), "missing username is incomplete")

	c.JumpHost = &schema.JumpHost{Host: "bastion", Username: "jump"}
	assert.True(t, c.HasJumpHost())
}

func TestKeyOf(t *testing.T) {
	c := schema.Credentials{Host: "10.0.0.1", Port: 22, Username: "admin", DeviceType: "cisco_ios"}
	k1 := schema.KeyOf(c)
	k2 := schema.KeyOf(c)
	assert.Equal(t, k1, k2)

	c.Port = 2222
	k3 := schema.KeyOf(c)
	assert.NotEqual(t, k1, k3)
}
