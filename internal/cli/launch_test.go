// Package cli — launch_test.go tests flagOverrides' Changed()-gated
// mapping from cobra flags to nekoconfig.FlagOverrides.
package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Flags left at their defaults (never set) produce an all-nil
// FlagOverrides, deferring entirely to the env/default layer.
func TestFlagOverridesAllUnsetWhenNoFlagsPassed(t *testing.T) {
	cmd := NewLaunchCommand()
	flags := &launchFlags{}
	cmd.RunE = nil // not executing, just inspecting flag state

	overrides := flagOverrides(cmd, flags)

	assert.Nil(t, overrides.ProfileDir)
	assert.Nil(t, overrides.ConnectionTimeoutS)
	assert.Nil(t, overrides.ChromeFlags)
	assert.Nil(t, overrides.HostNetwork)
	assert.Nil(t, overrides.ImageTag)
	assert.Nil(t, overrides.TakeScreenshot)
	assert.Nil(t, overrides.ScreenshotIntervalS)
	assert.Nil(t, overrides.ExtraRunArgs)
}

// An explicitly-set flag surfaces as a non-nil override carrying its value,
// even when that value equals the flag's own zero-value default.
func TestFlagOverridesSurfacesExplicitlySetFlags(t *testing.T) {
	cmd := NewLaunchCommand()
	require.NoError(t, cmd.Flags().Set("image", "m1k1o/neko:firefox"))
	require.NoError(t, cmd.Flags().Set("host-network", "false"))
	require.NoError(t, cmd.Flags().Set("connection-timeout", "15"))

	imageFlag, _ := cmd.Flags().GetString("image")
	hostNetworkFlag, _ := cmd.Flags().GetBool("host-network")
	timeoutFlag, _ := cmd.Flags().GetInt("connection-timeout")
	flags := &launchFlags{imageTag: imageFlag, hostNetwork: hostNetworkFlag, connectionTimeoutS: timeoutFlag}

	overrides := flagOverrides(cmd, flags)

	require.NotNil(t, overrides.ImageTag)
	assert.Equal(t, "m1k1o/neko:firefox", *overrides.ImageTag)

	require.NotNil(t, overrides.HostNetwork)
	assert.False(t, *overrides.HostNetwork)

	require.NotNil(t, overrides.ConnectionTimeoutS)
	assert.Equal(t, 15, *overrides.ConnectionTimeoutS)

	assert.Nil(t, overrides.ChromeFlags)
}
