package nekoconfig

import (
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/jebin2/neko-launcher/internal/model"
)

// Envs is the environment-variable layer, parsed once per process. Only
// NEKO_PORT_STATE_FILE and NEKO_PORT_LOCK_FILE are named by the external
// interface contract (state/lock file location); the remaining fields are
// this module's own defaults for knobs the CLI flags may then override.
type Envs struct {
	PortStateFile string `env:"NEKO_PORT_STATE_FILE" envDefault:"/tmp/neko_port_state.json"`
	PortLockFile  string `env:"NEKO_PORT_LOCK_FILE" envDefault:"/tmp/neko_port_state.lock"`

	ImageTag            string `env:"NEKO_IMAGE_TAG" envDefault:"m1k1o/neko:chromium"`
	ChromeFlags         string `env:"NEKO_CHROME_FLAGS"`
	ConnectionTimeoutS  int    `env:"NEKO_CONNECTION_TIMEOUT_S" envDefault:"30"`
	ScreenshotIntervalS int    `env:"NEKO_SCREENSHOT_INTERVAL_S" envDefault:"5"`
	HostNetwork         bool   `env:"NEKO_HOST_NETWORK" envDefault:"false"`
	TakeScreenshot      bool   `env:"NEKO_TAKE_SCREENSHOT" envDefault:"false"`
	ProfileBaseDir      string `env:"NEKO_PROFILE_BASE_DIR" envDefault:"/tmp/neko-profiles"`

	// BuildCommand, if set, is shelled out to by launcher.ExternalCommandBuilder
	// when image_exists reports the image missing. Empty means building is
	// not configured: a missing image is always fatal.
	BuildCommand string `env:"NEKO_BUILD_COMMAND"`
}

// LoadEnvs parses the NEKO_* environment into an Envs value, compiled-in
// envDefault tags standing in for any variable left unset.
func LoadEnvs() (Envs, error) {
	var e Envs
	if err := env.Parse(&e); err != nil {
		return Envs{}, model.NewValidationError("", "failed to parse NEKO_* environment: "+err.Error())
	}
	return e, nil
}

// FlagOverrides carries CLI-flag values the operator explicitly set. A nil
// pointer (or nil slice) means "flag not set" — the env/default layer wins
// for that field. This mirrors cobra's Changed() convention: only an
// explicitly-set flag is allowed to shadow a lower-precedence layer.
type FlagOverrides struct {
	ProfileDir          *string
	ConnectionTimeoutS  *int
	ChromeFlags         *string
	HostNetwork         *bool
	ImageTag            *string
	TakeScreenshot      *bool
	ScreenshotIntervalS *int
	ExtraRunArgs        []string
}

// BuildLaunchConfig assembles a LaunchConfig for name/url from e (defaults
// and env vars already merged by LoadEnvs) overlaid with overrides, in that
// ascending-precedence order. Port fields are left zero: the Allocator
// populates them during Launch.
func (e Envs) BuildLaunchConfig(name, url string, overrides FlagOverrides) model.LaunchConfig {
	cfg := model.LaunchConfig{
		ContainerName:       name,
		URL:                 url,
		ProfileDir:          filepath.Join(e.ProfileBaseDir, name),
		ConnectionTimeoutS:  e.ConnectionTimeoutS,
		ChromeFlags:         e.ChromeFlags,
		HostNetwork:         e.HostNetwork,
		ImageTag:            e.ImageTag,
		TakeScreenshot:      e.TakeScreenshot,
		ScreenshotIntervalS: e.ScreenshotIntervalS,
	}

	if overrides.ProfileDir != nil {
		cfg.ProfileDir = *overrides.ProfileDir
	}
	if overrides.ConnectionTimeoutS != nil {
		cfg.ConnectionTimeoutS = *overrides.ConnectionTimeoutS
	}
	if overrides.ChromeFlags != nil {
		cfg.ChromeFlags = *overrides.ChromeFlags
	}
	if overrides.HostNetwork != nil {
		cfg.HostNetwork = *overrides.HostNetwork
	}
	if overrides.ImageTag != nil {
		cfg.ImageTag = *overrides.ImageTag
	}
	if overrides.TakeScreenshot != nil {
		cfg.TakeScreenshot = *overrides.TakeScreenshot
	}
	if overrides.ScreenshotIntervalS != nil {
		cfg.ScreenshotIntervalS = *overrides.ScreenshotIntervalS
	}
	if overrides.ExtraRunArgs != nil {
		cfg.ExtraRunArgs = overrides.ExtraRunArgs
	}

	return cfg
}
