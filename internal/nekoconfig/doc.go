// Package nekoconfig assembles a model.LaunchConfig from three layers, in
// ascending precedence: compiled-in defaults, NEKO_* environment variables,
// and CLI flags explicitly set by the operator.
//
// The env-var layer is struct-tag driven via github.com/caarlos0/env/v11,
// the same library and pattern alexandremahdhaoui-forge uses for its own
// tool envs (an Envs struct parsed once with env.Parse). Beyond the
// state/lock file paths, this layer is this module's own home for the
// rest of the launch knobs operators want to set once per host.
package nekoconfig
