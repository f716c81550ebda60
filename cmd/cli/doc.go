// Package cli constructs the git-tools command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. Configuration is read from the embedded defaults, then
// config.yaml in the working directory or $XDG_CONFIG_HOME/git-tools, then
// GITTOOLS_* environment variables, then persistent flags.
package cli
