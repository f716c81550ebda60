package clone

import (
	"strings"

	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	configurationRemoteKeyConstant          = "remote"
	configurationFallbackRemotesKeyConstant = "fallback_remotes"
	configurationClonePathKeyConstant       = "clone_path"
	configurationMirrorPathKeyConstant      = "mirror_path"
	configurationVersioningKeyConstant      = "versioning"
	defaultRemoteConstant                   = "ssh://git@github.com"
	defaultFallbackRemoteConstant           = "https://github.com"
	defaultClonePathConstant                = "."
)

// CommandConfiguration captures configuration values for the clone command.
type CommandConfiguration struct {
	Remote          string   `mapstructure:"remote"`
	FallbackRemotes []string `mapstructure:"fallback_remotes"`
	ClonePath       string   `mapstructure:"clone_path"`
	MirrorPath      string   `mapstructure:"mirror_path"`
	Versioning      bool     `mapstructure:"versioning"`
}

// DefaultCommandConfiguration provides baseline configuration values for the clone command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Remote:          defaultRemoteConstant,
		FallbackRemotes: []string{defaultFallbackRemoteConstant},
		ClonePath:       defaultClonePathConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the clone command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRemoteKeyConstant:          defaults.Remote,
		rootKey + "." + configurationFallbackRemotesKeyConstant: defaults.FallbackRemotes,
		rootKey + "." + configurationClonePathKeyConstant:       defaults.ClonePath,
		rootKey + "." + configurationMirrorPathKeyConstant:      defaults.MirrorPath,
		rootKey + "." + configurationVersioningKeyConstant:      defaults.Versioning,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	expander := pathutils.NewHomeExpander()
	sanitized := configuration

	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteConstant
	}

	sanitized.FallbackRemotes = nil
	for _, fallbackRemote := range configuration.FallbackRemotes {
		trimmed := strings.TrimSpace(fallbackRemote)
		if len(trimmed) > 0 {
			sanitized.FallbackRemotes = append(sanitized.FallbackRemotes, trimmed)
		}
	}

	sanitized.ClonePath = strings.TrimSpace(configuration.ClonePath)
	if len(sanitized.ClonePath) == 0 {
		sanitized.ClonePath = defaultClonePathConstant
	}
	sanitized.ClonePath = expander.Expand(sanitized.ClonePath)
	sanitized.MirrorPath = expander.Expand(strings.TrimSpace(configuration.MirrorPath))
	return sanitized
}
