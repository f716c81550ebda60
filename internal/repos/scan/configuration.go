package scan

import (
	"strings"

	"github.com/scottidler/git-tools/internal/repos/shared"
	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	configurationRootsKeyConstant       = "roots"
	configurationStrictKeyConstant      = "strict"
	configurationParallelismKeyConstant = "parallelism"
	configurationRemoteKeyConstant      = "remote"
	defaultRepositoryRootConstant       = "."
	defaultParallelismConstant          = 4
)

// Configuration captures the repository scanning settings shared by every multi-repository command.
type Configuration struct {
	Roots       []string `mapstructure:"roots"`
	Strict      bool     `mapstructure:"strict"`
	Parallelism int      `mapstructure:"parallelism"`
	Remote      string   `mapstructure:"remote"`
}

// DefaultConfiguration returns baseline scanning settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Roots:       []string{defaultRepositoryRootConstant},
		Strict:      false,
		Parallelism: defaultParallelismConstant,
		Remote:      shared.OriginRemoteNameConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for scanning settings under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + "." + configurationRootsKeyConstant:       defaults.Roots,
		rootKey + "." + configurationStrictKeyConstant:      defaults.Strict,
		rootKey + "." + configurationParallelismKeyConstant: defaults.Parallelism,
		rootKey + "." + configurationRemoteKeyConstant:      defaults.Remote,
	}
}

// Sanitize normalizes roots, clamps parallelism, and restores the default remote when unset.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Roots = pathutils.NewRootNormalizer(nil).Normalize(configuration.Roots)
	if len(sanitized.Roots) == 0 {
		sanitized.Roots = []string{defaultRepositoryRootConstant}
	}
	if sanitized.Parallelism < 1 {
		sanitized.Parallelism = 1
	}
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = shared.OriginRemoteNameConstant
	}
	return sanitized
}
