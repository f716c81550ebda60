package branches

import "strings"

const (
	configurationRefKeyConstant   = "ref"
	configurationFetchKeyConstant = "fetch"
	defaultRefConstant            = "refs/remotes/origin"
)

// CommandConfiguration captures configuration values for the branches commands.
type CommandConfiguration struct {
	Ref   string `mapstructure:"ref"`
	Fetch bool   `mapstructure:"fetch"`
}

// DefaultCommandConfiguration provides baseline configuration values for the branches commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Ref:   defaultRefConstant,
		Fetch: true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the branches commands under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRefKeyConstant:   defaults.Ref,
		rootKey + "." + configurationFetchKeyConstant: defaults.Fetch,
	}
}

// sanitize trims configuration values and restores the default ref when unset.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Ref = strings.TrimSpace(configuration.Ref)
	if len(sanitized.Ref) == 0 {
		sanitized.Ref = defaultRefConstant
	}
	return sanitized
}
