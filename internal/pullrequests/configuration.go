package pullrequests

const (
	configurationLimitKeyConstant = "limit"
	defaultLimitConstant          = 100
)

// CommandConfiguration captures configuration values for the prs commands.
type CommandConfiguration struct {
	Limit int `mapstructure:"limit"`
}

// DefaultCommandConfiguration provides baseline configuration values for the prs commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Limit: defaultLimitConstant}
}

// DefaultConfigurationValues produces Viper defaults for the prs commands under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + "." + configurationLimitKeyConstant: defaultLimitConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.Limit <= 0 {
		sanitized.Limit = defaultLimitConstant
	}
	return sanitized
}
