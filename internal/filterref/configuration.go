package filterref

const (
	configurationSpanKeyConstant = "span"
	defaultSpanTextConstant      = "6m"
)

// CommandConfiguration captures configuration values for the filter-ref command.
type CommandConfiguration struct {
	Span Span `mapstructure:"span"`
}

// DefaultCommandConfiguration provides baseline configuration values for the filter-ref command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Span: DefaultSpan()}
}

// DefaultConfigurationValues produces Viper defaults for the filter-ref command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + "." + configurationSpanKeyConstant: defaultSpanTextConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	if configuration.Span.Oldest <= 0 {
		configuration.Span = DefaultSpan()
	}
	return configuration
}
