package owners

import (
	"strings"

	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	configurationTopAuthorsKeyConstant           = "top_authors"
	configurationExEmployeesDirectoryKeyConstant = "ex_employees_directory"
	defaultTopAuthorsConstant                    = 5
	defaultExEmployeesDirectoryConstant          = "~/.config/git-tools/owners"
)

// CommandConfiguration captures configuration values for the owners command.
type CommandConfiguration struct {
	TopAuthors           int    `mapstructure:"top_authors"`
	ExEmployeesDirectory string `mapstructure:"ex_employees_directory"`
}

// DefaultCommandConfiguration provides baseline configuration values for the owners command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		TopAuthors:           defaultTopAuthorsConstant,
		ExEmployeesDirectory: defaultExEmployeesDirectoryConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the owners command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationTopAuthorsKeyConstant:           defaults.TopAuthors,
		rootKey + "." + configurationExEmployeesDirectoryKeyConstant: defaults.ExEmployeesDirectory,
	}
}

// sanitize expands the home directory and restores defaults for non-positive author limits.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.TopAuthors <= 0 {
		sanitized.TopAuthors = defaultTopAuthorsConstant
	}
	directory := strings.TrimSpace(sanitized.ExEmployeesDirectory)
	if len(directory) > 0 {
		directory = pathutils.NewHomeExpander().Expand(directory)
	}
	sanitized.ExEmployeesDirectory = directory
	return sanitized
}
