package pathutils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant               = "~"
	xdgConfigurationHomeConstant      = "XDG_CONFIG_HOME"
	defaultConfigurationHomeConstant  = ".config"
	homeRelativePathSeparatorConstant = "/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// HomeExpander resolves paths relative to the user's home and configuration directories.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentLookup     EnvironmentLookup
}

// NewHomeExpander constructs a HomeExpander using the operating system lookups.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir, os.LookupEnv)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with custom lookups.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider, environmentLookup EnvironmentLookup) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &HomeExpander{homeDirectoryProvider: provider, environmentLookup: environmentLookup}
}

// Expand replaces a leading ~ or ~/ with the home directory. Other paths, including ~user, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && !strings.HasPrefix(remainder, homeRelativePathSeparatorConstant) && !strings.HasPrefix(remainder, string(os.PathSeparator)) {
		return candidatePath
	}

	homeDirectory, homeError := expander.homeDirectoryProvider()
	if homeError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

// ConfigurationDirectory returns $XDG_CONFIG_HOME/<applicationName>, falling back to ~/.config/<applicationName>.
// An empty string means neither location could be determined.
func (expander *HomeExpander) ConfigurationDirectory(applicationName string) string {
	if expander == nil {
		return ""
	}
	if configurationHome, found := expander.environmentLookup(xdgConfigurationHomeConstant); found && len(strings.TrimSpace(configurationHome)) > 0 {
		return filepath.Join(strings.TrimSpace(configurationHome), applicationName)
	}

	homeDirectory, homeError := expander.homeDirectoryProvider()
	if homeError != nil || len(homeDirectory) == 0 {
		return ""
	}
	return filepath.Join(homeDirectory, defaultConfigurationHomeConstant, applicationName)
}
