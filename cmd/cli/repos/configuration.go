package repos

import (
	"strings"

	"github.com/scottidler/git-tools/internal/githubapi"
	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	configurationOwnerTypeKeyConstant       = "owner_type"
	configurationIncludeArchivedKeyConstant = "include_archived"
	configurationTokenPathKeyConstant       = "token_path"
	defaultTokenPathConstant                = "~/.config/github/tokens"
)

// GitHubConfiguration captures configuration values for repos github.
type GitHubConfiguration struct {
	OwnerType       string `mapstructure:"owner_type"`
	IncludeArchived bool   `mapstructure:"include_archived"`
	TokenPath       string `mapstructure:"token_path"`
}

// DefaultGitHubConfiguration returns baseline configuration values for repos github.
func DefaultGitHubConfiguration() GitHubConfiguration {
	return GitHubConfiguration{
		OwnerType:       githubapi.OrganizationOwnerType.String(),
		IncludeArchived: false,
		TokenPath:       defaultTokenPathConstant,
	}
}

// DefaultGitHubConfigurationValues produces Viper defaults for repos github under rootKey.
func DefaultGitHubConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultGitHubConfiguration()
	return map[string]any{
		rootKey + "." + configurationOwnerTypeKeyConstant:       defaults.OwnerType,
		rootKey + "." + configurationIncludeArchivedKeyConstant: defaults.IncludeArchived,
		rootKey + "." + configurationTokenPathKeyConstant:       defaults.TokenPath,
	}
}

func (configuration GitHubConfiguration) sanitize() GitHubConfiguration {
	sanitized := configuration
	sanitized.OwnerType = strings.ToLower(strings.TrimSpace(configuration.OwnerType))
	if len(sanitized.OwnerType) == 0 {
		sanitized.OwnerType = githubapi.OrganizationOwnerType.String()
	}
	sanitized.TokenPath = pathutils.NewHomeExpander().Expand(strings.TrimSpace(configuration.TokenPath))
	return sanitized
}
