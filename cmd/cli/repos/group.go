// Package repos wires the repository listing commands into the git-tools command tree.
package repos

import (
	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/repos/scan"
)

const (
	groupUseConstant              = "repos"
	groupShortDescriptionConstant = "List local clones and GitHub repositories"
	groupLongDescriptionConstant  = "repos groups subcommands that list repositories discovered on disk or owned on GitHub."
)

// CommandGroupBuilder assembles the repos command group.
type CommandGroupBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ScanConfigurationProvider    func() scan.Configuration
	GitHubConfigurationProvider  func() GitHubConfiguration
	Dependencies                 scan.Dependencies
	GitHubClientFactory          GitHubClientFactory
	EnvironmentLookup            func(key string) (string, bool)
}

// Build constructs the repos command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	listBuilder := ListCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ScanConfigurationProvider:    builder.ScanConfigurationProvider,
		Dependencies:                 builder.Dependencies,
	}
	listCommand, listError := listBuilder.Build()
	if listError != nil {
		return nil, listError
	}
	command.AddCommand(listCommand)

	githubBuilder := GitHubCommandBuilder{
		LoggerProvider:        builder.LoggerProvider,
		ConfigurationProvider: builder.GitHubConfigurationProvider,
		ClientFactory:         builder.GitHubClientFactory,
		EnvironmentLookup:     builder.EnvironmentLookup,
	}
	githubCommand, githubError := githubBuilder.Build()
	if githubError != nil {
		return nil, githubError
	}
	command.AddCommand(githubCommand)

	return command, nil
}

func resolveScanConfiguration(provider func() scan.Configuration) scan.Configuration {
	if provider == nil {
		return scan.DefaultConfiguration()
	}
	return provider()
}

func resolveFlag(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}
