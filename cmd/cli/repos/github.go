package repos

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/githubapi"
	"github.com/scottidler/git-tools/internal/githubauth"
	"github.com/scottidler/git-tools/internal/repos/scan"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
)

const (
	githubUseConstant                 = "github <owner>"
	githubShortDescriptionConstant    = "List the repositories of a GitHub user or organization"
	githubLongDescriptionConstant     = "github prints the full name of every repository the owner holds on GitHub, sorted. The token is read from <token-path>/<owner>, then GH_TOKEN, GITHUB_TOKEN and GITHUB_API_TOKEN; without one the listing is unauthenticated."
	flagOwnerTypeNameConstant         = "owner-type"
	flagOwnerTypeDescriptionConstant  = "Whether the owner is a user or an organization"
	flagArchivedNameConstant          = "archived"
	flagArchivedDescriptionConstant   = "Include archived repositories"
	flagTokenPathNameConstant         = "token-path"
	flagTokenPathDescriptionConstant  = "Directory holding one token file per owner"
	tokenResolvedLogMessageConstant   = "github token resolved"
	unauthenticatedLogMessageConstant = "no github token found; listing unauthenticated"
	logFieldOwnerConstant             = "owner"
	logFieldTokenSourceConstant       = "source"
)

// RepositoryLister lists the repository names of a GitHub owner.
type RepositoryLister interface {
	ListRepositoryNames(executionContext context.Context, owner string, options githubapi.ListOptions) ([]string, error)
}

// GitHubClientFactory builds a RepositoryLister for the resolved client configuration.
type GitHubClientFactory func(logger *zap.Logger, configuration githubapi.ClientConfiguration) (RepositoryLister, error)

// GitHubCommandBuilder assembles the repos github command.
type GitHubCommandBuilder struct {
	LoggerProvider        scan.LoggerProvider
	ConfigurationProvider func() GitHubConfiguration
	ClientFactory         GitHubClientFactory
	EnvironmentLookup     func(key string) (string, bool)
	FileReader            githubauth.FileReader
}

// Build constructs the repos github command.
func (builder *GitHubCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   githubUseConstant,
		Short: githubShortDescriptionConstant,
		Long:  githubLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultGitHubConfiguration()
	ownerTypes := []string{githubapi.UserOwnerType.String(), githubapi.OrganizationOwnerType.String()}
	command.Flags().Var(flagutils.NewChoiceValue(defaults.OwnerType, ownerTypes), flagOwnerTypeNameConstant, flagutils.FormatChoiceUsage(defaults.OwnerType, ownerTypes, flagOwnerTypeDescriptionConstant))
	flagutils.AddToggleFlag(command.Flags(), nil, flagArchivedNameConstant, "", defaults.IncludeArchived, flagArchivedDescriptionConstant)
	command.Flags().String(flagTokenPathNameConstant, defaults.TokenPath, flagTokenPathDescriptionConstant)

	return command, nil
}

func (builder *GitHubCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	ownerType, ownerTypeError := githubapi.ParseOwnerType(configuration.OwnerType)
	if ownerTypeError != nil {
		return ownerTypeError
	}
	owner := arguments[0]

	logger := scan.ResolveLogger(builder.LoggerProvider)
	tokenResolver := githubauth.OwnerTokenResolver{
		TokenDirectory:    configuration.TokenPath,
		EnvironmentLookup: githubauth.EnvironmentLookup(builder.EnvironmentLookup),
		FileReader:        builder.FileReader,
	}
	token, tokenSource, tokenError := tokenResolver.Resolve(owner)
	if tokenError != nil {
		return tokenError
	}
	if tokenSource == githubauth.TokenSourceNone {
		logger.Info(unauthenticatedLogMessageConstant, zap.String(logFieldOwnerConstant, owner))
	} else {
		logger.Debug(tokenResolvedLogMessageConstant, zap.String(logFieldOwnerConstant, owner), zap.String(logFieldTokenSourceConstant, string(tokenSource)))
	}

	clientFactory := builder.ClientFactory
	if clientFactory == nil {
		clientFactory = defaultGitHubClientFactory
	}
	client, clientError := clientFactory(logger, githubapi.ClientConfiguration{Token: token})
	if clientError != nil {
		return clientError
	}

	names, listError := client.ListRepositoryNames(command.Context(), owner, githubapi.ListOptions{
		OwnerType:       ownerType,
		IncludeArchived: configuration.IncludeArchived,
	})
	if listError != nil {
		command.SilenceUsage = true
		return listError
	}

	for _, name := range names {
		if _, writeError := fmt.Fprintln(command.OutOrStdout(), name); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (builder *GitHubCommandBuilder) resolveConfiguration(command *cobra.Command) GitHubConfiguration {
	configuration := DefaultGitHubConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagOwnerTypeNameConstant) {
		configuration.OwnerType, _ = flagSet.GetString(flagOwnerTypeNameConstant)
	}
	if flagSet.Changed(flagArchivedNameConstant) {
		configuration.IncludeArchived, _ = flagSet.GetBool(flagArchivedNameConstant)
	}
	if flagSet.Changed(flagTokenPathNameConstant) {
		configuration.TokenPath, _ = flagSet.GetString(flagTokenPathNameConstant)
	}
	return configuration.sanitize()
}

func defaultGitHubClientFactory(logger *zap.Logger, configuration githubapi.ClientConfiguration) (RepositoryLister, error) {
	return githubapi.NewClient(logger, configuration)
}
