package pullrequests

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/githubcli"
	"github.com/scottidler/git-tools/internal/report"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	groupUseConstant                   = "prs"
	groupShortDescriptionConstant      = "Inspect open pull requests across local repositories"
	staleUseConstant                   = "stale <days> [root ...]"
	staleShortDescriptionConstant      = "List open pull requests created at least <days> ago"
	staleLongDescriptionConstant       = "stale discovers repositories under the roots and reports their open pull requests by author through the GitHub CLI."
	flagLimitNameConstant              = "limit"
	flagLimitDescriptionConstant       = "Maximum number of pull requests fetched per repository"
	flagDetailedNameConstant           = "detailed"
	flagDetailedDescriptionConstant    = "Print every pull request as YAML instead of a per-author summary"
	staleReportFailureMessageConstant  = "stale pull request report failed"
	missingDaysArgumentMessageConstant = "stale requires a <days> argument"
)

// CommandBuilder assembles the prs command group.
type CommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ScanConfigurationProvider    func() scan.Configuration
	Dependencies                 scan.Dependencies
	GitHubClient                 PullRequestLister
	Clock                        shared.Clock
}

// Build constructs the prs command hierarchy.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
	}

	staleCommand := &cobra.Command{
		Use:   staleUseConstant,
		Short: staleShortDescriptionConstant,
		Long:  staleLongDescriptionConstant,
		RunE:  builder.runStale,
	}
	staleCommand.Flags().Int(flagLimitNameConstant, DefaultCommandConfiguration().Limit, flagLimitDescriptionConstant)
	staleCommand.Flags().Bool(flagDetailedNameConstant, false, flagDetailedDescriptionConstant)
	scan.BindFlags(staleCommand)

	groupCommand.AddCommand(staleCommand)
	return groupCommand, nil
}

func (builder *CommandBuilder) runStale(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		_ = command.Help()
		return errors.New(missingDaysArgumentMessageConstant)
	}
	days, daysError := report.ParseDays(arguments[0])
	if daysError != nil {
		return daysError
	}

	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(flagLimitNameConstant) {
		configuration.Limit, _ = command.Flags().GetInt(flagLimitNameConstant)
		configuration = configuration.sanitize()
	}
	detailed, _ := command.Flags().GetBool(flagDetailedNameConstant)

	scanConfiguration := scan.ResolveConfiguration(command, builder.resolveScanConfiguration())
	roots := scan.ResolveRoots(arguments[1:], scanConfiguration)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	environment, environmentError := scan.NewEnvironment(logger, builder.humanReadableLogging(), scanConfiguration, roots, builder.Dependencies)
	if environmentError != nil {
		return environmentError
	}

	githubClient := builder.GitHubClient
	if githubClient == nil {
		cliClient, clientError := githubcli.NewClient(environment.GitExecutor)
		if clientError != nil {
			return clientError
		}
		githubClient = cliClient
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:       logger,
		Collector:    environment.Collector,
		GitHubClient: githubClient,
		Clock:        builder.Clock,
	})
	if serviceError != nil {
		return serviceError
	}

	items, staleError := service.StalePullRequests(command.Context(), StaleOptions{
		Roots:       environment.Roots,
		Days:        days,
		Limit:       configuration.Limit,
		Parallelism: environment.Parallelism,
	})
	if staleError != nil {
		return errors.Wrap(staleError, staleReportFailureMessageConstant)
	}

	if detailed {
		return report.WriteDetailedYAML(command.OutOrStdout(), items, report.ItemsKeyPullRequests)
	}
	return report.WriteSummary(command.OutOrStdout(), items)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveScanConfiguration() scan.Configuration {
	if builder.ScanConfigurationProvider == nil {
		return scan.DefaultConfiguration()
	}
	return builder.ScanConfigurationProvider()
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
