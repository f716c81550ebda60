package branches

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/report"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
)

const (
	groupUseConstant                   = "branches"
	groupShortDescriptionConstant      = "Inspect remote branches across local repositories"
	staleUseConstant                   = "stale <days> [root ...]"
	staleShortDescriptionConstant      = "List remote branches whose last commit is at least <days> old"
	staleLongDescriptionConstant       = "stale discovers repositories under the roots, optionally fetches them, and reports remote branches by committer with their age in days."
	flagRefNameConstant                = "ref"
	flagRefDescriptionConstant         = "Ref namespace to inspect"
	flagFetchNameConstant              = "fetch"
	flagFetchDescriptionConstant       = "Fetch and prune the remote before listing branches"
	flagDetailedNameConstant           = "detailed"
	flagDetailedDescriptionConstant    = "Print every branch as YAML instead of a per-author summary"
	staleReportFailureMessageConstant  = "stale branch report failed"
	missingDaysArgumentMessageConstant = "stale requires a <days> argument"
)

// CommandBuilder assembles the branches command group.
type CommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ScanConfigurationProvider    func() scan.Configuration
	Dependencies                 scan.Dependencies
	Clock                        shared.Clock
}

// Build constructs the branches command hierarchy.
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

	defaults := DefaultCommandConfiguration()
	staleCommand.Flags().String(flagRefNameConstant, defaults.Ref, flagRefDescriptionConstant)
	flagutils.AddToggleFlag(staleCommand.Flags(), nil, flagFetchNameConstant, "", defaults.Fetch, flagFetchDescriptionConstant)
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
	if command.Flags().Changed(flagRefNameConstant) {
		configuration.Ref, _ = command.Flags().GetString(flagRefNameConstant)
		configuration = configuration.sanitize()
	}
	if command.Flags().Changed(flagFetchNameConstant) {
		configuration.Fetch, _ = command.Flags().GetBool(flagFetchNameConstant)
	}
	detailed, _ := command.Flags().GetBool(flagDetailedNameConstant)

	scanConfiguration := scan.ResolveConfiguration(command, builder.resolveScanConfiguration())
	roots := scan.ResolveRoots(arguments[1:], scanConfiguration)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	environment, environmentError := scan.NewEnvironment(logger, builder.humanReadableLogging(), scanConfiguration, roots, builder.Dependencies)
	if environmentError != nil {
		return environmentError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:      logger,
		Collector:   environment.Collector,
		GitExecutor: environment.GitExecutor,
		GitManager:  environment.GitManager,
		Clock:       builder.Clock,
	})
	if serviceError != nil {
		return serviceError
	}

	items, staleError := service.StaleBranches(command.Context(), StaleOptions{
		Roots:       environment.Roots,
		Days:        days,
		Ref:         configuration.Ref,
		RemoteName:  scanConfiguration.Remote,
		Fetch:       configuration.Fetch,
		Parallelism: environment.Parallelism,
	})
	if staleError != nil {
		return errors.Wrap(staleError, staleReportFailureMessageConstant)
	}

	if detailed {
		return report.WriteDetailedYAML(command.OutOrStdout(), items, report.ItemsKeyBranches)
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
