package filterref

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/repos/dependencies"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	commandUseConstant                = "filter-ref <ref>"
	commandShortDescriptionConstant   = "Print a ref when its commit falls inside an age span"
	commandLongDescriptionConstant    = "filter-ref resolves the commit of <ref> and prints the ref only when the commit is younger than the oldest bound of the span and older than its newest bound. Spans read [newest:]oldest with units d, w, m (4 weeks) and y (52 weeks)."
	flagShowDateNameConstant          = "show-date"
	flagShowDateShorthandConstant     = "d"
	flagShowDateDescriptionConstant   = "Prefix the ref with its commit date"
	flagShowAuthorNameConstant        = "show-author"
	flagShowAuthorShorthandConstant   = "a"
	flagShowAuthorDescriptionConstant = "Suffix the ref with its commit author"
	flagSpanNameConstant              = "span"
	flagSpanShorthandConstant         = "s"
	flagSpanDescriptionConstant       = "Age window as [newest:]oldest, for example 6m or 1w:3m"
	flagRepositoryNameConstant        = "repository"
	flagRepositoryShorthandConstant   = "r"
	flagRepositoryDescriptionConstant = "Repository in which the ref is resolved"
	defaultRepositoryPathConstant     = "."
	outsideSpanLogMessageConstant     = "commit outside span"
	logFieldRefConstant               = "ref"
	logFieldCommitTimeConstant        = "commit_time"
	logFieldSpanConstant              = "span"
)

// CommandBuilder assembles the filter-ref command.
type CommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  shared.GitExecutor
	Clock                        shared.Clock
}

// Build constructs the filter-ref command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	spanFlag := DefaultSpan()
	command.Flags().BoolP(flagShowDateNameConstant, flagShowDateShorthandConstant, false, flagShowDateDescriptionConstant)
	command.Flags().BoolP(flagShowAuthorNameConstant, flagShowAuthorShorthandConstant, false, flagShowAuthorDescriptionConstant)
	command.Flags().VarP(&spanFlag, flagSpanNameConstant, flagSpanShorthandConstant, flagSpanDescriptionConstant)
	command.Flags().StringP(flagRepositoryNameConstant, flagRepositoryShorthandConstant, defaultRepositoryPathConstant, flagRepositoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(flagSpanNameConstant) {
		if spanValue, isSpan := command.Flags().Lookup(flagSpanNameConstant).Value.(*Span); isSpan {
			configuration.Span = *spanValue
		}
	}
	showDate, _ := command.Flags().GetBool(flagShowDateNameConstant)
	showAuthor, _ := command.Flags().GetBool(flagShowAuthorNameConstant)
	repositoryPath, _ := command.Flags().GetString(flagRepositoryNameConstant)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(gitExecutor, builder.Clock)
	if serviceError != nil {
		return serviceError
	}

	commit, inside, filterError := service.Filter(command.Context(), repositoryPath, arguments[0], configuration.Span)
	if filterError != nil {
		return filterError
	}
	if !inside {
		logger.Debug(outsideSpanLogMessageConstant,
			zap.String(logFieldRefConstant, commit.Ref),
			zap.Time(logFieldCommitTimeConstant, commit.Time),
			zap.Stringer(logFieldSpanConstant, configuration.Span),
		)
		return nil
	}

	_, writeError := fmt.Fprintln(command.OutOrStdout(), commit.Line(showDate, showAuthor))
	return writeError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
