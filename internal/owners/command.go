package owners

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/ui"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
)

const (
	commandUseConstant                    = "owners [root ...]"
	commandShortDescriptionConstant       = "Report CODEOWNERS coverage of local repositories"
	commandLongDescriptionConstant        = "owners discovers repositories under the roots, checks that .github/CODEOWNERS covers every code file, and lists the top authors of repositories that are not fully owned. The command fails when any reported repository is not owned."
	flagOnlyNameConstant                  = "only"
	flagOnlyShorthandConstant             = "o"
	flagOnlyDescriptionConstant           = "Only report repositories with these statuses (comma separated: owned,partial,unowned)"
	flagDetailedNameConstant              = "detailed"
	flagDetailedShorthandConstant         = "d"
	flagDetailedDescriptionConstant       = "Print the path to owner mapping and top authors of every repository"
	flagTopAuthorsNameConstant            = "top-authors"
	flagTopAuthorsDescriptionConstant     = "Number of authors listed for repositories that are not owned"
	ownershipReportFailureMessageConstant = "ownership report failed"
	incompleteOwnershipMessageConstant    = "repositories without complete CODEOWNERS coverage"
	incompleteOwnershipTemplateConstant   = "%d of %d reported"
)

// ErrIncompleteOwnership indicates that at least one reported repository is not owned.
var ErrIncompleteOwnership = errors.New(incompleteOwnershipMessageConstant)

// ColorDecider reports whether status labels written to writer should be colored.
type ColorDecider func(writer io.Writer) bool

// CommandBuilder assembles the owners command.
type CommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ScanConfigurationProvider    func() scan.Configuration
	Dependencies                 scan.Dependencies
	RepositoryFileSystem         RepositoryFileSystemProvider
	ExEmployeeFileReader         FileReader
	ColorDecider                 ColorDecider
}

// Build constructs the owners command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	statuses := []string{StatusOwned, StatusPartial, StatusUnowned}
	command.Flags().VarP(flagutils.NewChoiceListValue(nil, statuses), flagOnlyNameConstant, flagOnlyShorthandConstant, flagOnlyDescriptionConstant)
	command.Flags().BoolP(flagDetailedNameConstant, flagDetailedShorthandConstant, false, flagDetailedDescriptionConstant)
	command.Flags().Int(flagTopAuthorsNameConstant, DefaultCommandConfiguration().TopAuthors, flagTopAuthorsDescriptionConstant)
	scan.BindFlags(command)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(flagTopAuthorsNameConstant) {
		configuration.TopAuthors, _ = command.Flags().GetInt(flagTopAuthorsNameConstant)
		configuration = configuration.sanitize()
	}
	detailed, _ := command.Flags().GetBool(flagDetailedNameConstant)

	var only []string
	if onlyValue, isChoiceList := command.Flags().Lookup(flagOnlyNameConstant).Value.(*flagutils.ChoiceListValue); isChoiceList {
		only = onlyValue.Values()
	}

	scanConfiguration := scan.ResolveConfiguration(command, builder.resolveScanConfiguration())
	roots := scan.ResolveRoots(arguments, scanConfiguration)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	environment, environmentError := scan.NewEnvironment(logger, builder.humanReadableLogging(), scanConfiguration, roots, builder.Dependencies)
	if environmentError != nil {
		return environmentError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:               logger,
		Collector:            environment.Collector,
		GitExecutor:          environment.GitExecutor,
		RepositoryFileSystem: builder.RepositoryFileSystem,
		ExEmployeeFileReader: builder.ExEmployeeFileReader,
	})
	if serviceError != nil {
		return serviceError
	}

	verdicts, analyzeError := service.Analyze(command.Context(), AnalyzeOptions{
		Roots:                environment.Roots,
		Only:                 only,
		TopAuthors:           configuration.TopAuthors,
		ExEmployeesDirectory: configuration.ExEmployeesDirectory,
		Parallelism:          environment.Parallelism,
	})
	if analyzeError != nil {
		return errors.Wrap(analyzeError, ownershipReportFailureMessageConstant)
	}

	writer := command.OutOrStdout()
	palette := ui.NewStatusPalette(builder.colorEnabled(writer))
	var writeError error
	if detailed {
		writeError = WriteDetailed(writer, verdicts, palette)
	} else {
		writeError = WriteSimple(writer, verdicts, palette)
	}
	if writeError != nil {
		return writeError
	}

	incomplete := 0
	for _, verdict := range verdicts {
		if verdict.Status != StatusOwned {
			incomplete++
		}
	}
	if incomplete > 0 {
		command.SilenceUsage = true
		return errors.Wrapf(ErrIncompleteOwnership, incompleteOwnershipTemplateConstant, incomplete, len(verdicts))
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
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

func (builder *CommandBuilder) colorEnabled(writer io.Writer) bool {
	if builder.ColorDecider != nil {
		return builder.ColorDecider(writer)
	}
	file, isFile := writer.(*os.File)
	return isFile && ui.IsTerminal(file)
}
