package repos

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/gitrepo"
	"github.com/scottidler/git-tools/internal/repos/dependencies"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	slugUseConstant              = "reposlug [directory]"
	slugShortDescriptionConstant = "Print the org/repo slug of the repository containing a directory"
	slugLongDescriptionConstant  = "reposlug resolves the top level of the working tree that contains directory (default .) and prints the org/repo slug parsed from its remote."
	defaultSlugDirectoryConstant = "."
)

// SlugCommandBuilder assembles the reposlug command.
type SlugCommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ScanConfigurationProvider    func() scan.Configuration
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
}

// Build constructs the reposlug command.
func (builder *SlugCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   slugUseConstant,
		Short: slugShortDescriptionConstant,
		Long:  slugLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *SlugCommandBuilder) run(command *cobra.Command, arguments []string) error {
	directory := defaultSlugDirectoryConstant
	if len(arguments) == 1 {
		directory = arguments[0]
	}
	scanConfiguration := resolveScanConfiguration(builder.ScanConfigurationProvider).Sanitize()

	logger := scan.ResolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, resolveFlag(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}
	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return managerError
	}
	slugResolver, resolverError := gitrepo.NewSlugResolver(gitManager, scanConfiguration.Remote)
	if resolverError != nil {
		return resolverError
	}

	command.SilenceUsage = true
	topLevel, topLevelError := gitManager.TopLevel(command.Context(), directory)
	if topLevelError != nil {
		return topLevelError
	}
	slug, slugError := slugResolver.SlugFromRepoPath(command.Context(), topLevel)
	if slugError != nil {
		return slugError
	}

	_, writeError := fmt.Fprintln(command.OutOrStdout(), slug)
	return writeError
}
