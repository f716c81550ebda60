package clone

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottidler/git-tools/internal/repos/dependencies"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
)

const (
	commandUseConstant                    = "clone <repospec> [revision]"
	commandShortDescriptionConstant       = "Clone or update a repository beneath the clone path and print its location"
	commandLongDescriptionConstant        = "clone accepts org/repo or a remote URL. org/repo is tried against --remote and then each fallback remote. The repository lands in <clone-path>/<org>/<repo>, or <clone-path>/<org>/<repo>/<sha> with --versioning. An existing clone is fetched and fast-forwarded. The absolute path is printed on stdout."
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Remote base URL tried first"
	flagFallbackRemoteNameConstant        = "fallback-remote"
	flagFallbackRemoteDescriptionConstant = "Remote base URLs tried in order after --remote"
	flagClonePathNameConstant             = "clone-path"
	flagClonePathDescriptionConstant      = "Directory that holds <org>/<repo> clones"
	flagMirrorPathNameConstant            = "mirror-path"
	flagMirrorPathDescriptionConstant     = "Directory of bare <org>/<repo>.git mirrors passed to git clone --reference"
	flagVersioningNameConstant            = "versioning"
	flagVersioningDescriptionConstant     = "Clone into <org>/<repo>/<sha> of the remote HEAD"
	maximumArgumentsConstant              = 2
	helpArgumentConstant                  = "help"
)

// CommandBuilder assembles the clone command.
type CommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
	FileSystem                   shared.FileSystem
	Version                      string
}

// Build constructs the clone command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Version: builder.Version,
		Args:    validateArguments,
		RunE:    builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRemoteNameConstant, defaults.Remote, flagRemoteDescriptionConstant)
	command.Flags().StringSlice(flagFallbackRemoteNameConstant, defaults.FallbackRemotes, flagFallbackRemoteDescriptionConstant)
	command.Flags().String(flagClonePathNameConstant, defaults.ClonePath, flagClonePathDescriptionConstant)
	command.Flags().String(flagMirrorPathNameConstant, defaults.MirrorPath, flagMirrorPathDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, flagVersioningNameConstant, "", defaults.Versioning, flagVersioningDescriptionConstant)

	return command, nil
}

// validateArguments lets a literal help argument through in any position; run prints usage for it.
func validateArguments(command *cobra.Command, arguments []string) error {
	if helpRequested(arguments) {
		return nil
	}
	return cobra.RangeArgs(1, maximumArgumentsConstant)(command, arguments)
}

func helpRequested(arguments []string) bool {
	for _, argument := range arguments {
		if argument == helpArgumentConstant {
			return true
		}
	}
	return false
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if helpRequested(arguments) {
		return command.Help()
	}

	repospec, repospecError := ParseRepospec(arguments[0])
	if repospecError != nil {
		return repospecError
	}
	revision := headRevisionConstant
	if len(arguments) == maximumArgumentsConstant {
		revision = arguments[1]
	}

	configuration := builder.resolveConfiguration(command)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}
	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return managerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:      logger,
		GitExecutor: gitExecutor,
		GitManager:  gitManager,
		FileSystem:  dependencies.ResolveFileSystem(builder.FileSystem),
	})
	if serviceError != nil {
		return serviceError
	}

	result, cloneError := service.Clone(command.Context(), Options{
		Repospec:        repospec,
		Revision:        revision,
		Remote:          configuration.Remote,
		FallbackRemotes: configuration.FallbackRemotes,
		ClonePath:       configuration.ClonePath,
		MirrorPath:      configuration.MirrorPath,
		Versioning:      configuration.Versioning,
	})
	if cloneError != nil {
		command.SilenceUsage = true
		return cloneError
	}

	_, writeError := fmt.Fprintln(command.OutOrStdout(), result.Path)
	return writeError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagRemoteNameConstant) {
		configuration.Remote, _ = flagSet.GetString(flagRemoteNameConstant)
	}
	if flagSet.Changed(flagFallbackRemoteNameConstant) {
		configuration.FallbackRemotes, _ = flagSet.GetStringSlice(flagFallbackRemoteNameConstant)
	}
	if flagSet.Changed(flagClonePathNameConstant) {
		configuration.ClonePath, _ = flagSet.GetString(flagClonePathNameConstant)
	}
	if flagSet.Changed(flagMirrorPathNameConstant) {
		configuration.MirrorPath, _ = flagSet.GetString(flagMirrorPathNameConstant)
	}
	if flagSet.Changed(flagVersioningNameConstant) {
		configuration.Versioning, _ = flagSet.GetBool(flagVersioningNameConstant)
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
