// Package scan assembles the collaborators shared by commands that operate on every repository under a set of roots.
package scan

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/repos/dependencies"
	"github.com/scottidler/git-tools/internal/repos/discovery"
	"github.com/scottidler/git-tools/internal/repos/shared"
	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	// StrictFlagName turns discovery warnings into failures.
	StrictFlagName = "strict"
	// ParallelismFlagName bounds concurrent repository work.
	ParallelismFlagName          = "parallelism"
	strictFlagUsageConstant      = "Fail on missing or unreadable roots instead of warning"
	parallelismFlagUsageConstant = "Maximum number of repositories processed concurrently"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// Dependencies carries injectable collaborators. Nil fields are replaced by OS-backed defaults.
type Dependencies struct {
	FileSystem   shared.FileSystem
	GitExecutor  shared.GitExecutor
	GitManager   shared.GitRepositoryManager
	SlugResolver shared.SlugResolver
	Collector    shared.RepositoryCollector
}

// Environment is the resolved set of collaborators and settings for one command run.
type Environment struct {
	Logger      *zap.Logger
	FileSystem  shared.FileSystem
	GitExecutor shared.GitExecutor
	GitManager  shared.GitRepositoryManager
	Collector   shared.RepositoryCollector
	Roots       []string
	Parallelism int
}

// BindFlags registers --strict and --parallelism on command.
func BindFlags(command *cobra.Command) {
	if command == nil {
		return
	}
	defaults := DefaultConfiguration()
	command.Flags().Bool(StrictFlagName, defaults.Strict, strictFlagUsageConstant)
	command.Flags().Int(ParallelismFlagName, defaults.Parallelism, parallelismFlagUsageConstant)
}

// ResolveConfiguration overlays explicitly set flags onto the configured values.
func ResolveConfiguration(command *cobra.Command, configuration Configuration) Configuration {
	resolved := configuration
	if command != nil {
		if command.Flags().Changed(StrictFlagName) {
			resolved.Strict, _ = command.Flags().GetBool(StrictFlagName)
		}
		if command.Flags().Changed(ParallelismFlagName) {
			resolved.Parallelism, _ = command.Flags().GetInt(ParallelismFlagName)
		}
	}
	return resolved.Sanitize()
}

// ResolveRoots returns the positional roots, falling back to the configured roots.
func ResolveRoots(arguments []string, configuration Configuration) []string {
	normalizer := pathutils.NewRootNormalizer(nil)
	if roots := normalizer.Normalize(arguments); len(roots) > 0 {
		return roots
	}
	return configuration.Sanitize().Roots
}

// ResolveLogger returns the provider's logger or a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// NewEnvironment resolves every collaborator needed to discover repositories under roots and run git in them.
func NewEnvironment(logger *zap.Logger, humanReadableLogging bool, configuration Configuration, roots []string, provided Dependencies) (Environment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitized := configuration.Sanitize()

	gitExecutor, executorError := dependencies.ResolveGitExecutor(provided.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return Environment{}, executorError
	}

	gitManager, managerError := dependencies.ResolveGitRepositoryManager(provided.GitManager, gitExecutor)
	if managerError != nil {
		return Environment{}, managerError
	}

	fileSystem := dependencies.ResolveFileSystem(provided.FileSystem)
	collector := provided.Collector
	if collector == nil {
		slugResolver, resolverError := dependencies.ResolveSlugResolver(provided.SlugResolver, gitManager, sanitized.Remote)
		if resolverError != nil {
			return Environment{}, resolverError
		}
		discoveryOptions := discovery.Options{Strict: sanitized.Strict, Parallelism: sanitized.Parallelism}
		collector = dependencies.ResolveRepositoryCollector(nil, fileSystem, slugResolver, discoveryOptions, logger)
	}

	return Environment{
		Logger:      logger,
		FileSystem:  fileSystem,
		GitExecutor: gitExecutor,
		GitManager:  gitManager,
		Collector:   collector,
		Roots:       append([]string(nil), roots...),
		Parallelism: sanitized.Parallelism,
	}, nil
}
