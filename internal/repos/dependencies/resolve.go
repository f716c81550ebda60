package dependencies

import (
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/gitrepo"
	"github.com/scottidler/git-tools/internal/repos/discovery"
	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/repos/shared"
	"github.com/scottidler/git-tools/internal/ui"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging routes command lifecycle events through ui.ConsoleCommandEventLogger.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if humanReadableLogging {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveSlugResolver returns the provided resolver or one reading remoteName through the repository manager.
func ResolveSlugResolver(existing shared.SlugResolver, manager shared.GitRepositoryManager, remoteName string) (shared.SlugResolver, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewSlugResolver(manager, remoteName)
}

// ResolveRepositoryCollector returns the provided collector or a filesystem discoverer populating slugs.
func ResolveRepositoryCollector(existing shared.RepositoryCollector, fileSystem shared.FileSystem, slugResolver shared.SlugResolver, options discovery.Options, logger *zap.Logger) shared.RepositoryCollector {
	if existing != nil {
		return existing
	}
	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{
		FileSystem:   fileSystem,
		SlugResolver: slugResolver,
		Logger:       logger,
	})
	return discovery.NewCollector(discoverer, options, logger)
}
