package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/gitrepo"
	"github.com/scottidler/git-tools/internal/repos/dependencies"
	"github.com/scottidler/git-tools/internal/repos/discovery"
	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

type stubCollector struct{}

func (stubCollector) CollectRepositories(context.Context, []string) ([]shared.RepositoryRecord, error) {
	return nil, nil
}

func TestResolveGitExecutorBuildsShellExecutor(testInstance *testing.T) {
	for _, humanReadable := range []bool{false, true} {
		executor, resolveError := dependencies.ResolveGitExecutor(nil, zap.NewNop(), humanReadable)
		require.NoError(testInstance, resolveError)
		require.IsType(testInstance, &execshell.ShellExecutor{}, executor)
	}

	_, resolveError := dependencies.ResolveGitExecutor(nil, nil, false)
	require.ErrorIs(testInstance, resolveError, execshell.ErrLoggerNotConfigured)
}

func TestResolveDefaults(testInstance *testing.T) {
	require.Equal(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
	require.Equal(testInstance, shared.SystemClock{}, dependencies.ResolveClock(nil))

	executor, executorError := dependencies.ResolveGitExecutor(nil, zap.NewNop(), false)
	require.NoError(testInstance, executorError)

	manager, managerError := dependencies.ResolveGitRepositoryManager(nil, executor)
	require.NoError(testInstance, managerError)
	require.IsType(testInstance, &gitrepo.RepositoryManager{}, manager)

	resolver, resolverError := dependencies.ResolveSlugResolver(nil, manager, "")
	require.NoError(testInstance, resolverError)
	require.IsType(testInstance, &gitrepo.SlugResolver{}, resolver)

	collector := dependencies.ResolveRepositoryCollector(nil, nil, resolver, discovery.Options{}, zap.NewNop())
	require.IsType(testInstance, &discovery.Collector{}, collector)
}

func TestResolveKeepsExistingCollaborators(testInstance *testing.T) {
	existing := stubCollector{}
	require.Equal(testInstance, existing, dependencies.ResolveRepositoryCollector(existing, nil, nil, discovery.Options{}, nil))
}
