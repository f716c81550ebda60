package clone_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scottidler/git-tools/internal/clone"
	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/gitrepo"
	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/testsupport"
)

const (
	primaryRemoteConstant  = "ssh://git@github.com"
	fallbackRemoteConstant = "https://github.com"
	primaryURLConstant     = "ssh://git@github.com/org/api.git"
	fallbackURLConstant    = "https://github.com/org/api.git"
	headCommitConstant     = "0f3c2a9d"
)

func newTestService(testInstance *testing.T, executor *testsupport.GitExecutorStub, logger *zap.Logger) *clone.Service {
	testInstance.Helper()
	manager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	service, serviceError := clone.NewService(clone.ServiceDependencies{
		Logger:      logger,
		GitExecutor: executor,
		GitManager:  manager,
		FileSystem:  filesystem.OSFileSystem{},
	})
	require.NoError(testInstance, serviceError)
	return service
}

func slugOptions(clonePath string) clone.Options {
	return clone.Options{
		Repospec:        clone.Repospec{Owner: "org", Repository: "api"},
		Remote:          primaryRemoteConstant,
		FallbackRemotes: []string{fallbackRemoteConstant},
		ClonePath:       clonePath,
	}
}

func TestServiceClonesFreshRepository(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api")

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGit("", "", "clone", primaryURLConstant, targetPath)

	result, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), slugOptions(clonePath))
	require.NoError(testInstance, cloneError)
	require.Equal(testInstance, clone.Result{Path: targetPath, Revision: "HEAD"}, result)
	require.Equal(testInstance, []string{"clone " + primaryURLConstant + " " + targetPath}, executor.ExecutedArguments(execshell.CommandGit))

	parentInfo, statError := os.Stat(filepath.Join(clonePath, "org"))
	require.NoError(testInstance, statError)
	require.True(testInstance, parentInfo.IsDir())
}

func TestServiceFallsBackToNextRemote(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api")

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGitFailure("", errors.New("Permission denied (publickey)"), "clone", primaryURLConstant, targetPath)
	executor.RegisterGit("", "", "clone", fallbackURLConstant, targetPath)
	executor.RegisterGit(targetPath, "", "checkout", "v1.2.0")

	logCore, observedLogs := observer.New(zap.DebugLevel)
	options := slugOptions(clonePath)
	options.Revision = "v1.2.0"

	result, cloneError := newTestService(testInstance, executor, zap.New(logCore)).Clone(context.Background(), options)
	require.NoError(testInstance, cloneError)
	require.Equal(testInstance, targetPath, result.Path)
	require.Equal(testInstance, []string{
		"clone " + primaryURLConstant + " " + targetPath,
		"clone " + fallbackURLConstant + " " + targetPath,
		"checkout v1.2.0",
	}, executor.ExecutedArguments(execshell.CommandGit))

	warnings := observedLogs.FilterMessage("clone attempt failed").All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, primaryURLConstant, warnings[0].ContextMap()["url"])
}

func TestServiceReportsExhaustedRemotes(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api")

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGitFailure("", errors.New("repository not found"), "clone", primaryURLConstant, targetPath)
	executor.RegisterGitFailure("", errors.New("repository not found"), "clone", fallbackURLConstant, targetPath)

	_, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), slugOptions(clonePath))
	require.ErrorIs(testInstance, cloneError, clone.ErrAllRemotesFailed)
	require.ErrorContains(testInstance, cloneError, "clone org/api")
}

func TestServiceUpdatesExistingClone(testInstance *testing.T) {
	testCases := []struct {
		name              string
		revision          string
		expectedArguments []string
	}{
		{
			name:              "head_fast_forwards",
			revision:          "",
			expectedArguments: []string{"fetch origin --prune", "pull --ff-only"},
		},
		{
			name:              "revision_checks_out",
			revision:          "release/2024",
			expectedArguments: []string{"fetch origin --prune", "checkout release/2024"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			clonePath := testInstance.TempDir()
			targetPath := filepath.Join(clonePath, "org", "api")
			require.NoError(testInstance, os.MkdirAll(filepath.Join(targetPath, ".git"), 0o755))

			executor := testsupport.NewGitExecutorStub()
			executor.RegisterGit(targetPath, "", "fetch", "origin", "--prune")
			executor.RegisterGit(targetPath, "", "pull", "--ff-only")
			executor.RegisterGit(targetPath, "", "checkout", "release/2024")

			options := slugOptions(clonePath)
			options.Revision = testCase.revision
			result, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), options)
			require.NoError(testInstance, cloneError)
			require.True(testInstance, result.Updated)
			require.Equal(testInstance, targetPath, result.Path)
			require.Equal(testInstance, testCase.expectedArguments, executor.ExecutedArguments(execshell.CommandGit))
		})
	}
}

func TestServiceVersioningClonesIntoCommitDirectory(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api", headCommitConstant)

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGitFailure("", errors.New("connection refused"), "ls-remote", primaryURLConstant, "HEAD")
	executor.RegisterGit("", headCommitConstant+"\tHEAD\n", "ls-remote", fallbackURLConstant, "HEAD")
	executor.RegisterGit("", "", "clone", primaryURLConstant, targetPath)
	executor.RegisterGit(targetPath, "", "checkout", headCommitConstant)

	options := slugOptions(clonePath)
	options.Versioning = true
	result, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), options)
	require.NoError(testInstance, cloneError)
	require.Equal(testInstance, clone.Result{Path: targetPath, Revision: headCommitConstant}, result)
}

func TestServiceVersioningRequiresHeadCommit(testInstance *testing.T) {
	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGit("", "", "ls-remote", primaryURLConstant, "HEAD")

	options := slugOptions(testInstance.TempDir())
	options.FallbackRemotes = nil
	options.Versioning = true
	_, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), options)
	require.ErrorContains(testInstance, cloneError, "could not find the HEAD commit")
}

func TestServiceUsesMirrorReferenceWhenPresent(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	mirrorPath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api")
	mirrorRepository := filepath.Join(mirrorPath, "org", "api.git")
	require.NoError(testInstance, os.MkdirAll(mirrorRepository, 0o755))

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGit("", "", "clone", "--reference", mirrorRepository, primaryURLConstant, targetPath)

	options := slugOptions(clonePath)
	options.MirrorPath = mirrorPath
	_, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), options)
	require.NoError(testInstance, cloneError)

	options.Repospec = clone.Repospec{Owner: "org", Repository: "web"}
	webPath := filepath.Join(clonePath, "org", "web")
	executor.RegisterGit("", "", "clone", "ssh://git@github.com/org/web.git", webPath)
	_, cloneError = newTestService(testInstance, executor, nil).Clone(context.Background(), options)
	require.NoError(testInstance, cloneError)
}

func TestServiceClonesFullURLWithoutRemotes(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	targetPath := filepath.Join(clonePath, "org", "api")
	remoteURL := "https://github.example.com/org/api.git"

	repospec, parseError := clone.ParseRepospec(remoteURL)
	require.NoError(testInstance, parseError)

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGit("", "", "clone", remoteURL, targetPath)

	options := slugOptions(clonePath)
	options.Repospec = repospec
	result, cloneError := newTestService(testInstance, executor, nil).Clone(context.Background(), options)
	require.NoError(testInstance, cloneError)
	require.Equal(testInstance, targetPath, result.Path)
	require.Len(testInstance, executor.Executed(), 1)
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	executor := testsupport.NewGitExecutorStub()
	manager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	_, serviceError := clone.NewService(clone.ServiceDependencies{})
	require.ErrorIs(testInstance, serviceError, clone.ErrGitExecutorNotConfigured)

	_, serviceError = clone.NewService(clone.ServiceDependencies{GitExecutor: executor})
	require.ErrorIs(testInstance, serviceError, clone.ErrGitManagerNotConfigured)

	_, serviceError = clone.NewService(clone.ServiceDependencies{GitExecutor: executor, GitManager: manager})
	require.ErrorIs(testInstance, serviceError, clone.ErrFileSystemNotConfigured)
}
