package repos_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/cmd/cli/repos"
	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/gitrepo"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/testsupport"
)

const (
	nestedDirectoryConstant    = "/work/api/internal/server"
	repositoryTopLevelConstant = "/work/api"
)

func executeSlugCommand(testInstance *testing.T, executor *testsupport.GitExecutorStub, arguments ...string) (string, error) {
	testInstance.Helper()
	builder := &repos.SlugCommandBuilder{
		ScanConfigurationProvider: scan.DefaultConfiguration,
		GitExecutor:               executor,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestSlugCommandPrintsSlugOfTopLevel(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		directory string
	}{
		{name: "explicit_directory", arguments: []string{nestedDirectoryConstant}, directory: nestedDirectoryConstant},
		{name: "current_directory", arguments: nil, directory: "."},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := testsupport.NewGitExecutorStub()
			executor.RegisterGit(testCase.directory, repositoryTopLevelConstant+"\n", "rev-parse", "--show-toplevel")
			executor.RegisterGit(repositoryTopLevelConstant, "git@github.com:org/api.git\n", "remote", "get-url", "origin")

			output, executionError := executeSlugCommand(testInstance, executor, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, "org/api\n", output)
		})
	}
}

func TestSlugCommandDistinguishesFailures(testInstance *testing.T) {
	missingRemote := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 2, StandardError: "error: No such remote 'origin'"}}

	executor := testsupport.NewGitExecutorStub()
	executor.RegisterGit("", repositoryTopLevelConstant+"\n", "rev-parse", "--show-toplevel")
	executor.RegisterGitFailure(repositoryTopLevelConstant, missingRemote, "remote", "get-url", "origin")
	_, executionError := executeSlugCommand(testInstance, executor)
	require.ErrorIs(testInstance, executionError, gitrepo.ErrNoRemoteConfigured)

	executor = testsupport.NewGitExecutorStub()
	executor.RegisterGit("", repositoryTopLevelConstant+"\n", "rev-parse", "--show-toplevel")
	executor.RegisterGit(repositoryTopLevelConstant, "/srv/git/api\n", "remote", "get-url", "origin")
	_, executionError = executeSlugCommand(testInstance, executor)
	require.ErrorIs(testInstance, executionError, gitrepo.ErrSlugParse)

	executor = testsupport.NewGitExecutorStub()
	_, executionError = executeSlugCommand(testInstance, executor, "/not/a/repository")
	require.ErrorContains(testInstance, executionError, "resolve repository root of /not/a/repository")

	_, executionError = executeSlugCommand(testInstance, executor, "one", "two")
	require.Error(testInstance, executionError)
}
