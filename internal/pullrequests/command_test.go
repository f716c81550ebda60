package pullrequests_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/pullrequests"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
	"github.com/scottidler/git-tools/internal/testsupport"
)

const (
	ghListOutputConstant = `[
  {"number": 21, "title": "Refactor cache", "createdAt": "2024-01-01T00:00:00Z", "author": {"login": "alice"}},
  {"number": 22, "title": "Docs", "createdAt": "2024-03-09T00:00:00Z", "author": {"login": "bob"}}
]`
)

func registerPullRequestList(executor *testsupport.GitExecutorStub, slug string, limit string, output string) {
	executor.Register(execshell.CommandGitHub, "", []string{
		"pr", "list", "--repo", slug, "--limit", limit, "--json", "number,title,createdAt,author",
	}, testsupport.CommandResponse{Result: execshell.ExecutionResult{StandardOutput: output}})
}

func executePullRequestsCommand(testInstance *testing.T, executor *testsupport.GitExecutorStub, configuration pullrequests.CommandConfiguration, arguments ...string) (string, error) {
	testInstance.Helper()
	builder := &pullrequests.CommandBuilder{
		ConfigurationProvider: func() pullrequests.CommandConfiguration {
			return configuration
		},
		Dependencies: scan.Dependencies{
			GitExecutor: executor,
			Collector: &testsupport.RepositoryCollectorStub{Records: []shared.RepositoryRecord{
				{Path: "/repos/org/api", Slug: apiSlugConstant},
			}},
		},
		Clock: testsupport.FixedClock{Instant: testNow},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs(append([]string{"stale"}, arguments...))
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestStaleCommandSummary(testInstance *testing.T) {
	executor := testsupport.NewGitExecutorStub()
	registerPullRequestList(executor, apiSlugConstant, "100", ghListOutputConstant)

	output, executionError := executePullRequestsCommand(testInstance, executor, pullrequests.DefaultCommandConfiguration(), "30")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "org/api:\n  alice: (1, 69)\n\n", output)
}

func TestStaleCommandDetailedWithLimitFlag(testInstance *testing.T) {
	executor := testsupport.NewGitExecutorStub()
	registerPullRequestList(executor, apiSlugConstant, "5", ghListOutputConstant)

	output, executionError := executePullRequestsCommand(testInstance, executor, pullrequests.CommandConfiguration{Limit: 40}, "0", "--limit", "5", "--detailed")
	require.NoError(testInstance, executionError)

	var decoded map[string]map[string]struct {
		PullRequests []map[string]int `yaml:"prs"`
		Count        int              `yaml:"count"`
	}
	require.NoError(testInstance, yaml.Unmarshal([]byte(output), &decoded))
	require.Equal(testInstance, []map[string]int{{"Refactor cache (pr 21)": 69}}, decoded[apiSlugConstant]["alice"].PullRequests)
	require.Equal(testInstance, []map[string]int{{"Docs (pr 22)": 1}}, decoded[apiSlugConstant]["bob"].PullRequests)
	require.Equal(testInstance, 1, decoded[apiSlugConstant]["bob"].Count)
}

func TestStaleCommandRequiresDays(testInstance *testing.T) {
	executor := testsupport.NewGitExecutorStub()
	_, executionError := executePullRequestsCommand(testInstance, executor, pullrequests.DefaultCommandConfiguration())
	require.ErrorContains(testInstance, executionError, "stale requires a <days> argument")
	require.Empty(testInstance, executor.Executed())
}
