// Package testsupport provides collaborator stubs shared by command and service tests.
package testsupport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	argumentSeparatorConstant       = " "
	anyWorkingDirectoryConstant     = "*"
	unexpectedCommandTemplateString = "unexpected %s command %q in %q"
)

// RepositoryCollectorStub returns fixed records and remembers the roots it was asked for.
type RepositoryCollectorStub struct {
	Records         []shared.RepositoryRecord
	CollectionError error
	ReceivedRoots   []string
}

// CollectRepositories records roots and returns the configured records.
func (collector *RepositoryCollectorStub) CollectRepositories(_ context.Context, roots []string) ([]shared.RepositoryRecord, error) {
	collector.ReceivedRoots = append([]string{}, roots...)
	if collector.CollectionError != nil {
		return nil, collector.CollectionError
	}
	return append([]shared.RepositoryRecord{}, collector.Records...), nil
}

// CommandResponse is the scripted outcome of one command.
type CommandResponse struct {
	Result execshell.ExecutionResult
	Error  error
}

// ExecutedCommand records one invocation seen by GitExecutorStub.
type ExecutedCommand struct {
	Name    execshell.CommandName
	Details execshell.CommandDetails
}

// GitExecutorStub answers git and gh invocations from responses keyed on working directory and joined arguments.
// It is safe for concurrent use. Unregistered commands fail.
type GitExecutorStub struct {
	mutex     sync.Mutex
	responses map[string]CommandResponse
	executed  []ExecutedCommand
}

// NewGitExecutorStub constructs an empty GitExecutorStub.
func NewGitExecutorStub() *GitExecutorStub {
	return &GitExecutorStub{responses: make(map[string]CommandResponse)}
}

// Register scripts the response for arguments run in workingDirectory. An empty workingDirectory matches any directory.
func (executor *GitExecutorStub) Register(name execshell.CommandName, workingDirectory string, arguments []string, response CommandResponse) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	if len(workingDirectory) == 0 {
		workingDirectory = anyWorkingDirectoryConstant
	}
	executor.responses[responseKey(name, workingDirectory, arguments)] = response
}

// RegisterGit scripts standard output for a successful git invocation.
func (executor *GitExecutorStub) RegisterGit(workingDirectory string, standardOutput string, arguments ...string) {
	executor.Register(execshell.CommandGit, workingDirectory, arguments, CommandResponse{Result: execshell.ExecutionResult{StandardOutput: standardOutput}})
}

// RegisterGitFailure scripts an error for a git invocation.
func (executor *GitExecutorStub) RegisterGitFailure(workingDirectory string, failure error, arguments ...string) {
	executor.Register(execshell.CommandGit, workingDirectory, arguments, CommandResponse{Error: failure})
}

// ExecuteGit answers a git invocation.
func (executor *GitExecutorStub) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.answer(execshell.CommandGit, details)
}

// ExecuteGitHubCLI answers a gh invocation.
func (executor *GitExecutorStub) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.answer(execshell.CommandGitHub, details)
}

// Executed returns the invocations seen so far.
func (executor *GitExecutorStub) Executed() []ExecutedCommand {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]ExecutedCommand{}, executor.executed...)
}

// ExecutedArguments returns the joined arguments of every invocation of name, in call order.
func (executor *GitExecutorStub) ExecutedArguments(name execshell.CommandName) []string {
	var arguments []string
	for _, executed := range executor.Executed() {
		if executed.Name == name {
			arguments = append(arguments, strings.Join(executed.Details.Arguments, argumentSeparatorConstant))
		}
	}
	return arguments
}

func (executor *GitExecutorStub) answer(name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.executed = append(executor.executed, ExecutedCommand{Name: name, Details: details})

	response, exists := executor.responses[responseKey(name, details.WorkingDirectory, details.Arguments)]
	if !exists {
		response, exists = executor.responses[responseKey(name, anyWorkingDirectoryConstant, details.Arguments)]
	}
	if !exists {
		return execshell.ExecutionResult{}, errors.Newf(unexpectedCommandTemplateString, name, strings.Join(details.Arguments, argumentSeparatorConstant), details.WorkingDirectory)
	}
	return response.Result, response.Error
}

func responseKey(name execshell.CommandName, workingDirectory string, arguments []string) string {
	return string(name) + "\x00" + workingDirectory + "\x00" + strings.Join(arguments, argumentSeparatorConstant)
}

// FixedClock reports a constant time.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (clock FixedClock) Now() time.Time {
	return clock.Instant
}
