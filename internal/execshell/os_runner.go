package execshell

import (
	"bytes"
	"context"
	"os/exec"
	"sort"

	"github.com/cockroachdb/errors"
)

const (
	environmentAssignmentSeparatorConstant = "="
)

// OSCommandRunner runs commands as child processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the command and waits for it. A non-zero exit status is reported through
// ExecutionResult.ExitCode; an error means the process never produced one.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = append(process.Environ(), environmentAssignments(command.Details.EnvironmentVariables)...)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	result := ExecutionResult{}
	if runError := process.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		result.ExitCode = exitError.ExitCode()
	}
	result.StandardOutput = standardOutput.String()
	result.StandardError = standardError.String()
	return result, nil
}

// environmentAssignments renders KEY=value pairs in key order so later duplicates of
// inherited variables win deterministically.
func environmentAssignments(variables map[string]string) []string {
	keys := make([]string, 0, len(variables))
	for key := range variables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys))
	for _, key := range keys {
		assignments = append(assignments, key+environmentAssignmentSeparatorConstant+variables[key])
	}
	return assignments
}
