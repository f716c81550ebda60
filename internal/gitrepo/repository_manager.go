package gitrepo

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	gitRemoteSubcommandConstant          = "remote"
	gitGetURLSubcommandConstant          = "get-url"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitShowToplevelFlagConstant          = "--show-toplevel"
	gitFetchSubcommandConstant           = "fetch"
	gitPruneFlagConstant                 = "--prune"
	gitTerminalPromptVariableConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant    = "0"
	noSuchRemoteMarkerConstant           = "no such remote"
	missingRemoteExitCodeConstant        = 2
	executorNotConfiguredMessageConstant = "git executor not configured"
	remoteNotConfiguredMessageConstant   = "remote not configured"
	remoteLookupFailedTemplateConstant   = "read remote %q of %s"
	topLevelFailedTemplateConstant       = "resolve repository root of %s"
	fetchFailedTemplateConstant          = "fetch %s in %s"
)

var (
	// ErrGitExecutorNotConfigured indicates the repository manager was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRemoteNotConfigured indicates the requested remote does not exist in the repository.
	ErrRemoteNotConfigured = errors.New(remoteNotConfiguredMessageConstant)
)

// RepositoryManager runs repository-level git commands through a shell executor.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetRemoteURL returns the URL of remoteName. A missing remote yields an error matching ErrRemoteNotConfigured.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		if isMissingRemoteFailure(executionError) {
			return "", errors.Wrapf(ErrRemoteNotConfigured, remoteLookupFailedTemplateConstant, remoteName, repositoryPath)
		}
		return "", errors.Wrapf(executionError, remoteLookupFailedTemplateConstant, remoteName, repositoryPath)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// TopLevel resolves the working tree root that contains directory.
func (manager *RepositoryManager) TopLevel(executionContext context.Context, directory string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowToplevelFlagConstant},
		WorkingDirectory: directory,
	})
	if executionError != nil {
		return "", errors.Wrapf(executionError, topLevelFailedTemplateConstant, directory)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// FetchPrune fetches remoteName and prunes deleted remote-tracking branches.
func (manager *RepositoryManager) FetchPrune(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, remoteName, gitPruneFlagConstant},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant},
	})
	if executionError != nil {
		return errors.Wrapf(executionError, fetchFailedTemplateConstant, remoteName, repositoryPath)
	}
	return nil
}

func isMissingRemoteFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	if commandFailure.Result.ExitCode == missingRemoteExitCodeConstant {
		return true
	}
	return strings.Contains(strings.ToLower(commandFailure.Result.StandardError), noSuchRemoteMarkerConstant)
}
