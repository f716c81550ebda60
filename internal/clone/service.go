package clone

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	headRevisionConstant               = "HEAD"
	gitDirectoryNameConstant           = ".git"
	gitCloneSubcommandConstant         = "clone"
	gitReferenceFlagConstant           = "--reference"
	gitLsRemoteSubcommandConstant      = "ls-remote"
	gitPullSubcommandConstant          = "pull"
	gitFastForwardOnlyFlagConstant     = "--ff-only"
	gitCheckoutSubcommandConstant      = "checkout"
	gitTerminalPromptVariableConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant  = "0"
	parentDirectoryPermissionsConstant = 0o755

	cloneAttemptLogMessageConstant       = "cloning repository"
	cloneAttemptFailedLogMessageConstant = "clone attempt failed"
	mirrorMissingLogMessageConstant      = "mirror repository not found; cloning without reference"
	updatingCloneLogMessageConstant      = "updating existing clone"
	logFieldRepositoryConstant           = "repository"
	logFieldURLConstant                  = "url"
	logFieldPathConstant                 = "path"
	logFieldMirrorConstant               = "mirror"
	missingExecutorMessageConstant       = "git executor not configured"
	missingManagerMessageConstant        = "git repository manager not configured"
	missingFileSystemMessageConstant     = "filesystem not configured"
	allRemotesFailedMessageConstant      = "clone failed against every configured remote"
	noRemotesMessageConstant             = "no remote configured"
	headNotFoundTemplateConstant         = "could not find the HEAD commit of %s"
	resolveHeadTemplateConstant          = "resolve HEAD of %s"
	resolvePathTemplateConstant          = "resolve clone path %s"
	createParentTemplateConstant         = "create parent directory of %s"
	cloneRepositoryTemplateConstant      = "clone %s (last attempt: %v)"
	pullTemplateConstant                 = "fast-forward %s"
	checkoutTemplateConstant             = "check out %s in %s"
	updateRepositoryTemplateConstant     = "update %s"
)

var (
	// ErrGitExecutorNotConfigured indicates the service lacks a git executor.
	ErrGitExecutorNotConfigured = errors.New(missingExecutorMessageConstant)
	// ErrGitManagerNotConfigured indicates the service lacks a repository manager.
	ErrGitManagerNotConfigured = errors.New(missingManagerMessageConstant)
	// ErrFileSystemNotConfigured indicates the service lacks a filesystem.
	ErrFileSystemNotConfigured = errors.New(missingFileSystemMessageConstant)
	// ErrAllRemotesFailed indicates every candidate URL refused the clone.
	ErrAllRemotesFailed = errors.New(allRemotesFailedMessageConstant)
)

// ServiceDependencies enumerates the collaborators of Service.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor shared.GitExecutor
	GitManager  shared.GitRepositoryManager
	FileSystem  shared.FileSystem
}

// Options configures one clone.
type Options struct {
	Repospec        Repospec
	Revision        string
	Remote          string
	FallbackRemotes []string
	ClonePath       string
	MirrorPath      string
	Versioning      bool
}

// Result describes the working tree left behind by a clone.
type Result struct {
	Path     string
	Revision string
	Updated  bool
}

// Service clones or updates repositories beneath a clone root.
type Service struct {
	logger      *zap.Logger
	gitExecutor shared.GitExecutor
	gitManager  shared.GitRepositoryManager
	fileSystem  shared.FileSystem
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.GitManager == nil {
		return nil, ErrGitManagerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:      logger,
		gitExecutor: dependencies.GitExecutor,
		gitManager:  dependencies.GitManager,
		fileSystem:  dependencies.FileSystem,
	}, nil
}

// Clone places the repository at <clone_path>/<owner>/<repository>[/<sha>] and returns its absolute path.
func (service *Service) Clone(executionContext context.Context, options Options) (Result, error) {
	candidates := options.Repospec.CandidateURLs(options.Remote, options.FallbackRemotes)
	if len(candidates) == 0 {
		return Result{}, errors.New(noRemotesMessageConstant)
	}

	revision := strings.TrimSpace(options.Revision)
	if len(revision) == 0 {
		revision = headRevisionConstant
	}

	targetPath := filepath.Join(options.ClonePath, options.Repospec.Owner, options.Repospec.Repository)
	if options.Versioning {
		headCommit, headError := service.resolveHead(executionContext, candidates)
		if headError != nil {
			return Result{}, headError
		}
		revision = headCommit
		targetPath = filepath.Join(targetPath, headCommit)
	}

	absolutePath, absoluteError := service.fileSystem.Abs(targetPath)
	if absoluteError != nil {
		return Result{}, errors.Wrapf(absoluteError, resolvePathTemplateConstant, targetPath)
	}

	result := Result{Path: absolutePath, Revision: revision}
	if service.isClone(absolutePath) {
		result.Updated = true
		if updateError := service.update(executionContext, absolutePath, revision); updateError != nil {
			return Result{}, errors.Wrapf(updateError, updateRepositoryTemplateConstant, options.Repospec.Slug())
		}
		return result, nil
	}

	if cloneError := service.cloneFirstAvailable(executionContext, options, candidates, absolutePath); cloneError != nil {
		return Result{}, cloneError
	}
	if revision != headRevisionConstant {
		if checkoutError := service.checkout(executionContext, absolutePath, revision); checkoutError != nil {
			return Result{}, checkoutError
		}
	}
	return result, nil
}

func (service *Service) isClone(path string) bool {
	_, statError := service.fileSystem.Stat(filepath.Join(path, gitDirectoryNameConstant))
	return statError == nil
}

func (service *Service) update(executionContext context.Context, path string, revision string) error {
	service.logger.Info(updatingCloneLogMessageConstant, zap.String(logFieldPathConstant, path))
	if fetchError := service.gitManager.FetchPrune(executionContext, path, shared.OriginRemoteNameConstant); fetchError != nil {
		return fetchError
	}
	if revision != headRevisionConstant {
		return service.checkout(executionContext, path, revision)
	}
	_, pullError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitPullSubcommandConstant, gitFastForwardOnlyFlagConstant},
		WorkingDirectory:     path,
		EnvironmentVariables: networkEnvironment(),
	})
	if pullError != nil {
		return errors.Wrapf(pullError, pullTemplateConstant, path)
	}
	return nil
}

func (service *Service) cloneFirstAvailable(executionContext context.Context, options Options, candidates []string, path string) error {
	if mkdirError := service.fileSystem.MkdirAll(filepath.Dir(path), parentDirectoryPermissionsConstant); mkdirError != nil {
		return errors.Wrapf(mkdirError, createParentTemplateConstant, path)
	}

	referenceArguments := service.referenceArguments(options)
	var lastError error
	for _, candidate := range candidates {
		service.logger.Info(cloneAttemptLogMessageConstant,
			zap.String(logFieldRepositoryConstant, options.Repospec.Slug()),
			zap.String(logFieldURLConstant, candidate),
			zap.String(logFieldPathConstant, path),
		)
		arguments := append([]string{gitCloneSubcommandConstant}, referenceArguments...)
		arguments = append(arguments, candidate, path)
		_, cloneError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            arguments,
			EnvironmentVariables: networkEnvironment(),
		})
		if cloneError == nil {
			return nil
		}
		service.logger.Warn(cloneAttemptFailedLogMessageConstant, zap.String(logFieldURLConstant, candidate), zap.Error(cloneError))
		lastError = cloneError
	}
	return errors.Wrapf(ErrAllRemotesFailed, cloneRepositoryTemplateConstant, options.Repospec.Slug(), lastError)
}

func (service *Service) referenceArguments(options Options) []string {
	if len(options.MirrorPath) == 0 {
		return nil
	}
	mirrorRepository := filepath.Join(options.MirrorPath, options.Repospec.Owner, options.Repospec.Repository+gitSuffixConstant)
	if _, statError := service.fileSystem.Stat(mirrorRepository); statError != nil {
		service.logger.Debug(mirrorMissingLogMessageConstant, zap.String(logFieldMirrorConstant, mirrorRepository))
		return nil
	}
	return []string{gitReferenceFlagConstant, mirrorRepository}
}

func (service *Service) checkout(executionContext context.Context, path string, revision string) error {
	_, checkoutError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, revision},
		WorkingDirectory: path,
	})
	if checkoutError != nil {
		return errors.Wrapf(checkoutError, checkoutTemplateConstant, revision, path)
	}
	return nil
}

// resolveHead reads the HEAD commit from the first candidate that answers ls-remote.
func (service *Service) resolveHead(executionContext context.Context, candidates []string) (string, error) {
	var lastError error
	for _, candidate := range candidates {
		result, executionError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{gitLsRemoteSubcommandConstant, candidate, headRevisionConstant},
			EnvironmentVariables: networkEnvironment(),
		})
		if executionError != nil {
			lastError = errors.Wrapf(executionError, resolveHeadTemplateConstant, candidate)
			continue
		}
		if commit, found := parseHeadCommit(result.StandardOutput); found {
			return commit, nil
		}
		lastError = errors.Newf(headNotFoundTemplateConstant, candidate)
	}
	return "", lastError
}

func parseHeadCommit(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == headRevisionConstant {
			return fields[0], true
		}
	}
	return "", false
}

func networkEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant}
}
