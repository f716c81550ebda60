package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/scottidler/git-tools/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default upstream remote used for GitHub repositories.
	OriginRemoteNameConstant = "origin"
)

// RepositoryRecord describes one discovered local clone.
type RepositoryRecord struct {
	Path string
	Slug string
}

// DisplayName returns the slug, or the path when the record has no slug.
func (record RepositoryRecord) DisplayName() string {
	if len(record.Slug) > 0 {
		return record.Slug
	}
	return record.Path
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	EvalSymlinks(path string) (string, error)
	Abs(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	MkdirAll(path string, permissions fs.FileMode) error
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes repository-level git operations.
type GitRepositoryManager interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	TopLevel(executionContext context.Context, directory string) (string, error)
	FetchPrune(executionContext context.Context, repositoryPath string, remoteName string) error
}

// SlugResolver derives the org/repo slug of a local clone.
type SlugResolver interface {
	SlugFromRepoPath(executionContext context.Context, repositoryPath string) (string, error)
}

// RepositoryCollector discovers repository records under roots for bulk operations.
type RepositoryCollector interface {
	CollectRepositories(executionContext context.Context, roots []string) ([]RepositoryRecord, error)
}
