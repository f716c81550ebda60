package filterref

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	gitLogSubcommandConstant        = "log"
	gitSingleCommitFlagConstant     = "-1"
	gitTimeAuthorFormatFlagConstant = "--format=%ct%x1f%an"
	gitRevisionTerminatorConstant   = "--"
	fieldSeparatorConstant          = "\x1f"
	commitDateLayoutConstant        = "2006-01-02 15:04:05 UTC"
	lineFieldSeparatorConstant      = " "
	refRequiredMessageConstant      = "ref must be provided"
	resolveRefFailureTemplate       = "resolve ref %s"
	unexpectedLogOutputTemplate     = "unexpected git log output %q"
	missingExecutorMessageConstant  = "git executor not configured"
)

var (
	// ErrRefRequired indicates an empty ref argument.
	ErrRefRequired = errors.New(refRequiredMessageConstant)
	// ErrGitExecutorNotConfigured indicates the service lacks a git executor.
	ErrGitExecutorNotConfigured = errors.New(missingExecutorMessageConstant)
)

// Commit is the resolved commit of a ref.
type Commit struct {
	Ref    string
	Time   time.Time
	Author string
}

// Line renders "[date ]ref[ author]".
func (commit Commit) Line(showDate bool, showAuthor bool) string {
	fields := make([]string, 0, 3)
	if showDate {
		fields = append(fields, commit.Time.UTC().Format(commitDateLayoutConstant))
	}
	fields = append(fields, commit.Ref)
	if showAuthor {
		fields = append(fields, commit.Author)
	}
	return strings.Join(fields, lineFieldSeparatorConstant)
}

// Service resolves refs and tests them against spans.
type Service struct {
	gitExecutor shared.GitExecutor
	clock       shared.Clock
}

// NewService constructs a Service. A nil clock uses the system clock.
func NewService(gitExecutor shared.GitExecutor, clock shared.Clock) (*Service, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{gitExecutor: gitExecutor, clock: clock}, nil
}

// Resolve reads the commit time and author name of ref in repositoryPath.
func (service *Service) Resolve(executionContext context.Context, repositoryPath string, ref string) (Commit, error) {
	trimmedRef := strings.TrimSpace(ref)
	if len(trimmedRef) == 0 {
		return Commit{}, ErrRefRequired
	}

	result, executionError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitTimeAuthorFormatFlagConstant, trimmedRef, gitRevisionTerminatorConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return Commit{}, errors.Wrapf(executionError, resolveRefFailureTemplate, trimmedRef)
	}

	output := strings.TrimSpace(result.StandardOutput)
	timestampText, author, found := strings.Cut(output, fieldSeparatorConstant)
	if !found {
		return Commit{}, errors.Newf(unexpectedLogOutputTemplate, output)
	}
	seconds, parseError := strconv.ParseInt(strings.TrimSpace(timestampText), 10, 64)
	if parseError != nil {
		return Commit{}, errors.Wrapf(parseError, unexpectedLogOutputTemplate, output)
	}

	return Commit{Ref: trimmedRef, Time: time.Unix(seconds, 0).UTC(), Author: author}, nil
}

// Filter resolves ref and reports whether its commit falls inside span.
func (service *Service) Filter(executionContext context.Context, repositoryPath string, ref string, span Span) (Commit, bool, error) {
	commit, resolveError := service.Resolve(executionContext, repositoryPath, ref)
	if resolveError != nil {
		return Commit{}, false, resolveError
	}
	return commit, span.Contains(service.clock.Now(), commit.Time), nil
}
