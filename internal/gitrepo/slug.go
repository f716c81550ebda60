package gitrepo

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	noRemoteConfiguredMessageConstant        = "no remote configured"
	slugParseMessageConstant                 = "remote url is not an org/repo remote"
	noRemoteConfiguredTemplateConstant       = "%s: no %q remote configured"
	slugParseTemplateConstant                = "%s: cannot derive org/repo from remote url %q"
	remoteReaderNotConfiguredMessageConstant = "remote url reader not configured"
)

var (
	// ErrNoRemoteConfigured matches NoRemoteConfiguredError.
	ErrNoRemoteConfigured = errors.New(noRemoteConfiguredMessageConstant)
	// ErrSlugParse matches SlugParseError.
	ErrSlugParse = errors.New(slugParseMessageConstant)
	// ErrRemoteReaderNotConfigured indicates the slug resolver was constructed without a remote reader.
	ErrRemoteReaderNotConfigured = errors.New(remoteReaderNotConfiguredMessageConstant)
)

// NoRemoteConfiguredError reports a repository without the expected remote.
type NoRemoteConfiguredError struct {
	RepositoryPath string
	RemoteName     string
}

// Error describes the missing remote.
func (missingRemote NoRemoteConfiguredError) Error() string {
	return fmt.Sprintf(noRemoteConfiguredTemplateConstant, missingRemote.RepositoryPath, missingRemote.RemoteName)
}

// Is reports whether target is ErrNoRemoteConfigured.
func (missingRemote NoRemoteConfiguredError) Is(target error) bool {
	return target == ErrNoRemoteConfigured
}

// SlugParseError reports a remote URL that does not describe an org/repo remote.
type SlugParseError struct {
	RepositoryPath string
	URL            string
}

// Error describes the unparseable remote.
func (parseFailure SlugParseError) Error() string {
	return fmt.Sprintf(slugParseTemplateConstant, parseFailure.RepositoryPath, parseFailure.URL)
}

// Is reports whether target is ErrSlugParse.
func (parseFailure SlugParseError) Is(target error) bool {
	return target == ErrSlugParse
}

// RemoteURLReader reads the URL configured for a named remote.
type RemoteURLReader interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// SlugResolver derives org/repo slugs from a repository's remote.
type SlugResolver struct {
	reader     RemoteURLReader
	remoteName string
}

// NewSlugResolver constructs a SlugResolver reading remoteName, or origin when remoteName is empty.
func NewSlugResolver(reader RemoteURLReader, remoteName string) (*SlugResolver, error) {
	if reader == nil {
		return nil, ErrRemoteReaderNotConfigured
	}
	if len(remoteName) == 0 {
		remoteName = shared.OriginRemoteNameConstant
	}
	return &SlugResolver{reader: reader, remoteName: remoteName}, nil
}

// SlugFromRepoPath returns the slug of the repository at repositoryPath.
func (resolver *SlugResolver) SlugFromRepoPath(executionContext context.Context, repositoryPath string) (string, error) {
	remoteURL, lookupError := resolver.reader.GetRemoteURL(executionContext, repositoryPath, resolver.remoteName)
	if lookupError != nil {
		if errors.Is(lookupError, ErrRemoteNotConfigured) {
			return "", NoRemoteConfiguredError{RepositoryPath: repositoryPath, RemoteName: resolver.remoteName}
		}
		return "", lookupError
	}
	if len(remoteURL) == 0 {
		return "", NoRemoteConfiguredError{RepositoryPath: repositoryPath, RemoteName: resolver.remoteName}
	}

	slug, parsed := ParseSlug(remoteURL)
	if !parsed {
		return "", SlugParseError{RepositoryPath: repositoryPath, URL: remoteURL}
	}
	return slug, nil
}
