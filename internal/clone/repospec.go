package clone

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/gitrepo"
)

const (
	repospecSeparatorConstant           = "/"
	gitSuffixConstant                   = ".git"
	repospecForbiddenCharactersConstant = ":@"
	invalidRepospecTemplateConstant     = "repospec %q is neither org/repo nor a remote URL (%v)"
	emptyRepospecMessageConstant        = "repospec must be provided"
)

// ErrInvalidRepospec indicates a repospec that is neither org/repo nor a parseable remote URL.
var ErrInvalidRepospec = errors.New("invalid repospec")

// Repospec identifies the repository to clone.
type Repospec struct {
	Owner      string
	Repository string
	// URL is set when the repospec was a full remote URL; remotes are then not consulted.
	URL string
}

// Slug renders owner/repository.
func (repospec Repospec) Slug() string {
	return repospec.Owner + repospecSeparatorConstant + repospec.Repository
}

// ParseRepospec reads org/repo or any remote URL gitrepo.ParseRemoteURL accepts.
func ParseRepospec(value string) (Repospec, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return Repospec{}, errors.Wrap(ErrInvalidRepospec, emptyRepospecMessageConstant)
	}

	if owner, repository, isSlug := splitSlug(trimmed); isSlug {
		return Repospec{Owner: owner, Repository: repository}, nil
	}

	remote, parseError := gitrepo.ParseRemoteURL(trimmed)
	if parseError != nil {
		return Repospec{}, errors.Wrapf(ErrInvalidRepospec, invalidRepospecTemplateConstant, value, parseError)
	}
	return Repospec{Owner: remote.Owner, Repository: remote.Repository, URL: trimmed}, nil
}

// CandidateURLs returns the URLs a clone is attempted against, in order, without duplicates.
func (repospec Repospec) CandidateURLs(remote string, fallbackRemotes []string) []string {
	if len(repospec.URL) > 0 {
		return []string{repospec.URL}
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, base := range append([]string{remote}, fallbackRemotes...) {
		if len(strings.TrimSpace(base)) == 0 {
			continue
		}
		candidate := gitrepo.JoinRemoteBase(base, repospec.Owner, repospec.Repository)
		if _, duplicate := seen[candidate]; duplicate {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func splitSlug(value string) (string, string, bool) {
	if strings.ContainsAny(value, repospecForbiddenCharactersConstant) {
		return "", "", false
	}
	segments := strings.Split(value, repospecSeparatorConstant)
	if len(segments) != 2 || len(segments[0]) == 0 || len(segments[1]) == 0 {
		return "", "", false
	}
	return segments[0], strings.TrimSuffix(segments[1], gitSuffixConstant), true
}
