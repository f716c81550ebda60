// Package githubauth locates GitHub API tokens for git-tools commands.
package githubauth

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	tokenFileReadErrorTemplateConstant = "unable to read token file %s"
)

// TokenSource names where a resolved token came from.
type TokenSource string

// Token source enumerations.
const (
	TokenSourceNone        TokenSource = ""
	TokenSourceFile        TokenSource = "file"
	TokenSourceEnvironment TokenSource = "environment"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// OwnerTokenResolver finds the token for a GitHub owner: the file <TokenDirectory>/<owner>
// first, then GH_TOKEN, GITHUB_TOKEN and GITHUB_API_TOKEN.
type OwnerTokenResolver struct {
	TokenDirectory    string
	EnvironmentLookup EnvironmentLookup
	FileReader        FileReader
}

// Resolve returns the owner's token and its source. An absent token is not an error;
// the source is TokenSourceNone. Unreadable token files other than missing ones fail.
func (resolver OwnerTokenResolver) Resolve(owner string) (string, TokenSource, error) {
	trimmedDirectory := strings.TrimSpace(resolver.TokenDirectory)
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedDirectory) > 0 && len(trimmedOwner) > 0 {
		fileReader := resolver.FileReader
		if fileReader == nil {
			fileReader = os.ReadFile
		}
		tokenPath := filepath.Join(trimmedDirectory, trimmedOwner)
		contents, readError := fileReader(tokenPath)
		switch {
		case readError == nil:
			if token := strings.TrimSpace(string(contents)); len(token) > 0 {
				return token, TokenSourceFile, nil
			}
		case !os.IsNotExist(readError):
			return "", TokenSourceNone, errors.Wrapf(readError, tokenFileReadErrorTemplateConstant, tokenPath)
		}
	}

	environmentLookup := resolver.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		if value, found := environmentLookup(key); found {
			if token := strings.TrimSpace(value); len(token) > 0 {
				return token, TokenSourceEnvironment, nil
			}
		}
	}
	return "", TokenSourceNone, nil
}

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	token, source, _ := OwnerTokenResolver{}.Resolve("")
	return token, source != TokenSourceNone
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
