package githubauth_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/internal/githubauth"
)

const (
	testOwnerConstant     = "acme"
	fileTokenConstant     = "file-token"
	cliTokenConstant      = "cli-token"
	apiTokenConstant      = "api-token"
	tokenFileModeConstant = 0o600
)

func environmentFrom(values map[string]string) githubauth.EnvironmentLookup {
	return func(key string) (string, bool) {
		value, found := values[key]
		return value, found
	}
}

func TestOwnerTokenResolverResolve(testInstance *testing.T) {
	tokenDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(tokenDirectory, testOwnerConstant), []byte(fileTokenConstant+"\n"), tokenFileModeConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(tokenDirectory, "blank"), []byte("  \n"), tokenFileModeConstant))

	testCases := []struct {
		name           string
		owner          string
		environment    map[string]string
		expectedToken  string
		expectedSource githubauth.TokenSource
	}{
		{
			name:           "owner_file_wins",
			owner:          testOwnerConstant,
			environment:    map[string]string{githubauth.EnvGitHubCLIToken: cliTokenConstant},
			expectedToken:  fileTokenConstant,
			expectedSource: githubauth.TokenSourceFile,
		},
		{
			name:           "missing_file_falls_back_to_environment_order",
			owner:          "other",
			environment:    map[string]string{githubauth.EnvGitHubAPIToken: apiTokenConstant, githubauth.EnvGitHubCLIToken: cliTokenConstant},
			expectedToken:  cliTokenConstant,
			expectedSource: githubauth.TokenSourceEnvironment,
		},
		{
			name:           "blank_file_and_blank_variables_skipped",
			owner:          "blank",
			environment:    map[string]string{githubauth.EnvGitHubCLIToken: " ", githubauth.EnvGitHubAPIToken: apiTokenConstant},
			expectedToken:  apiTokenConstant,
			expectedSource: githubauth.TokenSourceEnvironment,
		},
		{
			name:           "no_token_anywhere",
			owner:          "other",
			environment:    map[string]string{},
			expectedSource: githubauth.TokenSourceNone,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := githubauth.OwnerTokenResolver{
				TokenDirectory:    tokenDirectory,
				EnvironmentLookup: environmentFrom(testCase.environment),
			}
			token, source, resolveError := resolver.Resolve(testCase.owner)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestOwnerTokenResolverReportsUnreadableFile(testInstance *testing.T) {
	resolver := githubauth.OwnerTokenResolver{
		TokenDirectory: "/tokens",
		FileReader: func(string) ([]byte, error) {
			return nil, fs.ErrPermission
		},
		EnvironmentLookup: environmentFrom(map[string]string{githubauth.EnvGitHubToken: cliTokenConstant}),
	}
	_, _, resolveError := resolver.Resolve(testOwnerConstant)
	require.Error(testInstance, resolveError)
	require.True(testInstance, errors.Is(resolveError, fs.ErrPermission))
	require.ErrorContains(testInstance, resolveError, filepath.Join("/tokens", testOwnerConstant))
}

func TestResolveTokenPrefersProvidedEnvironment(testInstance *testing.T) {
	token, found := githubauth.ResolveToken(map[string]string{githubauth.EnvGitHubToken: " provided "})
	require.True(testInstance, found)
	require.Equal(testInstance, "provided", token)
}
