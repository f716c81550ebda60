package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = `common:
  log_level: error
tools:
  repos:
    roots:
      - /srv/work
    parallelism: 8
  filter_ref:
    span: 2w:3m
  clone:
    clone_path: /srv/src
`
)

func newTestApplication(testInstance *testing.T) *Application {
	testInstance.Helper()
	testInstance.Setenv("XDG_CONFIG_HOME", testInstance.TempDir())
	return NewApplication()
}

func TestInitializeConfigurationReadsFileAndEnvironment(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	application := newTestApplication(testInstance)
	testInstance.Setenv("GITTOOLS_TOOLS_CLONE_MIRROR_PATH", "/srv/mirrors")
	testInstance.Setenv("GITTOOLS_TOOLS_CLONE_FALLBACK_REMOTES", "https://github.com,https://gitlab.com")

	rootCommand := application.rootCommand
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	configuration := application.configuration
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, []string{"/srv/work"}, configuration.Tools.Repos.Roots)
	require.Equal(testInstance, 8, configuration.Tools.Repos.Parallelism)
	require.Equal(testInstance, "origin", configuration.Tools.Repos.Remote)
	require.Equal(testInstance, 14*24*time.Hour, configuration.Tools.FilterRef.Span.Newest)
	require.Equal(testInstance, "/srv/src", configuration.Tools.Clone.ClonePath)
	require.Equal(testInstance, "/srv/mirrors", configuration.Tools.Clone.MirrorPath)
	require.Equal(testInstance, []string{"https://github.com", "https://gitlab.com"}, configuration.Tools.Clone.FallbackRemotes)
	require.Equal(testInstance, 100, configuration.Tools.PullRequests.Limit)
}

func TestInitializeConfigurationSearchesXDGDirectory(testInstance *testing.T) {
	configurationHome := testInstance.TempDir()
	testInstance.Setenv("XDG_CONFIG_HOME", configurationHome)
	applicationDirectory := filepath.Join(configurationHome, applicationNameConstant)
	require.NoError(testInstance, os.MkdirAll(applicationDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(applicationDirectory, testConfigurationFileNameConstant), []byte(testConfigurationContentConstant), 0o600))

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, "/srv/src", application.configuration.Tools.Clone.ClonePath)
}

func TestInitializeConfigurationFlagsOverrideConfiguration(testInstance *testing.T) {
	application := newTestApplication(testInstance)
	rootCommand := application.rootCommand

	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestHumanReadableLoggingFollowsConsoleFormat(testInstance *testing.T) {
	application := newTestApplication(testInstance)
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.True(testInstance, application.humanReadableLoggingEnabled())
}
