package shellinit_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/cmd/cli"
	"github.com/scottidler/git-tools/internal/shellinit"
)

const (
	executeApplicationVariableConstant = "GIT_TOOLS_TEST_EXECUTE_APPLICATION"
	binaryWrapperTemplateConstant      = "#!/bin/sh\n%s=1 exec %q \"$@\"\n"
	cloneUsageLineConstant             = "git-tools clone <repospec> [revision]"
)

// TestMain turns the test binary into git-tools when the rendered function invokes it.
func TestMain(m *testing.M) {
	if os.Getenv(executeApplicationVariableConstant) == "1" {
		if executionError := cli.NewApplication().ExecuteWithArguments(os.Args[1:]); executionError != nil {
			fmt.Fprintln(os.Stderr, executionError)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestRenderFunction(testInstance *testing.T) {
	script, renderError := shellinit.RenderFunction("", "")
	require.NoError(testInstance, renderError)
	require.True(testInstance, strings.HasPrefix(script, "clone() {\n"))
	require.Contains(testInstance, script, "-h|--help|help|-v|--version)")
	require.Contains(testInstance, script, `clone_target="$(command git-tools clone "$@")" || return`)

	script, renderError = shellinit.RenderFunction("gclone", "/opt/bin/git-tools")
	require.NoError(testInstance, renderError)
	require.True(testInstance, strings.HasPrefix(script, "gclone() {\n"))
	require.Contains(testInstance, script, "command /opt/bin/git-tools clone")

	for _, invalidName := range []string{"1clone", "clone me", "clone;rm"} {
		_, renderError = shellinit.RenderFunction(invalidName, "")
		require.ErrorIs(testInstance, renderError, shellinit.ErrInvalidFunctionName, invalidName)
	}
}

func TestRenderedFunctionDrivesCloneCommand(testInstance *testing.T) {
	shellPath, shellLookupError := exec.LookPath("sh")
	if shellLookupError != nil {
		testInstance.Skip("sh not available")
	}
	gitPath, gitLookupError := exec.LookPath("git")
	if gitLookupError != nil {
		testInstance.Skip("git not available")
	}

	testBinary, executableError := os.Executable()
	require.NoError(testInstance, executableError)
	binaryDirectory := testInstance.TempDir()
	wrapper := fmt.Sprintf(binaryWrapperTemplateConstant, executeApplicationVariableConstant, testBinary)
	require.NoError(testInstance, os.WriteFile(filepath.Join(binaryDirectory, "git-tools"), []byte(wrapper), 0o755))

	remoteBase := testInstance.TempDir()
	bareRepository := filepath.Join(remoteBase, "org", "help-desk.git")
	require.NoError(testInstance, exec.Command(gitPath, "init", "--quiet", "--bare", bareRepository).Run())

	clonePath := testInstance.TempDir()
	cloneTarget := filepath.Join(clonePath, "org", "help-desk")
	workingDirectory := testInstance.TempDir()
	cloneFlags := " --remote " + remoteBase + " --clone-path " + clonePath

	script, renderError := shellinit.RenderFunction("", "")
	require.NoError(testInstance, renderError)

	testCases := []struct {
		name             string
		invocation       string
		expectedContains string
		expectedFinalDir string
	}{
		{name: "clone_changes_directory", invocation: "clone org/help-desk" + cloneFlags, expectedFinalDir: cloneTarget},
		{name: "help_flag_passes_through", invocation: "clone --help", expectedContains: cloneUsageLineConstant, expectedFinalDir: workingDirectory},
		{name: "help_revision_passes_through", invocation: "clone org/help-desk help" + cloneFlags, expectedContains: cloneUsageLineConstant, expectedFinalDir: workingDirectory},
		{name: "version_flag_passes_through", invocation: "clone --version", expectedContains: "git-tools dev\n", expectedFinalDir: workingDirectory},
		{name: "version_shorthand_passes_through", invocation: "clone -v", expectedContains: "git-tools dev\n", expectedFinalDir: workingDirectory},
		{name: "failure_stays_put", invocation: "clone not-a-repospec", expectedFinalDir: workingDirectory},
	}

	configurationHome := testInstance.TempDir()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			shellCommand := exec.CommandContext(context.Background(), shellPath, "-c", script+testCase.invocation+"\npwd\n")
			shellCommand.Dir = workingDirectory
			shellCommand.Env = append(os.Environ(),
				"PATH="+binaryDirectory+string(os.PathListSeparator)+os.Getenv("PATH"),
				"PWD="+workingDirectory,
				"XDG_CONFIG_HOME="+configurationHome,
			)
			outputBuffer := &bytes.Buffer{}
			shellCommand.Stdout = outputBuffer
			require.NoError(testInstance, shellCommand.Run())

			output := outputBuffer.String()
			require.True(testInstance, strings.HasSuffix(output, testCase.expectedFinalDir+"\n"), output)
			require.Contains(testInstance, output, testCase.expectedContains)
		})
	}
	require.DirExists(testInstance, filepath.Join(cloneTarget, ".git"))
}
