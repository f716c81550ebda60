package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

func TestOSFileSystemRoundTrip(testInstance *testing.T) {
	var fileSystem shared.FileSystem = filesystem.OSFileSystem{}
	rootDirectory := testInstance.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, "org", "api")

	require.NoError(testInstance, fileSystem.MkdirAll(nestedDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(nestedDirectory, "CODEOWNERS"), []byte("* @org/team\n"), 0o600))
	require.NoError(testInstance, os.Symlink(nestedDirectory, filepath.Join(rootDirectory, "link")))

	content, readError := fileSystem.ReadFile(filepath.Join(nestedDirectory, "CODEOWNERS"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "* @org/team\n", string(content))

	entries, listError := fileSystem.ReadDir(rootDirectory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, "link", entries[0].Name())
	require.Equal(testInstance, os.ModeSymlink, entries[0].Type())
	require.Equal(testInstance, "org", entries[1].Name())

	resolvedLink, resolveError := fileSystem.EvalSymlinks(filepath.Join(rootDirectory, "link"))
	require.NoError(testInstance, resolveError)
	resolvedTarget, targetError := filepath.EvalSymlinks(nestedDirectory)
	require.NoError(testInstance, targetError)
	require.Equal(testInstance, resolvedTarget, resolvedLink)

	information, statError := fileSystem.Stat(filepath.Join(rootDirectory, "link"))
	require.NoError(testInstance, statError)
	require.True(testInstance, information.IsDir())

	absolutePath, absoluteError := fileSystem.Abs(".")
	require.NoError(testInstance, absoluteError)
	require.True(testInstance, filepath.IsAbs(absolutePath))
}
