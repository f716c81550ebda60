package discovery_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/internal/repos/discovery"
	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	developerDirectoryName             = "Dev"
	engineeringGroupDirectoryName      = "Group1"
	applicationRepositoryDirectoryName = "Repo1"
	serviceRepositoryDirectoryName     = "Repo2"
	toolsRepositoryDirectoryName       = "Repo3"
	gitMetadataDirectoryName           = ".git"
	missingDirectoryName               = "missing"
	repositoryDirectoryPermissions     = 0o755
	repositoryFilePermissions          = 0o644
)

type faultInjectingFileSystem struct {
	filesystem.OSFileSystem
	readDirectoryFailures map[string]error
	statFailures          map[string]error
}

func (fileSystem faultInjectingFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	if failure, exists := fileSystem.readDirectoryFailures[path]; exists {
		return nil, failure
	}
	return fileSystem.OSFileSystem.ReadDir(path)
}

func (fileSystem faultInjectingFileSystem) Stat(path string) (fs.FileInfo, error) {
	if failure, exists := fileSystem.statFailures[path]; exists {
		return nil, failure
	}
	return fileSystem.OSFileSystem.Stat(path)
}

type mapSlugResolver struct {
	slugs map[string]string
}

func (resolver mapSlugResolver) SlugFromRepoPath(executionContext context.Context, repositoryPath string) (string, error) {
	slug, exists := resolver.slugs[repositoryPath]
	if !exists {
		return "", errors.New("no remote")
	}
	return slug, nil
}

func createRepository(testInstance *testing.T, segments ...string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, gitMetadataDirectoryName), repositoryDirectoryPermissions))
	return repositoryPath
}

func recordPaths(records []shared.RepositoryRecord) []string {
	paths := make([]string, 0, len(records))
	for _, record := range records {
		paths = append(paths, record.Path)
	}
	return paths
}

func permissionFailure(path string) error {
	return &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
}

func TestDiscoverRepositoriesLayouts(testInstance *testing.T) {
	testCases := []struct {
		name          string
		repositories  [][]string
		rootSegments  [][]string
		expectedPaths [][]string
	}{
		{
			name: "flat_and_nested_layouts",
			repositories: [][]string{
				{developerDirectoryName, toolsRepositoryDirectoryName},
				{developerDirectoryName, engineeringGroupDirectoryName, serviceRepositoryDirectoryName},
				{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryDirectoryName},
			},
			rootSegments: [][]string{{developerDirectoryName}},
			expectedPaths: [][]string{
				{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryDirectoryName},
				{developerDirectoryName, engineeringGroupDirectoryName, serviceRepositoryDirectoryName},
				{developerDirectoryName, toolsRepositoryDirectoryName},
			},
		},
		{
			name: "root_is_repository",
			repositories: [][]string{
				{toolsRepositoryDirectoryName},
				{toolsRepositoryDirectoryName, "vendor", applicationRepositoryDirectoryName},
			},
			rootSegments:  [][]string{{toolsRepositoryDirectoryName}},
			expectedPaths: [][]string{{toolsRepositoryDirectoryName}},
		},
		{
			name: "no_recursion_beyond_two_levels",
			repositories: [][]string{
				{developerDirectoryName, "a", "b", applicationRepositoryDirectoryName},
			},
			rootSegments: [][]string{{developerDirectoryName}},
		},
		{
			name: "duplicate_roots_keep_first_position",
			repositories: [][]string{
				{developerDirectoryName, applicationRepositoryDirectoryName},
				{developerDirectoryName, serviceRepositoryDirectoryName},
			},
			rootSegments: [][]string{
				{developerDirectoryName, serviceRepositoryDirectoryName},
				{developerDirectoryName},
				{developerDirectoryName},
			},
			expectedPaths: [][]string{
				{developerDirectoryName, serviceRepositoryDirectoryName},
				{developerDirectoryName, applicationRepositoryDirectoryName},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			temporaryRoot := testInstance.TempDir()
			for _, repositorySegments := range testCase.repositories {
				createRepository(testInstance, append([]string{temporaryRoot}, repositorySegments...)...)
			}

			roots := make([]string, 0, len(testCase.rootSegments))
			for _, rootSegments := range testCase.rootSegments {
				roots = append(roots, filepath.Join(append([]string{temporaryRoot}, rootSegments...)...))
			}

			expectedPaths := make([]string, 0, len(testCase.expectedPaths))
			for _, expectedSegments := range testCase.expectedPaths {
				expectedPaths = append(expectedPaths, filepath.Join(append([]string{temporaryRoot}, expectedSegments...)...))
			}

			discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
			result, discoveryError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{})
			require.NoError(testInstance, discoveryError)
			require.Empty(testInstance, result.Warnings)
			require.Equal(testInstance, expectedPaths, recordPaths(result.Records))
		})
	}
}

func TestDiscoverRepositoriesAcceptsGitFile(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	worktreePath := filepath.Join(temporaryRoot, "worktree")
	require.NoError(testInstance, os.MkdirAll(worktreePath, repositoryDirectoryPermissions))
	require.NoError(testInstance, os.WriteFile(filepath.Join(worktreePath, gitMetadataDirectoryName), []byte("gitdir: /elsewhere\n"), repositoryFilePermissions))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	result, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{temporaryRoot}, discovery.Options{})
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{worktreePath}, recordPaths(result.Records))
}

func TestDiscoverRepositoriesEmptyDirectory(testInstance *testing.T) {
	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	result, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{testInstance.TempDir()}, discovery.Options{Strict: true})
	require.NoError(testInstance, discoveryError)
	require.Empty(testInstance, result.Records)
	require.Empty(testInstance, result.Warnings)
}

func TestDiscoverRepositoriesMissingRoot(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	repositoryPath := createRepository(testInstance, temporaryRoot, developerDirectoryName, applicationRepositoryDirectoryName)
	missingRoot := filepath.Join(temporaryRoot, missingDirectoryName)
	roots := []string{missingRoot, filepath.Join(temporaryRoot, developerDirectoryName)}

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})

	lenientResult, lenientError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{})
	require.NoError(testInstance, lenientError)
	require.Equal(testInstance, []string{repositoryPath}, recordPaths(lenientResult.Records))
	require.Len(testInstance, lenientResult.Warnings, 1)
	require.ErrorIs(testInstance, lenientResult.Warnings[0], discovery.ErrPathNotFound)
	require.Equal(testInstance, missingRoot, lenientResult.Warnings[0].Path)

	_, strictError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{Strict: true})
	require.ErrorIs(testInstance, strictError, discovery.ErrPathNotFound)
	require.NotErrorIs(testInstance, strictError, discovery.ErrPermissionDenied)
}

func TestDiscoverRepositoriesRootIsFile(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), "notes.txt")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("notes"), repositoryFilePermissions))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	result, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{filePath}, discovery.Options{})
	require.NoError(testInstance, discoveryError)
	require.Len(testInstance, result.Warnings, 1)
	require.ErrorIs(testInstance, result.Warnings[0], discovery.ErrPathNotFound)
	require.Contains(testInstance, result.Warnings[0].Error(), "not a directory")
}

func TestDiscoverRepositoriesPermissionDenied(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	readableRepository := createRepository(testInstance, temporaryRoot, developerDirectoryName, applicationRepositoryDirectoryName)
	lockedGroup := filepath.Join(temporaryRoot, developerDirectoryName, engineeringGroupDirectoryName)
	createRepository(testInstance, lockedGroup, serviceRepositoryDirectoryName)
	lockedRoot := filepath.Join(temporaryRoot, "locked")
	require.NoError(testInstance, os.MkdirAll(lockedRoot, repositoryDirectoryPermissions))

	fileSystem := faultInjectingFileSystem{
		readDirectoryFailures: map[string]error{
			lockedRoot:  permissionFailure(lockedRoot),
			lockedGroup: permissionFailure(lockedGroup),
		},
	}
	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{FileSystem: fileSystem})
	roots := []string{lockedRoot, filepath.Join(temporaryRoot, developerDirectoryName)}

	lenientResult, lenientError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{})
	require.NoError(testInstance, lenientError)
	require.Equal(testInstance, []string{readableRepository}, recordPaths(lenientResult.Records))
	require.Len(testInstance, lenientResult.Warnings, 2)
	require.Equal(testInstance, lockedRoot, lenientResult.Warnings[0].Path)
	require.Equal(testInstance, lockedGroup, lenientResult.Warnings[1].Path)
	for _, warning := range lenientResult.Warnings {
		require.ErrorIs(testInstance, warning, discovery.ErrPermissionDenied)
	}

	_, strictError := discoverer.DiscoverRepositories(context.Background(), roots[1:], discovery.Options{Strict: true})
	require.ErrorIs(testInstance, strictError, discovery.ErrPermissionDenied)

	var discoveryFailure discovery.DiscoveryError
	require.True(testInstance, errors.As(strictError, &discoveryFailure))
	require.Equal(testInstance, lockedGroup, discoveryFailure.Path)
}

func TestDiscoverRepositoriesUnexpectedFailureIsFatal(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	ioFailure := errors.New("input/output error")
	fileSystem := faultInjectingFileSystem{readDirectoryFailures: map[string]error{temporaryRoot: ioFailure}}

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{FileSystem: fileSystem})
	_, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{temporaryRoot}, discovery.Options{})
	require.ErrorIs(testInstance, discoveryError, ioFailure)
	require.NotErrorIs(testInstance, discoveryError, discovery.ErrPathNotFound)
	require.NotErrorIs(testInstance, discoveryError, discovery.ErrPermissionDenied)
}

func TestDiscoverRepositoriesFollowsSymlinksWithoutCycles(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	repositoryPath := createRepository(testInstance, temporaryRoot, applicationRepositoryDirectoryName)
	require.NoError(testInstance, os.Symlink(temporaryRoot, filepath.Join(temporaryRoot, "loop")))
	require.NoError(testInstance, os.Symlink(repositoryPath, filepath.Join(temporaryRoot, "zz-link")))
	require.NoError(testInstance, os.Symlink(filepath.Join(temporaryRoot, missingDirectoryName), filepath.Join(temporaryRoot, "dangling")))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	result, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{temporaryRoot}, discovery.Options{Strict: true})
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{repositoryPath}, recordPaths(result.Records))
}

func TestDiscoverRepositoriesParallelMatchesSequential(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	roots := []string{filepath.Join(temporaryRoot, missingDirectoryName)}
	for _, group := range []string{"g5", "g1", "g4", "g2", "g3"} {
		createRepository(testInstance, temporaryRoot, group, applicationRepositoryDirectoryName)
		createRepository(testInstance, temporaryRoot, group, "nested", serviceRepositoryDirectoryName)
		roots = append(roots, filepath.Join(temporaryRoot, group))
	}
	roots = append(roots, filepath.Join(temporaryRoot, "g1"))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	sequentialResult, sequentialError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{Parallelism: 1})
	require.NoError(testInstance, sequentialError)
	require.Len(testInstance, sequentialResult.Records, 10)

	parallelResult, parallelError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{Parallelism: 4})
	require.NoError(testInstance, parallelError)
	require.Equal(testInstance, sequentialResult, parallelResult)
}

func TestDiscoverRepositoriesStrictParallelReportsFirstFailingRoot(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	createRepository(testInstance, temporaryRoot, applicationRepositoryDirectoryName)
	firstMissing := filepath.Join(temporaryRoot, "missing-first")
	secondMissing := filepath.Join(temporaryRoot, "missing-second")
	roots := []string{temporaryRoot, firstMissing, temporaryRoot, secondMissing}

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{})
	_, discoveryError := discoverer.DiscoverRepositories(context.Background(), roots, discovery.Options{Strict: true, Parallelism: 4})

	var discoveryFailure discovery.DiscoveryError
	require.True(testInstance, errors.As(discoveryError, &discoveryFailure))
	require.Equal(testInstance, firstMissing, discoveryFailure.Path)
}

func TestDiscoverRepositoriesPopulatesSlugs(testInstance *testing.T) {
	temporaryRoot := testInstance.TempDir()
	withRemote := createRepository(testInstance, temporaryRoot, applicationRepositoryDirectoryName)
	withoutRemote := createRepository(testInstance, temporaryRoot, serviceRepositoryDirectoryName)

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(discovery.Dependencies{
		SlugResolver: mapSlugResolver{slugs: map[string]string{withRemote: "org/repo1"}},
	})
	result, discoveryError := discoverer.DiscoverRepositories(context.Background(), []string{temporaryRoot}, discovery.Options{Parallelism: 2})
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []shared.RepositoryRecord{
		{Path: withRemote, Slug: "org/repo1"},
		{Path: withoutRemote},
	}, result.Records)
}
