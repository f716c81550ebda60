package discovery

import (
	"context"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scottidler/git-tools/internal/repos/filesystem"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	gitMetadataEntryNameConstant       = ".git"
	inspectPathFailureTemplateConstant = "inspect %s"
	slugUnavailableLogMessageConstant  = "repository slug unavailable"
	logFieldPathConstant               = "path"
)

// Options configures a discovery run.
type Options struct {
	// Strict turns per-path warnings into a failure of the whole call.
	Strict bool
	// Parallelism bounds the number of roots scanned concurrently; values below 2 scan sequentially.
	Parallelism int
}

// Result holds the discovered records and the warnings collected in lenient mode.
type Result struct {
	Records  []shared.RepositoryRecord
	Warnings []DiscoveryError
}

// Dependencies supplies the collaborators of FilesystemRepositoryDiscoverer. Every field is optional.
type Dependencies struct {
	FileSystem   shared.FileSystem
	SlugResolver shared.SlugResolver
	Logger       *zap.Logger
}

// FilesystemRepositoryDiscoverer locates git repositories on disk up to two levels below each root.
type FilesystemRepositoryDiscoverer struct {
	fileSystem   shared.FileSystem
	slugResolver shared.SlugResolver
	logger       *zap.Logger
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer, defaulting to the OS filesystem and no slug resolution.
func NewFilesystemRepositoryDiscoverer(dependencies Dependencies) *FilesystemRepositoryDiscoverer {
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemRepositoryDiscoverer{
		fileSystem:   fileSystem,
		slugResolver: dependencies.SlugResolver,
		logger:       logger,
	}
}

type repositoryCandidate struct {
	path         string
	resolvedPath string
}

type rootScan struct {
	candidates []repositoryCandidate
	warnings   []DiscoveryError
	failure    error
}

// DiscoverRepositories scans roots in order and returns one record per distinct repository.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(executionContext context.Context, roots []string, options Options) (Result, error) {
	scans := make([]rootScan, len(roots))

	if options.Parallelism > 1 && len(roots) > 1 {
		var scanGroup errgroup.Group
		scanGroup.SetLimit(options.Parallelism)
		for rootIndex := range roots {
			scanGroup.Go(func() error {
				scans[rootIndex] = discoverer.scanRoot(executionContext, roots[rootIndex], options.Strict)
				return nil
			})
		}
		// Scan failures are carried in rootScan.failure and merged in input order below.
		scanGroup.Wait()
	} else {
		for rootIndex, root := range roots {
			scans[rootIndex] = discoverer.scanRoot(executionContext, root, options.Strict)
			if scans[rootIndex].failure != nil {
				break
			}
		}
	}

	result := Result{}
	seenResolvedPaths := make(map[string]struct{})
	for _, scan := range scans {
		if scan.failure != nil {
			return Result{}, scan.failure
		}
		result.Warnings = append(result.Warnings, scan.warnings...)
		for _, candidate := range scan.candidates {
			if _, alreadySeen := seenResolvedPaths[candidate.resolvedPath]; alreadySeen {
				continue
			}
			seenResolvedPaths[candidate.resolvedPath] = struct{}{}
			result.Records = append(result.Records, shared.RepositoryRecord{Path: candidate.path})
		}
	}

	if discoverer.slugResolver != nil {
		if slugError := discoverer.populateSlugs(executionContext, result.Records, options.Parallelism); slugError != nil {
			return Result{}, slugError
		}
	}

	return result, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) populateSlugs(executionContext context.Context, records []shared.RepositoryRecord, parallelism int) error {
	slugGroup, groupContext := errgroup.WithContext(executionContext)
	if parallelism < 1 {
		parallelism = 1
	}
	slugGroup.SetLimit(parallelism)
	for recordIndex := range records {
		slugGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			slug, resolveError := discoverer.slugResolver.SlugFromRepoPath(groupContext, records[recordIndex].Path)
			if resolveError != nil {
				discoverer.logger.Debug(slugUnavailableLogMessageConstant, zap.String(logFieldPathConstant, records[recordIndex].Path), zap.Error(resolveError))
				return nil
			}
			records[recordIndex].Slug = slug
			return nil
		})
	}
	return slugGroup.Wait()
}

type rootScanner struct {
	fileSystem        shared.FileSystem
	strict            bool
	scan              rootScan
	listedDirectories map[string]struct{}
}

func (discoverer *FilesystemRepositoryDiscoverer) scanRoot(executionContext context.Context, root string, strict bool) rootScan {
	if contextError := executionContext.Err(); contextError != nil {
		return rootScan{failure: contextError}
	}

	scanner := &rootScanner{
		fileSystem:        discoverer.fileSystem,
		strict:            strict,
		listedDirectories: make(map[string]struct{}),
	}
	scanner.scanRoot(filepath.Clean(root))
	return scanner.scan
}

func (scanner *rootScanner) scanRoot(root string) {
	rootInfo, statError := scanner.fileSystem.Stat(root)
	if statError != nil {
		scanner.recordFailure(root, statError)
		return
	}
	if !rootInfo.IsDir() {
		scanner.recordCondition(DiscoveryError{Kind: ErrPathNotFound, Path: root, Cause: errNotADirectory})
		return
	}

	isRepository, inspectionError := scanner.containsGitMetadata(root)
	if inspectionError != nil {
		scanner.recordFailure(root, inspectionError)
		return
	}
	if isRepository {
		scanner.addCandidate(root)
		return
	}

	children, listed := scanner.listSubdirectories(root)
	if !listed {
		return
	}
	for _, child := range children {
		if scanner.halted() {
			return
		}
		childIsRepository, childInspectionError := scanner.containsGitMetadata(child)
		if childInspectionError != nil {
			scanner.recordFailure(child, childInspectionError)
			continue
		}
		if childIsRepository {
			scanner.addCandidate(child)
			continue
		}

		grandchildren, grandchildrenListed := scanner.listSubdirectories(child)
		if !grandchildrenListed {
			continue
		}
		for _, grandchild := range grandchildren {
			if scanner.halted() {
				return
			}
			grandchildIsRepository, grandchildInspectionError := scanner.containsGitMetadata(grandchild)
			if grandchildInspectionError != nil {
				scanner.recordFailure(grandchild, grandchildInspectionError)
				continue
			}
			if grandchildIsRepository {
				scanner.addCandidate(grandchild)
			}
		}
	}
}

// listSubdirectories returns the directories directly under directory, following symbolic links.
// The boolean is false when the directory was skipped, either as already listed or because of a recorded condition.
func (scanner *rootScanner) listSubdirectories(directory string) ([]string, bool) {
	resolvedDirectory := scanner.resolve(directory)
	if _, alreadyListed := scanner.listedDirectories[resolvedDirectory]; alreadyListed {
		return nil, false
	}
	scanner.listedDirectories[resolvedDirectory] = struct{}{}

	entries, readError := scanner.fileSystem.ReadDir(directory)
	if readError != nil {
		scanner.recordFailure(directory, readError)
		return nil, false
	}

	subdirectories := make([]string, 0, len(entries))
	for _, entry := range entries {
		entryPath := filepath.Join(directory, entry.Name())
		if entry.IsDir() {
			subdirectories = append(subdirectories, entryPath)
			continue
		}
		if entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		targetInfo, statError := scanner.fileSystem.Stat(entryPath)
		if statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				continue
			}
			scanner.recordFailure(entryPath, statError)
			continue
		}
		if targetInfo.IsDir() {
			subdirectories = append(subdirectories, entryPath)
		}
	}
	return subdirectories, true
}

func (scanner *rootScanner) containsGitMetadata(directory string) (bool, error) {
	_, statError := scanner.fileSystem.Stat(filepath.Join(directory, gitMetadataEntryNameConstant))
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, fs.ErrNotExist) {
		return false, nil
	}
	return false, statError
}

func (scanner *rootScanner) addCandidate(repositoryPath string) {
	scanner.scan.candidates = append(scanner.scan.candidates, repositoryCandidate{
		path:         repositoryPath,
		resolvedPath: scanner.resolve(repositoryPath),
	})
}

// resolve returns the absolute, symlink-free form of path, falling back to the absolute path.
func (scanner *rootScanner) resolve(path string) string {
	resolvedPath, resolveError := scanner.fileSystem.EvalSymlinks(path)
	if resolveError != nil {
		resolvedPath = path
	}
	absolutePath, absoluteError := scanner.fileSystem.Abs(resolvedPath)
	if absoluteError != nil {
		return filepath.Clean(resolvedPath)
	}
	return absolutePath
}

// recordFailure classifies a filesystem error as a discovery condition or an unrecoverable failure.
func (scanner *rootScanner) recordFailure(path string, failure error) {
	switch {
	case errors.Is(failure, fs.ErrNotExist), errors.Is(failure, syscall.ENOTDIR):
		scanner.recordCondition(DiscoveryError{Kind: ErrPathNotFound, Path: path, Cause: failure})
	case errors.Is(failure, fs.ErrPermission):
		scanner.recordCondition(DiscoveryError{Kind: ErrPermissionDenied, Path: path, Cause: failure})
	default:
		if scanner.scan.failure == nil {
			scanner.scan.failure = errors.Wrapf(failure, inspectPathFailureTemplateConstant, path)
		}
	}
}

func (scanner *rootScanner) recordCondition(condition DiscoveryError) {
	if scanner.strict {
		if scanner.scan.failure == nil {
			scanner.scan.failure = condition
		}
		return
	}
	scanner.scan.warnings = append(scanner.scan.warnings, condition)
}

func (scanner *rootScanner) halted() bool {
	return scanner.scan.failure != nil
}
