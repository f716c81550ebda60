package owners

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/repos/parallel"
	"github.com/scottidler/git-tools/internal/repos/shared"
	"github.com/scottidler/git-tools/internal/ui"
)

// Ownership statuses, from least to most covered.
const (
	StatusUnowned = ui.StatusUnowned
	StatusPartial = ui.StatusPartial
	StatusOwned   = ui.StatusOwned
)

// Markers replacing the path mapping of unowned repositories.
const (
	MarkerMissingCodeOwners = "MISSING_CODEOWNERS"
	MarkerEmptyCodeOwners   = "EMPTY_CODEOWNERS"
	// UnownedMarker stands for the owner of an uncovered path.
	UnownedMarker = "UNOWNED"
)

const (
	authorsUnavailableLogMessageConstant = "unable to list top authors"
	logFieldRepositoryConstant           = "repository"
	collectRepositoriesFailureConstant   = "collect repositories"
	missingCollectorMessageConstant      = "repository collector not configured"
	missingExecutorMessageConstant       = "git executor not configured"
)

var (
	// ErrRepositoryCollectorNotConfigured indicates the service lacks a repository collector.
	ErrRepositoryCollectorNotConfigured = errors.New(missingCollectorMessageConstant)
	// ErrGitExecutorNotConfigured indicates the service lacks a git executor.
	ErrGitExecutorNotConfigured = errors.New(missingExecutorMessageConstant)

	statusRanks = map[string]int{StatusUnowned: 0, StatusPartial: 1, StatusOwned: 2}
)

// RepositoryFileSystemProvider opens the working tree rooted at path.
type RepositoryFileSystemProvider func(path string) fs.FS

// PathOwners pairs a CODEOWNERS pattern or uncovered location with its owners.
// Empty Owners means the location is unowned.
type PathOwners struct {
	Path   string
	Owners []string
}

// RepositoryOwnership is the ownership verdict of one repository.
type RepositoryOwnership struct {
	Repository string
	Path       string
	Status     string
	Marker     string
	Paths      []PathOwners
	Authors    []string
}

// ServiceDependencies enumerates the collaborators of Service.
type ServiceDependencies struct {
	Logger               *zap.Logger
	Collector            shared.RepositoryCollector
	GitExecutor          shared.GitExecutor
	RepositoryFileSystem RepositoryFileSystemProvider
	ExEmployeeFileReader FileReader
}

// AnalyzeOptions configures one ownership audit.
type AnalyzeOptions struct {
	Roots                []string
	Only                 []string
	TopAuthors           int
	ExEmployeesDirectory string
	Parallelism          int
}

// Service audits CODEOWNERS coverage.
type Service struct {
	logger               *zap.Logger
	collector            shared.RepositoryCollector
	gitExecutor          shared.GitExecutor
	repositoryFileSystem RepositoryFileSystemProvider
	exEmployeeFileReader FileReader
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Collector == nil {
		return nil, ErrRepositoryCollectorNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repositoryFileSystem := dependencies.RepositoryFileSystem
	if repositoryFileSystem == nil {
		repositoryFileSystem = os.DirFS
	}

	return &Service{
		logger:               logger,
		collector:            dependencies.Collector,
		gitExecutor:          dependencies.GitExecutor,
		repositoryFileSystem: repositoryFileSystem,
		exEmployeeFileReader: dependencies.ExEmployeeFileReader,
	}, nil
}

// Analyze audits every discovered repository and returns the verdicts whose status is in
// options.Only (all when empty), ordered unowned, partial, owned and then by repository.
func (service *Service) Analyze(executionContext context.Context, options AnalyzeOptions) ([]RepositoryOwnership, error) {
	records, collectError := service.collector.CollectRepositories(executionContext, options.Roots)
	if collectError != nil {
		return nil, errors.Wrap(collectError, collectRepositoriesFailureConstant)
	}

	employees := newExEmployeeDirectory(options.ExEmployeesDirectory, service.exEmployeeFileReader)
	outcomes, executionError := parallel.Execute(executionContext, records, options.Parallelism, service.logger,
		func(workContext context.Context, record shared.RepositoryRecord) (RepositoryOwnership, error) {
			return service.analyzeRepository(workContext, record, options.TopAuthors, employees)
		})
	if executionError != nil {
		return nil, executionError
	}

	allowed := make(map[string]struct{}, len(options.Only))
	for _, status := range options.Only {
		allowed[strings.ToLower(strings.TrimSpace(status))] = struct{}{}
	}

	verdicts := make([]RepositoryOwnership, 0, len(outcomes))
	for _, outcome := range outcomes {
		if len(allowed) > 0 {
			if _, keep := allowed[outcome.Value.Status]; !keep {
				continue
			}
		}
		verdicts = append(verdicts, outcome.Value)
	}

	sort.SliceStable(verdicts, func(leftIndex int, rightIndex int) bool {
		leftRank, rightRank := statusRanks[verdicts[leftIndex].Status], statusRanks[verdicts[rightIndex].Status]
		if leftRank != rightRank {
			return leftRank < rightRank
		}
		return verdicts[leftIndex].Repository < verdicts[rightIndex].Repository
	})
	return verdicts, nil
}

func (service *Service) analyzeRepository(executionContext context.Context, record shared.RepositoryRecord, authorLimit int, employees *exEmployeeDirectory) (RepositoryOwnership, error) {
	repositoryFiles := service.repositoryFileSystem(record.Path)
	verdict := RepositoryOwnership{Repository: record.DisplayName(), Path: record.Path}

	codeOwners, loadError := LoadCodeOwners(repositoryFiles)
	if loadError != nil {
		return RepositoryOwnership{}, loadError
	}

	switch {
	case !codeOwners.Exists:
		verdict.Status = StatusUnowned
		verdict.Marker = MarkerMissingCodeOwners
	case len(codeOwners.Rules) == 0:
		verdict.Status = StatusUnowned
		verdict.Marker = MarkerEmptyCodeOwners
	default:
		codeFiles, collectError := CollectCodeFiles(repositoryFiles)
		if collectError != nil {
			return RepositoryOwnership{}, collectError
		}
		uncovered := UncoveredPaths(codeOwners.Rules, codeFiles)
		verdict.Paths = buildPathOwners(codeOwners.Rules, uncovered)
		verdict.Status = StatusOwned
		if len(uncovered) > 0 {
			verdict.Status = StatusPartial
		}
	}

	if verdict.Status == StatusOwned {
		return verdict, nil
	}

	authors, authorsError := topAuthors(executionContext, service.gitExecutor, record.Path, authorLimit, employees.namesFor(organizationOf(record.Slug)))
	if authorsError != nil {
		service.logger.Debug(authorsUnavailableLogMessageConstant, zap.String(logFieldRepositoryConstant, verdict.Repository), zap.Error(authorsError))
	}
	verdict.Authors = authors
	return verdict, nil
}

// buildPathOwners merges rules and uncovered locations, "/" first, then by depth, then lexically.
func buildPathOwners(rules map[string][]string, uncovered []string) []PathOwners {
	locations := make([]string, 0, len(rules)+len(uncovered))
	for pattern := range rules {
		locations = append(locations, pattern)
	}
	for _, location := range uncovered {
		if _, exists := rules[location]; !exists {
			locations = append(locations, location)
		}
	}

	sort.Slice(locations, func(leftIndex int, rightIndex int) bool {
		left, right := locations[leftIndex], locations[rightIndex]
		if (left == rootPatternConstant) != (right == rootPatternConstant) {
			return left == rootPatternConstant
		}
		if leftDepth, rightDepth := pathDepth(left), pathDepth(right); leftDepth != rightDepth {
			return leftDepth < rightDepth
		}
		return left < right
	})

	pathOwners := make([]PathOwners, 0, len(locations))
	for _, location := range locations {
		pathOwners = append(pathOwners, PathOwners{Path: location, Owners: rules[location]})
	}
	return pathOwners
}

func pathDepth(location string) int {
	depth := 0
	for _, segment := range strings.Split(strings.Trim(location, rootPatternConstant), rootPatternConstant) {
		if len(segment) > 0 {
			depth++
		}
	}
	return depth
}
