package branches

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/report"
	"github.com/scottidler/git-tools/internal/repos/parallel"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	gitForEachRefSubcommandConstant     = "for-each-ref"
	gitSortByCommitterDateFlagConstant  = "--sort=-committerdate"
	gitBranchFormatFlagConstant         = "--format=%(committerdate:short) %(refname:short) %(committername)"
	committerDateLayoutConstant         = "2006-01-02"
	symbolicHeadNameConstant            = "HEAD"
	remotePrefixSeparatorConstant       = "/"
	minimumBranchFieldCountConstant     = 3
	authorSeparatorConstant             = " "
	fetchFailedLogMessageConstant       = "fetch failed; listing cached refs"
	unparsableBranchLogMessageConstant  = "skipping unparsable branch line"
	logFieldRepositoryConstant          = "repository"
	logFieldLineConstant                = "line"
	listBranchesFailureTemplateConstant = "list branches under %s"
	collectRepositoriesFailureConstant  = "collect repositories"
	missingCollectorMessageConstant     = "repository collector not configured"
	missingExecutorMessageConstant      = "git executor not configured"
	missingManagerMessageConstant       = "git repository manager not configured"
)

var (
	// ErrRepositoryCollectorNotConfigured indicates the service lacks a repository collector.
	ErrRepositoryCollectorNotConfigured = errors.New(missingCollectorMessageConstant)
	// ErrGitExecutorNotConfigured indicates the service lacks a git executor.
	ErrGitExecutorNotConfigured = errors.New(missingExecutorMessageConstant)
	// ErrGitManagerNotConfigured indicates the service lacks a repository manager.
	ErrGitManagerNotConfigured = errors.New(missingManagerMessageConstant)
)

// ServiceDependencies enumerates the collaborators of Service.
type ServiceDependencies struct {
	Logger      *zap.Logger
	Collector   shared.RepositoryCollector
	GitExecutor shared.GitExecutor
	GitManager  shared.GitRepositoryManager
	Clock       shared.Clock
}

// StaleOptions configures one stale-branch report.
type StaleOptions struct {
	Roots       []string
	Days        int
	Ref         string
	RemoteName  string
	Fetch       bool
	Parallelism int
}

// Service ages remote branches across discovered repositories.
type Service struct {
	logger      *zap.Logger
	collector   shared.RepositoryCollector
	gitExecutor shared.GitExecutor
	gitManager  shared.GitRepositoryManager
	clock       shared.Clock
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Collector == nil {
		return nil, ErrRepositoryCollectorNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.GitManager == nil {
		return nil, ErrGitManagerNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	return &Service{
		logger:      logger,
		collector:   dependencies.Collector,
		gitExecutor: dependencies.GitExecutor,
		gitManager:  dependencies.GitManager,
		clock:       clock,
	}, nil
}

// StaleBranches returns every branch at least options.Days old, grouped in discovery order.
// Repositories whose listing fails are logged and skipped.
func (service *Service) StaleBranches(executionContext context.Context, options StaleOptions) ([]report.AgedItem, error) {
	if options.Days < 0 {
		return nil, report.ErrInvalidDays
	}
	ref := strings.TrimSpace(options.Ref)
	if len(ref) == 0 {
		ref = defaultRefConstant
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = shared.OriginRemoteNameConstant
	}

	records, collectError := service.collector.CollectRepositories(executionContext, options.Roots)
	if collectError != nil {
		return nil, errors.Wrap(collectError, collectRepositoriesFailureConstant)
	}

	now := service.clock.Now()
	outcomes, executionError := parallel.Execute(executionContext, records, options.Parallelism, service.logger,
		func(workContext context.Context, record shared.RepositoryRecord) ([]report.AgedItem, error) {
			if options.Fetch {
				if fetchError := service.gitManager.FetchPrune(workContext, record.Path, remoteName); fetchError != nil {
					service.logger.Warn(fetchFailedLogMessageConstant, zap.String(logFieldRepositoryConstant, record.DisplayName()), zap.Error(fetchError))
				}
			}
			return service.listStaleBranches(workContext, record, ref, remoteName, now, options.Days)
		})
	if executionError != nil {
		return nil, executionError
	}

	var items []report.AgedItem
	for _, outcome := range outcomes {
		items = append(items, outcome.Value...)
	}
	return items, nil
}

func (service *Service) listStaleBranches(executionContext context.Context, record shared.RepositoryRecord, ref string, remoteName string, now time.Time, days int) ([]report.AgedItem, error) {
	result, executionError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitForEachRefSubcommandConstant, gitSortByCommitterDateFlagConstant, ref, gitBranchFormatFlagConstant},
		WorkingDirectory: record.Path,
	})
	if executionError != nil {
		return nil, errors.Wrapf(executionError, listBranchesFailureTemplateConstant, ref)
	}

	remotePrefix := remoteName + remotePrefixSeparatorConstant
	var items []report.AgedItem
	for _, line := range strings.Split(result.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		branch, parsed := parseBranchLine(trimmedLine, remotePrefix)
		if !parsed {
			service.logger.Debug(unparsableBranchLogMessageConstant, zap.String(logFieldRepositoryConstant, record.DisplayName()), zap.String(logFieldLineConstant, trimmedLine))
			continue
		}
		if branch.name == symbolicHeadNameConstant || branch.name == remoteName {
			continue
		}
		ageDays := report.AgeInDays(now, branch.committed)
		if ageDays < days {
			continue
		}
		items = append(items, report.AgedItem{
			Repository: record.DisplayName(),
			Name:       branch.name,
			AgeDays:    ageDays,
			Author:     branch.author,
		})
	}
	return items, nil
}

type branchLine struct {
	committed time.Time
	name      string
	author    string
}

// parseBranchLine reads "<YYYY-MM-DD> <refname> <committer name...>"; the date is taken at 00:00 UTC.
func parseBranchLine(line string, remotePrefix string) (branchLine, bool) {
	fields := strings.Fields(line)
	if len(fields) < minimumBranchFieldCountConstant {
		return branchLine{}, false
	}
	committed, parseError := time.ParseInLocation(committerDateLayoutConstant, fields[0], time.UTC)
	if parseError != nil {
		return branchLine{}, false
	}
	return branchLine{
		committed: committed,
		name:      strings.TrimPrefix(fields[1], remotePrefix),
		author:    strings.Join(fields[2:], authorSeparatorConstant),
	}, true
}
