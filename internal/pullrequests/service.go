package pullrequests

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/githubcli"
	"github.com/scottidler/git-tools/internal/report"
	"github.com/scottidler/git-tools/internal/repos/parallel"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	pullRequestNameTemplateConstant    = "%s (pr %d)"
	unknownAuthorConstant              = "Unknown"
	missingSlugLogMessageConstant      = "skipping repository without GitHub slug"
	logFieldPathConstant               = "path"
	collectRepositoriesFailureConstant = "collect repositories"
	missingCollectorMessageConstant    = "repository collector not configured"
	missingClientMessageConstant       = "github client not configured"
)

var (
	// ErrRepositoryCollectorNotConfigured indicates the service lacks a repository collector.
	ErrRepositoryCollectorNotConfigured = errors.New(missingCollectorMessageConstant)
	// ErrGitHubClientNotConfigured indicates the service lacks a pull request lister.
	ErrGitHubClientNotConfigured = errors.New(missingClientMessageConstant)
)

// PullRequestLister lists pull requests of one repository.
type PullRequestLister interface {
	ListPullRequests(executionContext context.Context, repository string, options githubcli.ListOptions) ([]githubcli.PullRequest, error)
}

// ServiceDependencies enumerates the collaborators of Service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Collector    shared.RepositoryCollector
	GitHubClient PullRequestLister
	Clock        shared.Clock
}

// StaleOptions configures one stale pull request report.
type StaleOptions struct {
	Roots       []string
	Days        int
	Limit       int
	Parallelism int
}

// Service ages open pull requests across discovered repositories.
type Service struct {
	logger       *zap.Logger
	collector    shared.RepositoryCollector
	githubClient PullRequestLister
	clock        shared.Clock
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Collector == nil {
		return nil, ErrRepositoryCollectorNotConfigured
	}
	if dependencies.GitHubClient == nil {
		return nil, ErrGitHubClientNotConfigured
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
		logger:       logger,
		collector:    dependencies.Collector,
		githubClient: dependencies.GitHubClient,
		clock:        clock,
	}, nil
}

// StalePullRequests returns open pull requests created at least options.Days ago.
// Repositories without a slug are skipped; repositories whose listing fails are logged and skipped.
func (service *Service) StalePullRequests(executionContext context.Context, options StaleOptions) ([]report.AgedItem, error) {
	if options.Days < 0 {
		return nil, report.ErrInvalidDays
	}

	records, collectError := service.collector.CollectRepositories(executionContext, options.Roots)
	if collectError != nil {
		return nil, errors.Wrap(collectError, collectRepositoriesFailureConstant)
	}

	slugged := make([]shared.RepositoryRecord, 0, len(records))
	for _, record := range records {
		if len(record.Slug) == 0 {
			service.logger.Debug(missingSlugLogMessageConstant, zap.String(logFieldPathConstant, record.Path))
			continue
		}
		slugged = append(slugged, record)
	}

	now := service.clock.Now()
	listOptions := githubcli.ListOptions{Limit: options.Limit}
	outcomes, executionError := parallel.Execute(executionContext, slugged, options.Parallelism, service.logger,
		func(workContext context.Context, record shared.RepositoryRecord) ([]report.AgedItem, error) {
			pullRequests, listError := service.githubClient.ListPullRequests(workContext, record.Slug, listOptions)
			if listError != nil {
				return nil, listError
			}
			var items []report.AgedItem
			for _, pullRequest := range pullRequests {
				ageDays := report.AgeInDays(now, pullRequest.CreatedAt)
				if ageDays < options.Days {
					continue
				}
				author := pullRequest.Author
				if len(author) == 0 {
					author = unknownAuthorConstant
				}
				items = append(items, report.AgedItem{
					Repository: record.Slug,
					Name:       fmt.Sprintf(pullRequestNameTemplateConstant, pullRequest.Title, pullRequest.Number),
					AgeDays:    ageDays,
					Author:     author,
				})
			}
			return items, nil
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
