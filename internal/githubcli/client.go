package githubcli

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/execshell"
)

const (
	pullRequestSubcommandConstant      = "pr"
	listSubcommandConstant             = "list"
	repositoryFlagConstant             = "--repo"
	limitFlagConstant                  = "--limit"
	jsonFlagConstant                   = "--json"
	pullRequestJSONFieldsConstant      = "number,title,createdAt,author"
	defaultPullRequestLimitConstant    = 100
	executorNotConfiguredConstant      = "github cli executor not configured"
	repositoryRequiredConstant         = "repository slug required"
	unexpectedResponseConstant         = "unexpected gh response"
	listPullRequestsTemplateConstant   = "gh pr list --repo %s"
	decodePullRequestsTemplateConstant = "decode pull requests of %s (%v)"
)

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredConstant)
	// ErrRepositoryRequired indicates a blank owner/repository slug.
	ErrRepositoryRequired = errors.New(repositoryRequiredConstant)
	// ErrUnexpectedResponse indicates gh printed something other than the requested JSON.
	ErrUnexpectedResponse = errors.New(unexpectedResponseConstant)
)

// PullRequest is one open pull request as reported by gh pr list.
type PullRequest struct {
	Number    int
	Title     string
	CreatedAt time.Time
	// Author is the login of the pull request author, empty for deleted accounts.
	Author string
}

// ListOptions bounds a pull request listing. A non-positive Limit means 100.
type ListOptions struct {
	Limit int
}

// GitHubCommandExecutor runs gh.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client reads GitHub data through the gh command line tool, reusing its authentication.
type Client struct {
	executor GitHubCommandExecutor
}

// NewClient constructs a Client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

type pullRequestResponse struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// ListPullRequests returns the open pull requests of repository, newest first as gh orders them.
func (client *Client) ListPullRequests(executionContext context.Context, repository string, options ListOptions) ([]PullRequest, error) {
	slug := strings.TrimSpace(repository)
	if len(slug) == 0 {
		return nil, ErrRepositoryRequired
	}

	limit := options.Limit
	if limit <= 0 {
		limit = defaultPullRequestLimitConstant
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			listSubcommandConstant,
			repositoryFlagConstant,
			slug,
			limitFlagConstant,
			strconv.Itoa(limit),
			jsonFlagConstant,
			pullRequestJSONFieldsConstant,
		},
	})
	if executionError != nil {
		return nil, errors.Wrapf(executionError, listPullRequestsTemplateConstant, slug)
	}

	var responses []pullRequestResponse
	if decodeError := json.Unmarshal([]byte(executionResult.StandardOutput), &responses); decodeError != nil {
		return nil, errors.Wrapf(ErrUnexpectedResponse, decodePullRequestsTemplateConstant, slug, decodeError)
	}

	pullRequests := make([]PullRequest, 0, len(responses))
	for _, response := range responses {
		pullRequest := PullRequest{Number: response.Number, Title: response.Title, CreatedAt: response.CreatedAt}
		if response.Author != nil {
			pullRequest.Author = response.Author.Login
		}
		pullRequests = append(pullRequests, pullRequest)
	}
	return pullRequests, nil
}
