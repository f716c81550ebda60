package githubapi

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v68/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	repositoriesPerPageConstant          = 100
	organizationRepositoryTypeConstant   = "all"
	userRepositoryTypeConstant           = "owner"
	baseURLSuffixConstant                = "/"
	ownerRequiredMessageConstant         = "owner must be provided"
	invalidBaseURLTemplateConstant       = "invalid GitHub API base URL %q"
	listRepositoriesFailureTemplate      = "list repositories of %s %s"
	repositoryPageLogMessageConstant     = "fetched repository page"
	logFieldOwnerConstant                = "owner"
	logFieldPageConstant                 = "page"
	logFieldRepositoryCountConstant      = "repositories"
	logFieldAuthenticatedConstant        = "authenticated"
	clientCreatedLogMessageConstant      = "github api client ready"
	unsupportedOwnerTypeTemplateConstant = "owner type %q is not supported"
)

// ErrOwnerRequired indicates a listing request without an owner.
var ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)

// ClientConfiguration describes how to reach the GitHub REST API.
// An empty BaseURL targets api.github.com; an empty Token makes unauthenticated requests.
type ClientConfiguration struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// ListOptions filters repository listings.
type ListOptions struct {
	OwnerType       OwnerType
	IncludeArchived bool
}

// Client lists repositories through go-github.
type Client struct {
	logger *zap.Logger
	github *github.Client
}

// NewClient constructs a Client, wrapping the HTTP client in an oauth2 transport when a token is set.
func NewClient(logger *zap.Logger, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := configuration.HTTPClient
	token := strings.TrimSpace(configuration.Token)
	if len(token) > 0 {
		tokenContext := context.Background()
		if httpClient != nil {
			tokenContext = context.WithValue(tokenContext, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(tokenContext, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	githubClient := github.NewClient(httpClient)
	baseURL := strings.TrimSpace(configuration.BaseURL)
	if len(baseURL) > 0 {
		if !strings.HasSuffix(baseURL, baseURLSuffixConstant) {
			baseURL += baseURLSuffixConstant
		}
		parsedURL, parseError := url.Parse(baseURL)
		if parseError != nil {
			return nil, errors.Wrapf(parseError, invalidBaseURLTemplateConstant, configuration.BaseURL)
		}
		githubClient.BaseURL = parsedURL
	}

	logger.Debug(clientCreatedLogMessageConstant, zap.Bool(logFieldAuthenticatedConstant, len(token) > 0))
	return &Client{logger: logger, github: githubClient}, nil
}

// ListRepositoryNames returns the sorted full names (owner/name) of every repository of owner,
// following pagination. Archived repositories are dropped unless options.IncludeArchived is set.
func (client *Client) ListRepositoryNames(executionContext context.Context, owner string, options ListOptions) ([]string, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return nil, ErrOwnerRequired
	}
	ownerType := options.OwnerType
	if len(ownerType) == 0 {
		ownerType = OrganizationOwnerType
	}

	var names []string
	page := 0
	for {
		repositories, response, listError := client.listPage(executionContext, trimmedOwner, ownerType, page)
		if listError != nil {
			return nil, errors.Wrapf(listError, listRepositoriesFailureTemplate, ownerType, trimmedOwner)
		}
		client.logger.Debug(repositoryPageLogMessageConstant,
			zap.String(logFieldOwnerConstant, trimmedOwner),
			zap.Int(logFieldPageConstant, page),
			zap.Int(logFieldRepositoryCountConstant, len(repositories)),
		)

		for _, repository := range repositories {
			if repository.GetArchived() && !options.IncludeArchived {
				continue
			}
			names = append(names, repository.GetFullName())
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		page = response.NextPage
	}

	sort.Strings(names)
	return names, nil
}

func (client *Client) listPage(executionContext context.Context, owner string, ownerType OwnerType, page int) ([]*github.Repository, *github.Response, error) {
	listOptions := github.ListOptions{PerPage: repositoriesPerPageConstant, Page: page}
	switch ownerType {
	case OrganizationOwnerType:
		return client.github.Repositories.ListByOrg(executionContext, owner, &github.RepositoryListByOrgOptions{
			Type:        organizationRepositoryTypeConstant,
			ListOptions: listOptions,
		})
	case UserOwnerType:
		return client.github.Repositories.ListByUser(executionContext, owner, &github.RepositoryListByUserOptions{
			Type:        userRepositoryTypeConstant,
			ListOptions: listOptions,
		})
	default:
		return nil, nil, errors.Newf(unsupportedOwnerTypeTemplateConstant, ownerType)
	}
}
