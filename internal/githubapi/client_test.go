package githubapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/internal/githubapi"
)

const (
	testOwnerConstant          = "acme"
	testTokenConstant          = "secret-token"
	organizationPathConstant   = "/orgs/acme/repos"
	userPathConstant           = "/users/acme/repos"
	firstPageBodyConstant      = `[{"full_name":"acme/zeta","archived":false},{"full_name":"acme/legacy","archived":true}]`
	secondPageBodyConstant     = `[{"full_name":"acme/alpha","archived":false}]`
	linkHeaderTemplateConstant = `<%s%s?page=2&per_page=100>; rel="next", <%s%s?page=2&per_page=100>; rel="last"`
)

type recordedRequest struct {
	path          string
	query         string
	authorization string
}

func newRepositoryServer(testInstance *testing.T, path string) (*httptest.Server, *[]recordedRequest) {
	testInstance.Helper()
	var (
		mutex    sync.Mutex
		requests []recordedRequest
	)
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		mutex.Lock()
		requests = append(requests, recordedRequest{
			path:          request.URL.Path,
			query:         request.URL.RawQuery,
			authorization: request.Header.Get("Authorization"),
		})
		mutex.Unlock()

		if request.URL.Path != path {
			http.NotFound(responseWriter, request)
			return
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		if request.URL.Query().Get("page") == "2" {
			_, _ = responseWriter.Write([]byte(secondPageBodyConstant))
			return
		}
		responseWriter.Header().Set("Link", fmt.Sprintf(linkHeaderTemplateConstant, server.URL, path, server.URL, path))
		_, _ = responseWriter.Write([]byte(firstPageBodyConstant))
	}))
	testInstance.Cleanup(server.Close)
	return server, &requests
}

func TestListRepositoryNames(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		path                  string
		options               githubapi.ListOptions
		token                 string
		expectedNames         []string
		expectedAuthorization string
	}{
		{
			name:                  "organization_without_archived",
			path:                  organizationPathConstant,
			options:               githubapi.ListOptions{OwnerType: githubapi.OrganizationOwnerType},
			token:                 testTokenConstant,
			expectedNames:         []string{"acme/alpha", "acme/zeta"},
			expectedAuthorization: "Bearer " + testTokenConstant,
		},
		{
			name:          "user_with_archived_unauthenticated",
			path:          userPathConstant,
			options:       githubapi.ListOptions{OwnerType: githubapi.UserOwnerType, IncludeArchived: true},
			expectedNames: []string{"acme/alpha", "acme/legacy", "acme/zeta"},
		},
		{
			name:                  "owner_type_defaults_to_organization",
			path:                  organizationPathConstant,
			token:                 testTokenConstant,
			expectedNames:         []string{"acme/alpha", "acme/zeta"},
			expectedAuthorization: "Bearer " + testTokenConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			server, requests := newRepositoryServer(testInstance, testCase.path)
			client, clientError := githubapi.NewClient(nil, githubapi.ClientConfiguration{
				BaseURL:    server.URL,
				Token:      testCase.token,
				HTTPClient: server.Client(),
			})
			require.NoError(testInstance, clientError)

			names, listError := client.ListRepositoryNames(context.Background(), testOwnerConstant, testCase.options)
			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedNames, names)

			require.Len(testInstance, *requests, 2)
			for _, request := range *requests {
				require.Equal(testInstance, testCase.path, request.path)
				require.Contains(testInstance, request.query, "per_page=100")
				require.Equal(testInstance, testCase.expectedAuthorization, request.authorization)
			}
			require.Contains(testInstance, (*requests)[1].query, "page=2")
		})
	}
}

func TestListRepositoryNamesFailures(testInstance *testing.T) {
	server, _ := newRepositoryServer(testInstance, organizationPathConstant)
	client, clientError := githubapi.NewClient(nil, githubapi.ClientConfiguration{BaseURL: server.URL + "/", HTTPClient: server.Client()})
	require.NoError(testInstance, clientError)

	_, listError := client.ListRepositoryNames(context.Background(), " ", githubapi.ListOptions{})
	require.ErrorIs(testInstance, listError, githubapi.ErrOwnerRequired)

	_, listError = client.ListRepositoryNames(context.Background(), testOwnerConstant, githubapi.ListOptions{OwnerType: githubapi.UserOwnerType})
	require.Error(testInstance, listError)
	require.ErrorContains(testInstance, listError, "list repositories of user acme")

	_, listError = client.ListRepositoryNames(context.Background(), testOwnerConstant, githubapi.ListOptions{OwnerType: "team"})
	require.ErrorContains(testInstance, listError, `owner type "team" is not supported`)
}

func TestParseOwnerType(testInstance *testing.T) {
	testCases := []struct {
		input       string
		expected    githubapi.OwnerType
		expectError bool
	}{
		{input: "org", expected: githubapi.OrganizationOwnerType},
		{input: " USER ", expected: githubapi.UserOwnerType},
		{input: "", expectError: true},
		{input: "enterprise", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.input, func(testInstance *testing.T) {
			ownerType, parseError := githubapi.ParseOwnerType(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, ownerType)
		})
	}
}
