// Package githubapi lists GitHub repositories through the REST API.
//
// It wraps go-github with oauth2 token authentication, follows pagination and
// distinguishes user from organization owners.
package githubapi
