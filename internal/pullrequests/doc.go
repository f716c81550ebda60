// Package pullrequests reports open pull requests that have been waiting longer than a threshold,
// across every discovered repository with a GitHub slug.
package pullrequests
