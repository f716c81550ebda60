// Package githubcli lists pull requests through the gh command line tool so
// that git-tools inherits whatever authentication gh already has.
package githubcli
