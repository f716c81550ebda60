// Package owners audits CODEOWNERS coverage across discovered repositories.
//
// A repository is unowned when .github/CODEOWNERS is missing or has no entries,
// partial when some code files match no pattern, and owned otherwise. Repositories
// that are not owned also list their most active authors from git shortlog.
package owners
