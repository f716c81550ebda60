// Package branches reports remote branches whose last commit is older than a threshold.
//
// CommandBuilder assembles the "branches" Cobra group, and Service discovers
// repositories, optionally fetches them, and ages every branch under a ref
// namespace through git for-each-ref.
package branches
