// Package gitrepo contains helpers for interrogating Git repositories.
//
// It parses remote URLs into org/repo slugs, exposes RepositoryManager for
// remote lookups, top-level resolution and fetching, and provides
// SlugResolver, which derives the slug of a local clone from its origin remote.
package gitrepo
