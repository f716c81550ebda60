// Package clone places GitHub repositories at a predictable path beneath a clone root.
//
// A repospec is either org/repo, which is joined onto the configured remote and its
// fallbacks, or a full remote URL. Existing clones are fetched and fast-forwarded
// instead of cloned again, and the resulting absolute path is printed so a shell
// wrapper can change directory into it.
package clone
