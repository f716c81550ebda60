package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	gitProtocolPrefixConstant           = "git://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitUserPrefixConstant               = "git@"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	slugTemplateConstant                = "%s/%s"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// Slug renders the owner/repository pair.
func (remote RemoteURL) Slug() string {
	return fmt.Sprintf(slugTemplateConstant, remote.Owner, remote.Repository)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseSlug extracts the canonical org/repo slug from a remote URL.
// The boolean is false for every input that is not a recognised remote shape.
func ParseSlug(remote string) (string, bool) {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", false
	}
	return parsedRemote.Slug(), true
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Scheme-less input is read as host/owner/repository over HTTPS.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolSSH, stripUserInformation(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolHTTPS, stripUserInformation(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, RemoteProtocolHTTP, stripUserInformation(strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSCPRemote(remote, strings.TrimPrefix(trimmedRemote, gitUserPrefixConstant))
	case strings.Contains(trimmedRemote, sshPathDelimiterConstant), strings.Contains(trimmedRemote, sshUserDelimiterConstant):
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	default:
		return parseHierarchicalRemote(remote, RemoteProtocolHTTPS, trimmedRemote)
	}
}

// parseSCPRemote handles host:owner/repository after the git@ prefix.
func parseSCPRemote(input string, hostAndPath string) (RemoteURL, error) {
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:pathSplitIndex]
	owner, repository, parseError := splitOwnerAndRepository(input, hostAndPath[pathSplitIndex+1:])
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

// parseHierarchicalRemote handles host[:port]/owner/repository.
func parseHierarchicalRemote(input string, protocol RemoteProtocol, hostAndPath string) (RemoteURL, error) {
	hostSplitIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if hostSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:hostSplitIndex]
	owner, repository, parseError := splitOwnerAndRepository(input, hostAndPath[hostSplitIndex+1:])
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

func stripUserInformation(hostAndPath string) string {
	hostSplitIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	authority := hostAndPath
	if hostSplitIndex >= 0 {
		authority = hostAndPath[:hostSplitIndex]
	}
	userSplitIndex := strings.LastIndex(authority, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return hostAndPath
	}
	return hostAndPath[userSplitIndex+1:]
}

func splitOwnerAndRepository(input string, path string) (string, string, error) {
	segments := strings.Split(strings.TrimSuffix(path, gitSuffixConstant), pathSeparatorConstant)
	if len(segments) != 2 || len(segments[0]) == 0 || len(segments[1]) == 0 {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return segments[0], segments[1], nil
}

// JoinRemoteBase appends owner/repository.git to a remote base such as
// ssh://git@github.com or https://github.com.
func JoinRemoteBase(base string, owner string, repository string) string {
	trimmedBase := strings.TrimSuffix(strings.TrimSpace(base), pathSeparatorConstant)
	if strings.HasPrefix(trimmedBase, gitUserPrefixConstant) && !strings.Contains(trimmedBase, sshPathDelimiterConstant) {
		return fmt.Sprintf("%s%s%s/%s%s", trimmedBase, sshPathDelimiterConstant, owner, repository, gitSuffixConstant)
	}
	return fmt.Sprintf("%s%s%s/%s%s", trimmedBase, pathSeparatorConstant, owner, repository, gitSuffixConstant)
}
