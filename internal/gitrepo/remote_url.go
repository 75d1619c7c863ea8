package gitrepo

import (
	"fmt"
	"strings"
)

const (
	schemeSeparatorConstant             = "://"
	userDelimiterConstant               = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	gitPlusSSHSchemeConstant            = "git+ssh"
	fileSchemeConstant                  = "file"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "remote url must contain owner and repository segments"
	minimumPathSegmentCountConstant     = 2
)

// RemoteProtocol names the transport a remote URL was written for.
type RemoteProtocol string

// Remote protocols recognized by ParseRemoteURL.
const (
	RemoteProtocolLocal RemoteProtocol = RemoteProtocol("")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolSCP   RemoteProtocol = RemoteProtocol("scp")
	RemoteProtocolOther RemoteProtocol = RemoteProtocol("other")
)

// RemoteURL is the owner and repository addressed by a git remote.
// Host is empty for remotes that do not name one (local paths). For SSH remotes the host may
// be an ssh_config alias rather than a resolvable name.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// ServesWeb reports whether Host is the host of a web front end, which holds only for http(s) remotes.
func (remoteURL RemoteURL) ServesWeb() bool {
	return remoteURL.Protocol == RemoteProtocolHTTP || remoteURL.Protocol == RemoteProtocolHTTPS
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

// ParseRemoteURL extracts owner and repository from a remote URL. The owner is the
// second-to-last path segment and the repository is the last one without its .git suffix.
// https://host/owner/repo.git, ssh://git@host/owner/repo.git and git@host:owner/repo.git
// are all accepted.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	protocol, host, path := splitHostAndPath(trimmedRemote)

	segments := make([]string, 0)
	for _, segment := range strings.Split(path, pathSeparatorConstant) {
		if len(segment) > 0 {
			segments = append(segments, segment)
		}
	}
	if len(segments) < minimumPathSegmentCountConstant {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	owner := segments[len(segments)-2]
	repository := strings.TrimSuffix(segments[len(segments)-1], gitSuffixConstant)
	if len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

func splitHostAndPath(remote string) (RemoteProtocol, string, string) {
	if schemeIndex := strings.Index(remote, schemeSeparatorConstant); schemeIndex >= 0 {
		protocol := protocolForScheme(remote[:schemeIndex])
		authorityAndPath := remote[schemeIndex+len(schemeSeparatorConstant):]
		authority := authorityAndPath
		path := ""
		if slashIndex := strings.Index(authorityAndPath, pathSeparatorConstant); slashIndex >= 0 {
			authority = authorityAndPath[:slashIndex]
			path = authorityAndPath[slashIndex+1:]
		}
		return protocol, normalizeHost(authority), path
	}

	colonIndex := strings.Index(remote, scpPathDelimiterConstant)
	slashIndex := strings.Index(remote, pathSeparatorConstant)
	if colonIndex > 0 && (slashIndex == -1 || colonIndex < slashIndex) {
		return RemoteProtocolSCP, normalizeHost(remote[:colonIndex]), remote[colonIndex+1:]
	}

	return RemoteProtocolLocal, "", remote
}

func protocolForScheme(scheme string) RemoteProtocol {
	switch strings.ToLower(scheme) {
	case string(RemoteProtocolHTTP):
		return RemoteProtocolHTTP
	case string(RemoteProtocolHTTPS):
		return RemoteProtocolHTTPS
	case string(RemoteProtocolSSH), gitPlusSSHSchemeConstant:
		return RemoteProtocolSSH
	case fileSchemeConstant:
		return RemoteProtocolLocal
	}
	return RemoteProtocolOther
}

func normalizeHost(authority string) string {
	if userIndex := strings.LastIndex(authority, userDelimiterConstant); userIndex >= 0 {
		authority = authority[userIndex+1:]
	}
	if portIndex := strings.Index(authority, scpPathDelimiterConstant); portIndex >= 0 {
		authority = authority[:portIndex]
	}
	return authority
}
