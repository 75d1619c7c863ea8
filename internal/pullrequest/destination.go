package pullrequest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/temirov/gmux/internal/gitrepo"
)

// DefaultWebHost serves compare pages for remotes that do not name a web host.
const DefaultWebHost = "github.com"

const (
	compareURLTemplateConstant  = "https://%s/%s/%s/compare/%s...%s?expand=1&title=%s&body=%s"
	queryEscapedSpaceConstant   = "+"
	percentEncodedSpaceConstant = "%20"
)

// BuildCompareURL returns the GitHub compare page that opens a pull request draft from headBranch into
// baseBranch with the title and body prefilled. Only http(s) remotes contribute their host; SSH, scp-style
// and local remotes resolve to webHost, or to DefaultWebHost when webHost is blank.
func BuildCompareURL(remote gitrepo.RemoteURL, webHost string, baseBranch string, headBranch string, title string, body string) string {
	return fmt.Sprintf(
		compareURLTemplateConstant,
		resolveWebHost(remote, webHost),
		remote.Owner,
		remote.Repository,
		baseBranch,
		headBranch,
		encodeQueryValue(title),
		encodeQueryValue(body),
	)
}

// encodeQueryValue percent-encodes everything except unreserved characters, spaces included.
func encodeQueryValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), queryEscapedSpaceConstant, percentEncodedSpaceConstant)
}

func resolveWebHost(remote gitrepo.RemoteURL, webHost string) string {
	remoteHost := strings.TrimSpace(remote.Host)
	if remote.ServesWeb() && len(remoteHost) > 0 {
		return remoteHost
	}
	configuredHost := strings.TrimSpace(webHost)
	if len(configuredHost) == 0 {
		return DefaultWebHost
	}
	return configuredHost
}
