package multiexec

import (
	"strings"

	"github.com/temirov/gmux/internal/gitrepo"
)

// CommandConfiguration captures settings shared by the cmd, git, and status commands.
type CommandConfiguration struct {
	RemoteName string `mapstructure:"remote"`
}

// DefaultCommandConfiguration returns the baseline settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RemoteName: gitrepo.DefaultRemoteName}
}

// Sanitize trims values and restores the default remote when blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = gitrepo.DefaultRemoteName
	}
	return sanitized
}
