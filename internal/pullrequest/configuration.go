package pullrequest

import (
	"strings"

	"github.com/temirov/gmux/internal/gitrepo"
)

const (
	templatePathConfigurationKeyConstant = "template_path"
	assumeYesConfigurationKeyConstant    = "assume_yes"
	dryRunConfigurationKeyConstant       = "dry_run"
	remoteConfigurationKeyConstant       = "remote"
	webHostConfigurationKeyConstant      = "web_host"
	configurationKeySeparatorConstant    = "."
)

// CommandConfiguration captures persisted settings for the pr command.
type CommandConfiguration struct {
	TemplatePath string `mapstructure:"template_path"`
	AssumeYes    bool   `mapstructure:"assume_yes"`
	DryRun       bool   `mapstructure:"dry_run"`
	RemoteName   string `mapstructure:"remote"`
	WebHost      string `mapstructure:"web_host"`
}

// DefaultCommandConfiguration returns the baseline pr settings. An empty template path selects the
// template inside the configuration directory. WebHost is used for remotes reached over SSH.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RemoteName: gitrepo.DefaultRemoteName, WebHost: DefaultWebHost}
}

// DefaultConfigurationValues exposes the defaults as viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + templatePathConfigurationKeyConstant: defaults.TemplatePath,
		prefix + configurationKeySeparatorConstant + assumeYesConfigurationKeyConstant:    defaults.AssumeYes,
		prefix + configurationKeySeparatorConstant + dryRunConfigurationKeyConstant:       defaults.DryRun,
		prefix + configurationKeySeparatorConstant + remoteConfigurationKeyConstant:       defaults.RemoteName,
		prefix + configurationKeySeparatorConstant + webHostConfigurationKeyConstant:      defaults.WebHost,
	}
}

// Sanitize trims values and restores the default remote and web host when blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.TemplatePath = strings.TrimSpace(configuration.TemplatePath)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = gitrepo.DefaultRemoteName
	}
	sanitized.WebHost = strings.TrimSpace(configuration.WebHost)
	if len(sanitized.WebHost) == 0 {
		sanitized.WebHost = DefaultWebHost
	}
	return sanitized
}
