package organization

import (
	"strings"

	"github.com/temirov/gmux/internal/githubcli"
)

const (
	tokenConfigurationKeyConstant        = "token"
	defaultOwnerConfigurationKeyConstant = "default_org"
	perPageConfigurationKeyConstant      = "per_page"
	sortConfigurationKeyConstant         = "sort"
	directionConfigurationKeyConstant    = "direction"
	configurationKeySeparatorConstant    = "."
	defaultSortConstant                  = "updated"
	defaultDirectionConstant             = "desc"
)

// CommandConfiguration captures the GitHub settings used by the list, clone, and setup commands.
type CommandConfiguration struct {
	Token        string `mapstructure:"token" yaml:"token"`
	DefaultOwner string `mapstructure:"default_org" yaml:"default_org"`
	PerPage      int    `mapstructure:"per_page" yaml:"per_page"`
	Sort         string `mapstructure:"sort" yaml:"sort"`
	Direction    string `mapstructure:"direction" yaml:"direction"`
}

// DefaultCommandConfiguration returns the baseline GitHub settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PerPage:   githubcli.DefaultPerPage,
		Sort:      defaultSortConstant,
		Direction: defaultDirectionConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + tokenConfigurationKeyConstant:        defaults.Token,
		prefix + configurationKeySeparatorConstant + defaultOwnerConfigurationKeyConstant: defaults.DefaultOwner,
		prefix + configurationKeySeparatorConstant + perPageConfigurationKeyConstant:      defaults.PerPage,
		prefix + configurationKeySeparatorConstant + sortConfigurationKeyConstant:         defaults.Sort,
		prefix + configurationKeySeparatorConstant + directionConfigurationKeyConstant:    defaults.Direction,
	}
}

// Sanitize trims values and restores defaults for blank or non-positive entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.DefaultOwner = strings.TrimSpace(configuration.DefaultOwner)
	sanitized.Sort = strings.TrimSpace(configuration.Sort)
	sanitized.Direction = strings.TrimSpace(configuration.Direction)
	if sanitized.PerPage <= 0 {
		sanitized.PerPage = defaults.PerPage
	}
	if len(sanitized.Sort) == 0 {
		sanitized.Sort = defaults.Sort
	}
	if len(sanitized.Direction) == 0 {
		sanitized.Direction = defaults.Direction
	}
	return sanitized
}

// ListOptions converts the configuration into GitHub listing options.
func (configuration CommandConfiguration) ListOptions() githubcli.ListOptions {
	return githubcli.ListOptions{
		PerPage:   configuration.PerPage,
		Sort:      configuration.Sort,
		Direction: configuration.Direction,
	}
}
