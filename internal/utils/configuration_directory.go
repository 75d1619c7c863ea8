package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/gmux/internal/utils/path"
)

const (
	// ConfigurationDirectoryEnvironmentVariable overrides the configuration directory.
	ConfigurationDirectoryEnvironmentVariable = "GMUX_CONFIG_DIR"
	// PullRequestTemplateFileName is the template file created by init and read by pr.
	PullRequestTemplateFileName = "pr_template.md"
	// ConfigurationFileName is the file written by setup.
	ConfigurationFileName = "config.yaml"

	defaultConfigurationDirectoryConstant = "~/.gmux"
	homeDirectoryUnavailableMessage       = "unable to resolve the home directory for the configuration directory"
)

// ErrConfigurationDirectoryUnavailable indicates neither the override nor the home directory could be resolved.
var ErrConfigurationDirectoryUnavailable = errors.New(homeDirectoryUnavailableMessage)

// EnvironmentLookup resolves an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ConfigurationDirectoryResolver locates the gmux configuration directory.
type ConfigurationDirectoryResolver struct {
	environmentLookup EnvironmentLookup
	homeExpander      *pathutils.HomeExpander
}

// NewConfigurationDirectoryResolver constructs a resolver over the process environment and home directory.
func NewConfigurationDirectoryResolver() *ConfigurationDirectoryResolver {
	return NewConfigurationDirectoryResolverWith(os.LookupEnv, pathutils.NewHomeExpander())
}

// NewConfigurationDirectoryResolverWith constructs a resolver with explicit collaborators.
func NewConfigurationDirectoryResolverWith(environmentLookup EnvironmentLookup, homeExpander *pathutils.HomeExpander) *ConfigurationDirectoryResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &ConfigurationDirectoryResolver{environmentLookup: environmentLookup, homeExpander: homeExpander}
}

// Resolve returns $GMUX_CONFIG_DIR when set, otherwise ~/.gmux. A leading tilde in the override is expanded.
func (resolver *ConfigurationDirectoryResolver) Resolve() (string, error) {
	if overrideValue, overrideSet := resolver.environmentLookup(ConfigurationDirectoryEnvironmentVariable); overrideSet {
		trimmedOverride := strings.TrimSpace(overrideValue)
		if len(trimmedOverride) > 0 {
			return filepath.Clean(resolver.homeExpander.Expand(trimmedOverride)), nil
		}
	}

	expanded := resolver.homeExpander.Expand(defaultConfigurationDirectoryConstant)
	if expanded == defaultConfigurationDirectoryConstant {
		return "", ErrConfigurationDirectoryUnavailable
	}
	return expanded, nil
}

// ResolveFile returns the path of fileName inside the configuration directory.
func (resolver *ConfigurationDirectoryResolver) ResolveFile(fileName string) (string, error) {
	directory, resolveError := resolver.Resolve()
	if resolveError != nil {
		return "", resolveError
	}
	return filepath.Join(directory, fileName), nil
}
