package cli

import (
	_ "embed"

	"github.com/temirov/gmux/internal/organization"
	"github.com/temirov/gmux/internal/pullrequest"
	"github.com/temirov/gmux/internal/utils"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns the embedded default configuration data and type identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	duplicatedContent := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(duplicatedContent, embeddedDefaultConfigurationContent)
	return duplicatedContent, configurationTypeConstant
}

// DefaultApplicationConfiguration returns the configuration used when no file or environment overrides exist.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Common: ApplicationCommonConfiguration{
			LogLevel:  string(utils.LogLevelWarn),
			LogFormat: string(utils.LogFormatConsole),
		},
		GitHub:      organization.DefaultCommandConfiguration(),
		PullRequest: pullrequest.DefaultCommandConfiguration(),
	}
}

// DefaultConfigurationValues exposes DefaultApplicationConfiguration as viper keys.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultApplicationConfiguration()
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  defaults.Common.LogLevel,
		commonLogFormatConfigKeyConstant: defaults.Common.LogFormat,
	}
	for configurationKey, configurationValue := range organization.DefaultConfigurationValues(githubConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range pullrequest.DefaultConfigurationValues(pullRequestConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}
