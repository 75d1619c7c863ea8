package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
)

// ConfigurationLoaderOptions describe where configuration is searched for and how environment
// variables map onto keys.
type ConfigurationLoaderOptions struct {
	Name              string
	Type              string
	EnvironmentPrefix string
	SearchPaths       []string
	EmbeddedDefaults  []byte
}

// ConfigurationLoader layers embedded defaults, explicit defaults, a configuration file, and environment
// variables through viper. Later layers win.
type ConfigurationLoader struct {
	options                ConfigurationLoaderOptions
	environmentKeyReplacer *strings.Replacer
}

// LoadedConfiguration reports which configuration file contributed values, if any.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader constructs a loader from options. Slices are copied.
func NewConfigurationLoader(options ConfigurationLoaderOptions) *ConfigurationLoader {
	copiedOptions := options
	copiedOptions.SearchPaths = append([]string(nil), options.SearchPaths...)
	copiedOptions.EmbeddedDefaults = append([]byte(nil), options.EmbeddedDefaults...)
	return &ConfigurationLoader{
		options:                copiedOptions,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// LoadConfiguration decodes the layered configuration into target. An explicit configurationFilePath must
// exist; otherwise a missing file in the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.options.Name)
	viperInstance.SetConfigType(loader.options.Type)

	if mergeError := loader.mergeEmbeddedDefaults(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}
	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}
	loader.bindEnvironment(viperInstance)

	if readError := loader.mergeConfigurationFile(viperInstance, configurationFilePath); readError != nil {
		return LoadedConfiguration{}, readError
	}

	if unmarshalError := viperInstance.Unmarshal(target, viper.DecodeHook(configurationDecodeHook())); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}
	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedDefaults(viperInstance *viper.Viper) error {
	if len(loader.options.EmbeddedDefaults) == 0 {
		return nil
	}
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.options.EmbeddedDefaults)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) bindEnvironment(viperInstance *viper.Viper) {
	viperInstance.SetEnvPrefix(loader.options.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()
}

func (loader *ConfigurationLoader) mergeConfigurationFile(viperInstance *viper.Viper, configurationFilePath string) error {
	if len(strings.TrimSpace(configurationFilePath)) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	} else {
		for _, searchPath := range loader.options.SearchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	readError := viperInstance.MergeInConfig()
	if readError == nil {
		return nil
	}
	var notFoundError viper.ConfigFileNotFoundError
	if errors.As(readError, &notFoundError) {
		return nil
	}
	return fmt.Errorf(configurationReadErrorTemplateConstant, readError)
}

func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
