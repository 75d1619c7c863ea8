package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/multiexec"
	"github.com/temirov/gmux/internal/organization"
	"github.com/temirov/gmux/internal/pullrequest"
	"github.com/temirov/gmux/internal/setup"
	"github.com/temirov/gmux/internal/utils"
	flagutils "github.com/temirov/gmux/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gmux"
	applicationShortDescriptionConstant     = "Run commands across every repository in the current directory"
	applicationLongDescriptionConstant      = "gmux fans a shell command, a git command, or a pull request draft out to each immediate subdirectory of the working directory, optionally narrowed by a regular expression on directory names."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	githubConfigurationKeyConstant          = "github"
	pullRequestConfigurationKeyConstant     = "pull_request"
	environmentPrefixConstant               = "GMUX"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	defaultConfigurationSearchPathConstant  = "."
	versionTemplateConstant                 = "gmux version: {{.Version}}\n"
	developmentVersionConstant              = "dev"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration    `mapstructure:"common"`
	GitHub      organization.CommandConfiguration `mapstructure:"github"`
	PullRequest pullrequest.CommandConfiguration  `mapstructure:"pull_request"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	configurationDirectory *utils.ConfigurationDirectoryResolver
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	versionResolver        func() string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(utils.NewConfigurationDirectoryResolver())
}

func newApplication(configurationDirectory *utils.ConfigurationDirectoryResolver) *Application {
	embeddedConfiguration, embeddedType := EmbeddedDefaultConfiguration()
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
			Name:              configurationNameConstant,
			Type:              embeddedType,
			EnvironmentPrefix: environmentPrefixConstant,
			SearchPaths:       configurationSearchPaths(configurationDirectory),
			EmbeddedDefaults:  embeddedConfiguration,
		}),
		configurationDirectory: configurationDirectory,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        resolveBuildVersion,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       application.versionResolver(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.SetContext(context.Background())

	defaults := DefaultApplicationConfiguration()
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.ChoiceUsage(defaults.Common.LogLevel, utils.SupportedLogLevels(), logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.ChoiceUsage(defaults.Common.LogFormat, utils.SupportedLogFormats(), logFormatFlagUsageConstant))

	for _, subcommand := range application.buildSubcommands() {
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) buildSubcommands() []*cobra.Command {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	workingDirectory := ""
	if resolvedDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		workingDirectory = resolvedDirectory
	}

	initBuilder := setup.InitCommandBuilder{ConfigurationDirectory: application.configurationDirectory}
	setupBuilder := setup.SetupCommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() organization.CommandConfiguration {
			return application.configuration.GitHub
		},
		ConfigurationDirectory: application.configurationDirectory,
	}
	multiRepositoryBuilder := multiexec.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() multiexec.CommandConfiguration {
			return multiexec.CommandConfiguration{RemoteName: application.configuration.PullRequest.RemoteName}
		},
		WorkingDirectory: workingDirectory,
	}
	pullRequestBuilder := pullrequest.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() pullrequest.CommandConfiguration {
			return application.configuration.PullRequest
		},
		ConfigurationDirectory: application.configurationDirectory,
		WorkingDirectory:       workingDirectory,
	}
	organizationBuilder := organization.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() organization.CommandConfiguration {
			return application.configuration.GitHub
		},
		WorkingDirectory: workingDirectory,
	}

	builders := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{name: "init", build: initBuilder.Build},
		{name: "setup", build: setupBuilder.Build},
		{name: "cmd", build: multiRepositoryBuilder.BuildShellCommand},
		{name: "git", build: multiRepositoryBuilder.BuildGitCommand},
		{name: "pr", build: pullRequestBuilder.Build},
		{name: "status", build: multiRepositoryBuilder.BuildStatusCommand},
		{name: "clone", build: organizationBuilder.BuildCloneCommand},
		{name: "list", build: organizationBuilder.BuildListCommand},
	}

	subcommands := make([]*cobra.Command, 0, len(builders))
	for _, builder := range builders {
		subcommand, buildError := builder.build()
		if buildError != nil {
			application.logger.Error(fmt.Errorf(commandBuildErrorTemplateConstant, builder.name, buildError).Error())
			continue
		}
		subcommands = append(subcommands, subcommand)
	}
	return subcommands
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	if validationError := application.validateLoggingFlags(); validationError != nil {
		return validationError
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, DefaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration
	application.configuration.GitHub = application.configuration.GitHub.Sanitize()
	application.configuration.PullRequest = application.configuration.PullRequest.Sanitize()

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil && len(application.configurationMetadata.ConfigFileUsed) > 0 {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) validateLoggingFlags() error {
	if validationError := flagutils.ValidateChoice(logLevelFlagNameConstant, application.logLevelFlagValue, utils.SupportedLogLevels()); validationError != nil {
		return validationError
	}
	return flagutils.ValidateChoice(logFormatFlagNameConstant, application.logFormatFlagValue, utils.SupportedLogFormats())
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

func configurationSearchPaths(configurationDirectory *utils.ConfigurationDirectoryResolver) []string {
	searchPaths := make([]string, 0, 2)
	if configurationDirectory != nil {
		if resolvedDirectory, resolveError := configurationDirectory.Resolve(); resolveError == nil {
			searchPaths = append(searchPaths, resolvedDirectory)
		}
	}
	return append(searchPaths, defaultConfigurationSearchPathConstant)
}

func resolveBuildVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == "(devel)" {
		return developmentVersionConstant
	}
	return moduleVersion
}
