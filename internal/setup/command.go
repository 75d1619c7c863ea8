package setup

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/browser"
	"github.com/temirov/gmux/internal/githubcli"
	"github.com/temirov/gmux/internal/organization"
	"github.com/temirov/gmux/internal/repos/dependencies"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
	"github.com/temirov/gmux/internal/utils"
)

const (
	initCommandUseConstant                = "init [directory]"
	initCommandShortDescriptionConstant   = "Create the default pull request template"
	initCommandLongDescriptionConstant    = "init writes pr_template.md with the default pull request template into the given directory, or into the configuration directory ($GMUX_CONFIG_DIR or ~/.gmux) when none is given. An existing template is left untouched."
	directoryFlagNameConstant             = "directory"
	directoryFlagUsageConstant            = "Directory that receives pr_template.md"
	templateCreatedTemplateConstant       = "Created PR template at %s"
	templateExistsTemplateConstant        = "PR template already exists at %s"
	setupCommandUseConstant               = "setup"
	setupCommandShortDescriptionConstant  = "Store a GitHub token and default organization"
	setupCommandLongDescriptionConstant   = "setup validates a GitHub personal access token with the GitHub CLI and saves it, together with the default organization used by list and clone, into the configuration file."
	tokenFlagNameConstant                 = "token"
	tokenFlagUsageConstant                = "GitHub personal access token"
	ownerFlagNameConstant                 = "org"
	ownerFlagUsageConstant                = "Default GitHub user or organization"
	missingTokenMessageConstant           = "No GitHub token found. Let's generate one!"
	tokenInstructionsMessageConstant      = "Generate a token with the repo and read:org scopes on the page below and paste it here."
	tokenPromptConstant                   = "Enter your GitHub Personal Access Token: "
	ownerPromptConstant                   = "Enter your default GitHub organization: "
	validatingTokenMessageConstant        = "Validating GitHub token..."
	authenticatedTemplateConstant         = "Authenticated as %s"
	savedMessageConstant                  = "Configuration saved successfully!"
	configurationLocationTemplateConstant = "Config location: %s"
	defaultOwnerTemplateConstant          = "Default organization: %s"
	tokenReadErrorTemplateConstant        = "unable to read GitHub token: %w"
	ownerReadErrorTemplateConstant        = "unable to read default organization: %w"
	tokenValidationErrorTemplateConstant  = "GitHub token validation failed: %w"
	browserOpenFailedLogMessageConstant   = "Unable to open browser"
	logFieldURLConstant                   = "url"
)

// TokenCreationURL is the GitHub page that creates a token with the scopes gmux needs.
const TokenCreationURL = "https://github.com/settings/tokens/new?description=gmux%20CLI%20token&scopes=repo,read:org"

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// TokenValidator confirms a token and reports the authenticated login.
type TokenValidator interface {
	ValidateToken(executionContext context.Context) (string, error)
}

// TokenValidatorFactory builds a validator for token.
type TokenValidatorFactory func(token string) (TokenValidator, error)

// InitCommandBuilder assembles the init command.
type InitCommandBuilder struct {
	ConfigurationDirectory *utils.ConfigurationDirectoryResolver
	FileSystem             shared.FileSystem
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortDescriptionConstant,
		Long:  initCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().String(directoryFlagNameConstant, "", directoryFlagUsageConstant)
	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, arguments []string) error {
	directory := ""
	if len(arguments) > 0 {
		directory = strings.TrimSpace(arguments[0])
	}
	if len(directory) == 0 {
		flagValue, _ := command.Flags().GetString(directoryFlagNameConstant)
		directory = strings.TrimSpace(flagValue)
	}
	if len(directory) == 0 {
		configurationDirectory, resolveError := resolveDirectoryResolver(builder.ConfigurationDirectory).Resolve()
		if resolveError != nil {
			return resolveError
		}
		directory = configurationDirectory
	}

	initializer, initializerError := NewTemplateInitializer(dependencies.ResolveFileSystem(builder.FileSystem))
	if initializerError != nil {
		return initializerError
	}
	templatePath, created, initializeError := initializer.Initialize(directory)
	if initializeError != nil {
		return initializeError
	}

	if created {
		fmt.Fprintln(command.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("%s "+templateCreatedTemplateConstant, ui.SuccessSymbol, templatePath)))
		return nil
	}
	fmt.Fprintf(command.OutOrStdout(), "%s "+templateExistsTemplateConstant+"\n", ui.InfoSymbol, templatePath)
	return nil
}

// SetupCommandBuilder assembles the setup command.
type SetupCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() organization.CommandConfiguration
	ConfigurationDirectory       *utils.ConfigurationDirectoryResolver
	CommandExecutor              shared.CommandExecutor
	FileSystem                   shared.FileSystem
	LineReader                   shared.LineReader
	BrowserOpener                browser.Opener
	TokenValidatorFactory        TokenValidatorFactory
	InteractiveTerminalProvider  func() bool
}

// Build constructs the setup command.
func (builder *SetupCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   setupCommandUseConstant,
		Short: setupCommandShortDescriptionConstant,
		Long:  setupCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().String(tokenFlagNameConstant, "", tokenFlagUsageConstant)
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagUsageConstant)
	return command, nil
}

func (builder *SetupCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()
	output := command.OutOrStdout()
	_, lineReader := dependencies.ResolvePrompters(nil, builder.LineReader, command.InOrStdin(), output, shared.ConfirmationPolicyFromBool(false))

	tokenFlagValue, _ := command.Flags().GetString(tokenFlagNameConstant)
	token := strings.TrimSpace(tokenFlagValue)
	if len(token) == 0 {
		token = configuration.Token
	}
	if len(token) == 0 {
		fmt.Fprintln(output, ui.WarningStyle.Render(missingTokenMessageConstant))
		fmt.Fprintln(output, tokenInstructionsMessageConstant)
		fmt.Fprintf(output, "%s %s\n", ui.BrowserSymbol, TokenCreationURL)
		if builder.isInteractive() {
			builder.openTokenPage(logger)
		}
		enteredToken, readError := lineReader.ReadLine(tokenPromptConstant)
		if readError != nil {
			return fmt.Errorf(tokenReadErrorTemplateConstant, readError)
		}
		token = strings.TrimSpace(enteredToken)
	}

	if len(token) > 0 {
		fmt.Fprintln(output, validatingTokenMessageConstant)
		validator, validatorError := builder.resolveTokenValidator(logger, token)
		if validatorError != nil {
			return validatorError
		}
		login, validationError := validator.ValidateToken(command.Context())
		if validationError != nil {
			return fmt.Errorf(tokenValidationErrorTemplateConstant, validationError)
		}
		fmt.Fprintln(output, ui.SuccessStyle.Render(fmt.Sprintf("%s "+authenticatedTemplateConstant, ui.SuccessSymbol, login)))
	}

	ownerFlagValue, _ := command.Flags().GetString(ownerFlagNameConstant)
	owner := strings.TrimSpace(ownerFlagValue)
	if len(owner) == 0 {
		owner = configuration.DefaultOwner
	}
	if len(owner) == 0 {
		enteredOwner, readError := lineReader.ReadLine(ownerPromptConstant)
		if readError != nil {
			return fmt.Errorf(ownerReadErrorTemplateConstant, readError)
		}
		owner = strings.TrimSpace(enteredOwner)
	}
	if len(owner) > 0 {
		if _, ownerError := shared.NewOwnerSlug(owner); ownerError != nil {
			return ownerError
		}
	}

	configurationPath, pathError := builder.resolveConfigurationPath(command.Context())
	if pathError != nil {
		return pathError
	}
	writer, writerError := NewConfigurationFileWriter(dependencies.ResolveFileSystem(builder.FileSystem))
	if writerError != nil {
		return writerError
	}
	if saveError := writer.Save(configurationPath, GitHubSettings{Token: token, DefaultOwner: owner}); saveError != nil {
		return saveError
	}

	fmt.Fprintln(output)
	fmt.Fprintln(output, ui.SuccessStyle.Render(savedMessageConstant))
	fmt.Fprintf(output, configurationLocationTemplateConstant+"\n", configurationPath)
	if len(owner) > 0 {
		fmt.Fprintf(output, defaultOwnerTemplateConstant+"\n", owner)
	}
	return nil
}

func (builder *SetupCommandBuilder) openTokenPage(logger *zap.Logger) {
	opener := builder.BrowserOpener
	if opener == nil {
		opener = browser.NewSystemOpener()
	}
	if openError := opener.Open(TokenCreationURL); openError != nil {
		logger.Debug(browserOpenFailedLogMessageConstant, zap.String(logFieldURLConstant, TokenCreationURL), zap.Error(openError))
	}
}

func (builder *SetupCommandBuilder) isInteractive() bool {
	if builder.InteractiveTerminalProvider != nil {
		return builder.InteractiveTerminalProvider()
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func (builder *SetupCommandBuilder) resolveTokenValidator(logger *zap.Logger, token string) (TokenValidator, error) {
	if builder.TokenValidatorFactory != nil {
		return builder.TokenValidatorFactory(token)
	}
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	client, clientError := githubcli.NewClient(commandExecutor, token)
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}

func (builder *SetupCommandBuilder) resolveConfigurationPath(executionContext context.Context) (string, error) {
	if loadedPath, loaded := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext); loaded && len(strings.TrimSpace(loadedPath)) > 0 {
		return loadedPath, nil
	}
	return resolveDirectoryResolver(builder.ConfigurationDirectory).ResolveFile(utils.ConfigurationFileName)
}

func (builder *SetupCommandBuilder) resolveConfiguration() organization.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return organization.DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *SetupCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveDirectoryResolver(existing *utils.ConfigurationDirectoryResolver) *utils.ConfigurationDirectoryResolver {
	if existing != nil {
		return existing
	}
	return utils.NewConfigurationDirectoryResolver()
}
