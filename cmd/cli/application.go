package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/scottidler/git-tools/cmd/cli/repos"
	"github.com/scottidler/git-tools/internal/branches"
	"github.com/scottidler/git-tools/internal/clone"
	"github.com/scottidler/git-tools/internal/filterref"
	"github.com/scottidler/git-tools/internal/owners"
	"github.com/scottidler/git-tools/internal/pullrequests"
	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/shellinit"
	"github.com/scottidler/git-tools/internal/utils"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
	pathutils "github.com/scottidler/git-tools/internal/utils/path"
)

const (
	applicationNameConstant                 = "git-tools"
	applicationShortDescriptionConstant     = "Everyday helpers for working across many git repositories"
	applicationLongDescriptionConstant      = "git-tools discovers repositories under one or more roots, reports stale branches and pull requests, summarizes ownership, filters refs by age, and clones repositories into a predictable layout."
	versionTemplateConstant                 = applicationNameConstant + " {{.Version}}\n"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	logFileFlagNameConstant                 = "log-file"
	logFileFlagUsageConstant                = "Also write JSON logs to this rotating file."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	environmentPrefixConstant               = "GITTOOLS"
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
	toolsConfigurationKeyConstant           = "tools"
	reposConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".repos"
	githubConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".github"
	branchesConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".branches"
	pullRequestsConfigurationKeyConstant    = toolsConfigurationKeyConstant + ".pull_requests"
	ownersConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".owners"
	filterRefConfigurationKeyConstant       = toolsConfigurationKeyConstant + ".filter_ref"
	cloneConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".clone"
)

// version is the build version, set with -ldflags "-X github.com/scottidler/git-tools/cmd/cli.version=<value>".
var version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Repos        scan.Configuration                `mapstructure:"repos"`
	GitHub       repos.GitHubConfiguration         `mapstructure:"github"`
	Branches     branches.CommandConfiguration     `mapstructure:"branches"`
	PullRequests pullrequests.CommandConfiguration `mapstructure:"pull_requests"`
	Owners       owners.CommandConfiguration       `mapstructure:"owners"`
	FilterRef    filterref.CommandConfiguration    `mapstructure:"filter_ref"`
	Clone        clone.CommandConfiguration        `mapstructure:"clone"`
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	loggerOutputs         utils.LoggerOutputs
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	logFileFlagValue      string
	buildErrors           []error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if configurationDirectory := pathutils.NewHomeExpander().ConfigurationDirectory(applicationNameConstant); len(configurationDirectory) > 0 {
		searchPaths = append(searchPaths, configurationDirectory)
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       version,
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
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFileFlagValue, logFileFlagNameConstant, "", logFileFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	scanConfigurationProvider := func() scan.Configuration {
		return application.configuration.Tools.Repos
	}

	builders := []struct {
		name    string
		builder commandBuilder
	}{
		{
			name: "repos",
			builder: &repos.CommandGroupBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ScanConfigurationProvider:    scanConfigurationProvider,
				GitHubConfigurationProvider: func() repos.GitHubConfiguration {
					return application.configuration.Tools.GitHub
				},
			},
		},
		{
			name: "reposlug",
			builder: &repos.SlugCommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ScanConfigurationProvider:    scanConfigurationProvider,
			},
		},
		{
			name: "branches",
			builder: &branches.CommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ConfigurationProvider: func() branches.CommandConfiguration {
					return application.configuration.Tools.Branches
				},
				ScanConfigurationProvider: scanConfigurationProvider,
			},
		},
		{
			name: "prs",
			builder: &pullrequests.CommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ConfigurationProvider: func() pullrequests.CommandConfiguration {
					return application.configuration.Tools.PullRequests
				},
				ScanConfigurationProvider: scanConfigurationProvider,
			},
		},
		{
			name: "owners",
			builder: &owners.CommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ConfigurationProvider: func() owners.CommandConfiguration {
					return application.configuration.Tools.Owners
				},
				ScanConfigurationProvider: scanConfigurationProvider,
			},
		},
		{
			name: "filter-ref",
			builder: &filterref.CommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ConfigurationProvider: func() filterref.CommandConfiguration {
					return application.configuration.Tools.FilterRef
				},
			},
		},
		{
			name: "clone",
			builder: &clone.CommandBuilder{
				LoggerProvider:               loggerProvider,
				HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
				ConfigurationProvider: func() clone.CommandConfiguration {
					return application.configuration.Tools.Clone
				},
				Version: version,
			},
		},
		{
			name:    "shell-init",
			builder: &shellinit.CommandBuilder{BinaryName: applicationNameConstant},
		},
	}

	for _, registration := range builders {
		subcommand, buildError := registration.builder.Build()
		if buildError != nil {
			application.buildErrors = append(application.buildErrors, fmt.Errorf(commandBuildErrorTemplateConstant, registration.name, buildError))
			continue
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// SetOutput redirects command output and error streams.
func (application *Application) SetOutput(output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// Execute runs the command hierarchy against the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy against arguments and flushes the logger.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if len(application.buildErrors) > 0 {
		return errors.Join(application.buildErrors...)
	}

	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	syncError := application.flushLogger()
	closeError := application.loggerOutputs.Close()
	if executionError != nil {
		return executionError
	}
	if syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return closeError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:   "",
	}
	defaultSources := []map[string]any{
		scan.DefaultConfigurationValues(reposConfigurationKeyConstant),
		repos.DefaultGitHubConfigurationValues(githubConfigurationKeyConstant),
		branches.DefaultConfigurationValues(branchesConfigurationKeyConstant),
		pullrequests.DefaultConfigurationValues(pullRequestsConfigurationKeyConstant),
		owners.DefaultConfigurationValues(ownersConfigurationKeyConstant),
		filterref.DefaultConfigurationValues(filterRefConfigurationKeyConstant),
		clone.DefaultConfigurationValues(cloneConfigurationKeyConstant),
	}
	for _, defaultSource := range defaultSources {
		for configurationKey, configurationValue := range defaultSource {
			defaultValues[configurationKey] = configurationValue
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, logFileFlagNameConstant) {
		application.configuration.Common.LogFile = application.logFileFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		pathutils.NewHomeExpander().Expand(strings.TrimSpace(application.configuration.Common.LogFile)),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.loggerOutputs = loggerOutputs
	application.logger = loggerOutputs.DiagnosticLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
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

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
