package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitShowToplevelFlagConstant           = "--show-toplevel"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitFetchSubcommandNameConstant        = "fetch"
	gitForEachRefSubcommandNameConstant   = "for-each-ref"
	gitCloneSubcommandNameConstant        = "clone"
	gitReferenceFlagConstant              = "--reference"
	gitLSRemoteSubcommandNameConstant     = "ls-remote"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitPullSubcommandNameConstant         = "pull"
	gitLogSubcommandNameConstant          = "log"
	gitShortlogSubcommandNameConstant     = "shortlog"
	githubPullRequestSubcommandConstant   = "pr"
	githubListSubcommandConstant          = "list"
	githubRepoFlagConstant                = "--repo"
)

const (
	gitToplevelStartTemplateConstant               = "Locating repository root for %s"
	gitToplevelSuccessTemplateConstant             = "Repository root for %s is %s"
	gitToplevelFailureTemplateConstant             = "%s is not inside a Git repository (exit code %d%s)"
	gitToplevelExecutionFailureTemplateConstant    = "Unable to locate repository root for %s: %s"
	gitRemoteLookupStartTemplateConstant           = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant         = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant         = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionTemplateConstant       = "Unable to read %s remote for %s: %s"
	gitFetchStartTemplateConstant                  = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant       = "Unable to fetch from %s in %s: %s"
	gitFetchAllRemotesLabelConstant                = "all remotes"
	gitRefsStartTemplateConstant                   = "Listing %s in %s"
	gitRefsSuccessTemplateConstant                 = "Listed %s in %s"
	gitRefsFailureTemplateConstant                 = "Failed to list %s in %s (exit code %d%s)"
	gitRefsExecutionFailureTemplateConstant        = "Unable to list %s in %s: %s"
	gitRefsAllLabelConstant                        = "all refs"
	gitCloneStartTemplateConstant                  = "Cloning %s into %s"
	gitCloneMirrorStartTemplateConstant            = "Cloning %s into %s using mirror %s"
	gitCloneSuccessTemplateConstant                = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant       = "Unable to clone %s into %s: %s"
	gitLSRemoteStartTemplateConstant               = "Resolving %s on %s"
	gitLSRemoteSuccessTemplateConstant             = "Resolved %s on %s"
	gitLSRemoteFailureTemplateConstant             = "Failed to resolve %s on %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant    = "Unable to resolve %s on %s: %s"
	gitCheckoutStartTemplateConstant               = "Checking out %s in %s"
	gitCheckoutSuccessTemplateConstant             = "%s now at %s"
	gitCheckoutFailureTemplateConstant             = "Failed to check out %s in %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant    = "Unable to check out %s in %s: %s"
	gitPullStartTemplateConstant                   = "Updating %s"
	gitPullSuccessTemplateConstant                 = "Updated %s"
	gitPullFailureTemplateConstant                 = "Failed to update %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant        = "Unable to update %s: %s"
	gitLogStartTemplateConstant                    = "Inspecting last commit of %s in %s"
	gitLogSuccessTemplateConstant                  = "Inspected last commit of %s in %s"
	gitLogFailureTemplateConstant                  = "Failed to inspect %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant         = "Unable to inspect %s in %s: %s"
	gitShortlogStartTemplateConstant               = "Ranking authors in %s"
	gitShortlogSuccessTemplateConstant             = "Ranked authors in %s"
	gitShortlogFailureTemplateConstant             = "Failed to rank authors in %s (exit code %d%s)"
	gitShortlogExecutionFailureTemplateConstant    = "Unable to rank authors in %s: %s"
	githubPullRequestListStartTemplateConstant     = "Listing pull requests for %s"
	githubPullRequestListSuccessTemplateConstant   = "Listed pull requests for %s"
	githubPullRequestListFailureTemplateConstant   = "Failed to list pull requests for %s (exit code %d%s)"
	githubPullRequestListExecutionTemplateConstant = "Unable to list pull requests for %s: %s"
)

// stageTemplates holds the four message templates of a command family.
// Start and success templates receive the subject values only; the failure
// template additionally receives the exit code and stderr suffix, and the
// execution failure template the failure description.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		if !containsArgument(arguments, gitShowToplevelFlagConstant) {
			break
		}
		if stage == messageStageSuccess {
			return fmt.Sprintf(gitToplevelSuccessTemplateConstant, workingDirectory, formatter.ensureValue(result.StandardOutput))
		}
		return formatter.render(stageTemplates{
			start:            gitToplevelStartTemplateConstant,
			failure:          gitToplevelFailureTemplateConstant,
			executionFailure: gitToplevelExecutionFailureTemplateConstant,
		}, stage, result, failure, workingDirectory)
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) != gitRemoteGetURLSubcommandNameConstant {
			break
		}
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		if stage == messageStageSuccess {
			return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(result.StandardOutput))
		}
		return formatter.render(stageTemplates{
			start:            gitRemoteLookupStartTemplateConstant,
			failure:          gitRemoteLookupFailureTemplateConstant,
			executionFailure: gitRemoteLookupExecutionTemplateConstant,
		}, stage, result, failure, remoteName, workingDirectory)
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.extractFirstNonFlagArgument(arguments[1:])
		if len(remoteName) == 0 {
			remoteName = gitFetchAllRemotesLabelConstant
		}
		return formatter.render(stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, stage, result, failure, remoteName, workingDirectory)
	case gitForEachRefSubcommandNameConstant:
		pattern := formatter.extractFirstNonFlagArgument(arguments[1:])
		if len(pattern) == 0 {
			pattern = gitRefsAllLabelConstant
		}
		return formatter.render(stageTemplates{
			start:            gitRefsStartTemplateConstant,
			success:          gitRefsSuccessTemplateConstant,
			failure:          gitRefsFailureTemplateConstant,
			executionFailure: gitRefsExecutionFailureTemplateConstant,
		}, stage, result, failure, pattern, workingDirectory)
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(arguments, result, failure, stage)
	case gitLSRemoteSubcommandNameConstant:
		positional := formatter.positionalArguments(arguments[1:])
		remote := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
		reference := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))
		return formatter.render(stageTemplates{
			start:            gitLSRemoteStartTemplateConstant,
			success:          gitLSRemoteSuccessTemplateConstant,
			failure:          gitLSRemoteFailureTemplateConstant,
			executionFailure: gitLSRemoteExecutionFailureTemplateConstant,
		}, stage, result, failure, reference, remote)
	case gitCheckoutSubcommandNameConstant:
		revision := formatter.resolveLastArgument(arguments)
		if stage == messageStageSuccess {
			return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, revision)
		}
		return formatter.render(stageTemplates{
			start:            gitCheckoutStartTemplateConstant,
			failure:          gitCheckoutFailureTemplateConstant,
			executionFailure: gitCheckoutExecutionFailureTemplateConstant,
		}, stage, result, failure, revision, workingDirectory)
	case gitPullSubcommandNameConstant:
		return formatter.render(stageTemplates{
			start:            gitPullStartTemplateConstant,
			success:          gitPullSuccessTemplateConstant,
			failure:          gitPullFailureTemplateConstant,
			executionFailure: gitPullExecutionFailureTemplateConstant,
		}, stage, result, failure, workingDirectory)
	case gitLogSubcommandNameConstant:
		reference := formatter.resolveLastArgument(arguments)
		return formatter.render(stageTemplates{
			start:            gitLogStartTemplateConstant,
			success:          gitLogSuccessTemplateConstant,
			failure:          gitLogFailureTemplateConstant,
			executionFailure: gitLogExecutionFailureTemplateConstant,
		}, stage, result, failure, reference, workingDirectory)
	case gitShortlogSubcommandNameConstant:
		return formatter.render(stageTemplates{
			start:            gitShortlogStartTemplateConstant,
			success:          gitShortlogSuccessTemplateConstant,
			failure:          gitShortlogFailureTemplateConstant,
			executionFailure: gitShortlogExecutionFailureTemplateConstant,
		}, stage, result, failure, workingDirectory)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	mirror := findFlagValue(arguments, gitReferenceFlagConstant)
	positional := formatter.positionalArguments(arguments[1:])
	source := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	destination := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))

	if stage == messageStageStart && len(mirror) > 0 {
		return fmt.Sprintf(gitCloneMirrorStartTemplateConstant, source, destination, mirror)
	}
	return formatter.render(stageTemplates{
		start:            gitCloneStartTemplateConstant,
		success:          gitCloneSuccessTemplateConstant,
		failure:          gitCloneFailureTemplateConstant,
		executionFailure: gitCloneExecutionFailureTemplateConstant,
	}, stage, result, failure, source, destination)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, 0) == githubPullRequestSubcommandConstant && formatter.argumentAtIndex(arguments, 1) == githubListSubcommandConstant {
		repository := formatter.ensureValue(findFlagValue(arguments, githubRepoFlagConstant))
		return formatter.render(stageTemplates{
			start:            githubPullRequestListStartTemplateConstant,
			success:          githubPullRequestListSuccessTemplateConstant,
			failure:          githubPullRequestListFailureTemplateConstant,
			executionFailure: githubPullRequestListExecutionTemplateConstant,
		}, stage, result, failure, repository)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) render(templates stageTemplates, stage messageStage, result ExecutionResult, failure error, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		values := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, values...)
	case messageStageExecutionFailure:
		values := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, values...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) resolveLastArgument(arguments []string) string {
	if len(arguments) < 2 {
		return fallbackUnknownValueLabelConstant
	}
	return formatter.ensureValue(arguments[len(arguments)-1])
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	positional := formatter.positionalArguments(arguments)
	return formatter.argumentAtIndex(positional, 0)
}

// positionalArguments drops flags and the values of flags that take one.
func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if skipNext {
			skipNext = false
			continue
		}
		if trimmed == gitReferenceFlagConstant {
			skipNext = true
			continue
		}
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
