package repos

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scottidler/git-tools/internal/repos/scan"
	"github.com/scottidler/git-tools/internal/repos/shared"
	flagutils "github.com/scottidler/git-tools/internal/utils/flags"
)

const (
	listUseConstant               = "list [root ...]"
	listShortDescriptionConstant  = "List git repositories discovered under the roots"
	listLongDescriptionConstant   = "list walks the roots for git working trees and prints each repository's slug, or its path and slug with --paths."
	flagPathsNameConstant         = "paths"
	flagPathsDescriptionConstant  = "Print path<TAB>slug, including repositories without a slug"
	flagMatchNameConstant         = "match"
	flagMatchShorthandConstant    = "m"
	flagMatchDescriptionConstant  = "Keep repositories whose slug (or path) fuzzy-matches the pattern"
	flagFormatNameConstant        = "format"
	flagFormatDescriptionConstant = "Output format"
	listFormatTextConstant        = "text"
	listFormatYAMLConstant        = "yaml"
	pathSlugLineTemplateConstant  = "%s\t%s\n"
	listCollectionFailureConstant = "list repositories"
	listYAMLEncodeFailureConstant = "encode repository list"
)

type listedRepository struct {
	Path string `yaml:"path"`
	Slug string `yaml:"slug,omitempty"`
}

// ListCommandBuilder assembles the repos list command.
type ListCommandBuilder struct {
	LoggerProvider               scan.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ScanConfigurationProvider    func() scan.Configuration
	Dependencies                 scan.Dependencies
}

// Build constructs the repos list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		RunE:  builder.run,
	}

	formats := []string{listFormatTextConstant, listFormatYAMLConstant}
	command.Flags().Bool(flagPathsNameConstant, false, flagPathsDescriptionConstant)
	command.Flags().StringP(flagMatchNameConstant, flagMatchShorthandConstant, "", flagMatchDescriptionConstant)
	command.Flags().Var(flagutils.NewChoiceValue(listFormatTextConstant, formats), flagFormatNameConstant, flagutils.FormatChoiceUsage(listFormatTextConstant, formats, flagFormatDescriptionConstant))
	scan.BindFlags(command)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	showPaths, _ := command.Flags().GetBool(flagPathsNameConstant)
	pattern, _ := command.Flags().GetString(flagMatchNameConstant)
	format, _ := command.Flags().GetString(flagFormatNameConstant)

	scanConfiguration := scan.ResolveConfiguration(command, resolveScanConfiguration(builder.ScanConfigurationProvider))
	roots := scan.ResolveRoots(arguments, scanConfiguration)

	logger := scan.ResolveLogger(builder.LoggerProvider)
	environment, environmentError := scan.NewEnvironment(logger, resolveFlag(builder.HumanReadableLoggingProvider), scanConfiguration, roots, builder.Dependencies)
	if environmentError != nil {
		return environmentError
	}

	records, collectionError := environment.Collector.CollectRepositories(command.Context(), environment.Roots)
	if collectionError != nil {
		return errors.Wrap(collectionError, listCollectionFailureConstant)
	}
	records = filterRecords(records, pattern)

	if format == listFormatYAMLConstant {
		return writeRecordsYAML(command.OutOrStdout(), records)
	}
	return writeRecordsText(command.OutOrStdout(), records, showPaths)
}

// filterRecords keeps records whose display name fuzzy-matches pattern, in discovery order.
func filterRecords(records []shared.RepositoryRecord, pattern string) []shared.RepositoryRecord {
	trimmedPattern := strings.TrimSpace(pattern)
	if len(trimmedPattern) == 0 {
		return records
	}

	names := make([]string, len(records))
	for index, record := range records {
		names[index] = record.DisplayName()
	}

	matches := fuzzy.Find(trimmedPattern, names)
	matchedIndexes := make([]int, 0, len(matches))
	for _, match := range matches {
		matchedIndexes = append(matchedIndexes, match.Index)
	}
	sort.Ints(matchedIndexes)

	filtered := make([]shared.RepositoryRecord, 0, len(matchedIndexes))
	for _, index := range matchedIndexes {
		filtered = append(filtered, records[index])
	}
	return filtered
}

func writeRecordsText(writer io.Writer, records []shared.RepositoryRecord, showPaths bool) error {
	for _, record := range records {
		var writeError error
		switch {
		case showPaths && len(record.Slug) > 0:
			_, writeError = fmt.Fprintf(writer, pathSlugLineTemplateConstant, record.Path, record.Slug)
		case showPaths:
			_, writeError = fmt.Fprintln(writer, record.Path)
		case len(record.Slug) > 0:
			_, writeError = fmt.Fprintln(writer, record.Slug)
		}
		if writeError != nil {
			return writeError
		}
	}
	return nil
}

func writeRecordsYAML(writer io.Writer, records []shared.RepositoryRecord) error {
	listed := make([]listedRepository, 0, len(records))
	for _, record := range records {
		listed = append(listed, listedRepository{Path: record.Path, Slug: record.Slug})
	}

	encoder := yaml.NewEncoder(writer)
	if encodeError := encoder.Encode(listed); encodeError != nil {
		return errors.Wrap(encodeError, listYAMLEncodeFailureConstant)
	}
	return encoder.Close()
}
