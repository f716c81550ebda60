package owners

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/scottidler/git-tools/internal/ui"
)

const (
	statusColumnWidthConstant      = len(StatusUnowned)
	simpleLineTemplateConstant     = "%s %s\n"
	detailedHeaderTemplateConstant = "%s %s:\n"
	detailedMarkerTemplateConstant = "  paths: %s\n"
	detailedPathsHeaderConstant    = "  paths:\n"
	detailedPathTemplateConstant   = "    %s: %s\n"
	detailedAuthorsHeaderConstant  = "  authors:\n"
	detailedAuthorTemplateConstant = "    - %s\n"
	countTemplateConstant          = "count %d\n"
	ownerListPrefixConstant        = "["
	ownerListSuffixConstant        = "]"
	ownerListSeparatorConstant     = ", "
	writeReportFailureConstant     = "write ownership report"
)

// WriteSimple prints one right-aligned status and repository per line, then the count.
func WriteSimple(writer io.Writer, verdicts []RepositoryOwnership, palette ui.StatusPalette) error {
	var builder strings.Builder
	for _, verdict := range verdicts {
		fmt.Fprintf(&builder, simpleLineTemplateConstant, palette.Render(verdict.Status, statusColumnWidthConstant), verdict.Repository)
	}
	fmt.Fprintf(&builder, countTemplateConstant, len(verdicts))
	_, writeError := io.WriteString(writer, builder.String())
	return errors.Wrap(writeError, writeReportFailureConstant)
}

// WriteDetailed prints each verdict with its path mapping and top authors, then the count.
func WriteDetailed(writer io.Writer, verdicts []RepositoryOwnership, palette ui.StatusPalette) error {
	var builder strings.Builder
	for _, verdict := range verdicts {
		fmt.Fprintf(&builder, detailedHeaderTemplateConstant, palette.Render(verdict.Status, 0), verdict.Repository)
		if len(verdict.Marker) > 0 {
			fmt.Fprintf(&builder, detailedMarkerTemplateConstant, verdict.Marker)
		} else if len(verdict.Paths) > 0 {
			builder.WriteString(detailedPathsHeaderConstant)
			for _, pathOwners := range verdict.Paths {
				fmt.Fprintf(&builder, detailedPathTemplateConstant, pathOwners.Path, formatOwners(pathOwners.Owners))
			}
		}
		if len(verdict.Authors) > 0 {
			builder.WriteString(detailedAuthorsHeaderConstant)
			for _, author := range verdict.Authors {
				fmt.Fprintf(&builder, detailedAuthorTemplateConstant, author)
			}
		}
	}
	fmt.Fprintf(&builder, countTemplateConstant, len(verdicts))
	_, writeError := io.WriteString(writer, builder.String())
	return errors.Wrap(writeError, writeReportFailureConstant)
}

func formatOwners(owners []string) string {
	switch len(owners) {
	case 0:
		return UnownedMarker
	case 1:
		return owners[0]
	default:
		return ownerListPrefixConstant + strings.Join(owners, ownerListSeparatorConstant) + ownerListSuffixConstant
	}
}
