package owners

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/scottidler/git-tools/internal/execshell"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	gitShortlogSubcommandConstant = "shortlog"
	gitSummaryFlagConstant        = "-s"
	gitNumberedFlagConstant       = "-n"
	gitAllFlagConstant            = "--all"
	gitNoMergesFlagConstant       = "--no-merges"
	exEmployeesFileNameConstant   = "ex-employees"
	authorEntryTemplateConstant   = "%s (%s)"
	unknownOrganizationConstant   = "unknown"
	slugSeparatorConstant         = "/"
)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// exEmployeeDirectory loads and caches the ex-employee names of each organization
// from <directory>/<org>/ex-employees.
type exEmployeeDirectory struct {
	directory  string
	fileReader FileReader
	mutex      sync.Mutex
	cache      map[string]map[string]struct{}
}

func newExEmployeeDirectory(directory string, fileReader FileReader) *exEmployeeDirectory {
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &exEmployeeDirectory{
		directory:  directory,
		fileReader: fileReader,
		cache:      make(map[string]map[string]struct{}),
	}
}

// namesFor returns the excluded names of organization. Missing or unreadable files yield no names.
func (employees *exEmployeeDirectory) namesFor(organization string) map[string]struct{} {
	employees.mutex.Lock()
	defer employees.mutex.Unlock()

	if names, cached := employees.cache[organization]; cached {
		return names
	}
	names := make(map[string]struct{})
	if len(employees.directory) > 0 {
		contents, readError := employees.fileReader(filepath.Join(employees.directory, organization, exEmployeesFileNameConstant))
		if readError == nil {
			for _, line := range strings.Split(string(contents), "\n") {
				if name := strings.TrimSpace(line); len(name) > 0 {
					names[name] = struct{}{}
				}
			}
		}
	}
	employees.cache[organization] = names
	return names
}

func organizationOf(slug string) string {
	organization, _, found := strings.Cut(slug, slugSeparatorConstant)
	if !found || len(organization) == 0 {
		return unknownOrganizationConstant
	}
	return organization
}

// topAuthors runs git shortlog and returns up to limit "<name> (<commits>)" entries,
// skipping excluded names.
func topAuthors(executionContext context.Context, executor shared.GitExecutor, repositoryPath string, limit int, excluded map[string]struct{}) ([]string, error) {
	result, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitShortlogSubcommandConstant, gitSummaryFlagConstant, gitNumberedFlagConstant, gitAllFlagConstant, gitNoMergesFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	var authors []string
	for _, line := range strings.Split(result.StandardOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.Join(fields[1:], " ")
		if _, skip := excluded[name]; skip {
			continue
		}
		authors = append(authors, fmt.Sprintf(authorEntryTemplateConstant, name, fields[0]))
		if len(authors) == limit {
			break
		}
	}
	return authors, nil
}
