package owners

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	codeOwnersRelativePathConstant = ".github/CODEOWNERS"
	commentPrefixConstant          = "#"
	wildcardPatternConstant        = "*"
	rootPatternConstant            = "/"
	ownerHandlePrefixConstant      = "@"
	gitDirectoryNameConstant       = ".git"
	githubDirectoryNameConstant    = ".github"
	minimumRuleFieldCountConstant  = 2
	readCodeOwnersFailureConstant  = "read " + codeOwnersRelativePathConstant
	walkRepositoryFailureConstant  = "walk repository files"
)

var (
	codeFileExtensions = map[string]struct{}{
		"py": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {}, "css": {}, "html": {},
		"tf": {}, "yaml": {}, "yml": {}, "toml": {}, "tpl": {}, "go": {},
	}
	codeFileNames = map[string]struct{}{
		"Dockerfile": {},
		"Makefile":   {},
	}
)

// CodeOwnersFile is the parsed content of .github/CODEOWNERS.
// Rules maps a pattern to its owners; a later rule for the same pattern replaces an earlier one.
type CodeOwnersFile struct {
	Exists bool
	Rules  map[string][]string
}

// LoadCodeOwners reads .github/CODEOWNERS from repository. A missing file is not an error.
func LoadCodeOwners(repository fs.FS) (CodeOwnersFile, error) {
	contents, readError := fs.ReadFile(repository, codeOwnersRelativePathConstant)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return CodeOwnersFile{}, nil
		}
		return CodeOwnersFile{}, errors.Wrap(readError, readCodeOwnersFailureConstant)
	}
	return CodeOwnersFile{Exists: true, Rules: ParseCodeOwners(string(contents))}, nil
}

// ParseCodeOwners reads "<pattern> <owner>..." rules, skipping blank lines, comments and
// rules without owners. The bare "*" pattern becomes "/" and owners lose their leading "@".
func ParseCodeOwners(contents string) map[string][]string {
	rules := make(map[string][]string)
	for _, rawLine := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(rawLine)
		if len(line) == 0 || strings.HasPrefix(line, commentPrefixConstant) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minimumRuleFieldCountConstant {
			continue
		}
		pattern := fields[0]
		if pattern == wildcardPatternConstant {
			pattern = rootPatternConstant
		}
		owners := make([]string, 0, len(fields)-1)
		for _, owner := range fields[1:] {
			owners = append(owners, strings.TrimPrefix(owner, ownerHandlePrefixConstant))
		}
		rules[pattern] = owners
	}
	return rules
}

// IsCodeFile reports whether name is a file counted for ownership coverage.
func IsCodeFile(name string) bool {
	if _, exists := codeFileNames[name]; exists {
		return true
	}
	extension := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if len(extension) == 0 {
		return false
	}
	_, exists := codeFileExtensions[extension]
	return exists
}

// CollectCodeFiles returns the slash separated paths of every code file in repository,
// skipping .git and .github directories. Symbolic links are not followed.
func CollectCodeFiles(repository fs.FS) ([]string, error) {
	var files []string
	walkError := fs.WalkDir(repository, ".", func(entryPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if entry.IsDir() {
			if entry.Name() == gitDirectoryNameConstant || entry.Name() == githubDirectoryNameConstant {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Type().IsRegular() && IsCodeFile(entry.Name()) {
			files = append(files, entryPath)
		}
		return nil
	})
	if walkError != nil {
		return nil, errors.Wrap(walkError, walkRepositoryFailureConstant)
	}
	return files, nil
}

// UncoveredPaths returns the sorted set of locations holding files no rule covers.
// A file is covered when "/<file>" starts with a rule pattern. Uncovered top-level files
// are reported as "/" and nested files as "/<first directory>/".
func UncoveredPaths(rules map[string][]string, files []string) []string {
	uncovered := make(map[string]struct{})
	for _, file := range files {
		rootedPath := rootPatternConstant + strings.TrimPrefix(file, rootPatternConstant)
		if isCovered(rules, rootedPath) {
			continue
		}
		segments := strings.Split(strings.Trim(rootedPath, rootPatternConstant), rootPatternConstant)
		location := rootPatternConstant
		if len(segments) > 1 {
			location = rootPatternConstant + segments[0] + rootPatternConstant
		}
		uncovered[location] = struct{}{}
	}

	locations := make([]string, 0, len(uncovered))
	for location := range uncovered {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

func isCovered(rules map[string][]string, rootedPath string) bool {
	for pattern := range rules {
		if strings.HasPrefix(rootedPath, pattern) {
			return true
		}
	}
	return false
}
