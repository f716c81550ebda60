package owners_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/scottidler/git-tools/internal/owners"
)

const codeOwnersFixtureConstant = `# platform team owns everything by default
*       @acme/platform

/docs/  @acme/docs @alice
/api/v2/ bob
/orphan/
/docs/  @acme/writers
`

func TestParseCodeOwners(testInstance *testing.T) {
	rules := owners.ParseCodeOwners(codeOwnersFixtureConstant)
	require.Equal(testInstance, map[string][]string{
		"/":        {"acme/platform"},
		"/docs/":   {"acme/writers"},
		"/api/v2/": {"bob"},
	}, rules)
	require.Empty(testInstance, owners.ParseCodeOwners("# only comments\n\n   \n"))
}

func TestIsCodeFile(testInstance *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{name: "main.go", expected: true},
		{name: "app.PY", expected: true},
		{name: "chart.tpl", expected: true},
		{name: "Dockerfile", expected: true},
		{name: "Makefile", expected: true},
		{name: "README.md", expected: false},
		{name: "notes.txt", expected: false},
		{name: "LICENSE", expected: false},
		{name: "dockerfile", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, owners.IsCodeFile(testCase.name))
		})
	}
}

func TestCollectCodeFilesSkipsGitDirectories(testInstance *testing.T) {
	repository := fstest.MapFS{
		"main.go":                  {Data: []byte("package main")},
		"README.md":                {Data: []byte("# readme")},
		"Makefile":                 {Data: []byte("all:")},
		"api/v2/handler.ts":        {Data: []byte("export {}")},
		"docs/site/index.html":     {Data: []byte("<html>")},
		".git/hooks/pre-push.py":   {Data: []byte("print()")},
		".github/workflows/ci.yml": {Data: []byte("on: push")},
	}

	files, collectError := owners.CollectCodeFiles(repository)
	require.NoError(testInstance, collectError)
	require.Equal(testInstance, []string{"Makefile", "api/v2/handler.ts", "docs/site/index.html", "main.go"}, files)
}

func TestUncoveredPaths(testInstance *testing.T) {
	files := []string{"main.go", "api/v2/handler.ts", "api/v1/legacy.ts", "docs/site/index.html", "deploy/main.tf"}

	testCases := []struct {
		name     string
		rules    map[string][]string
		expected []string
	}{
		{
			name:     "root_rule_covers_everything",
			rules:    map[string][]string{"/": {"platform"}},
			expected: []string{},
		},
		{
			name:     "nested_rule_reports_first_directory",
			rules:    map[string][]string{"/api/v2/": {"bob"}, "/docs/": {"writers"}},
			expected: []string{"/", "/api/", "/deploy/"},
		},
		{
			name:     "prefix_match_is_textual",
			rules:    map[string][]string{"/main": {"alice"}, "/api": {"bob"}, "/d": {"carol"}},
			expected: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, owners.UncoveredPaths(testCase.rules, files))
		})
	}
}

func TestLoadCodeOwners(testInstance *testing.T) {
	missing, missingError := owners.LoadCodeOwners(fstest.MapFS{"main.go": {}})
	require.NoError(testInstance, missingError)
	require.False(testInstance, missing.Exists)

	present, presentError := owners.LoadCodeOwners(fstest.MapFS{".github/CODEOWNERS": {Data: []byte("* @platform\n")}})
	require.NoError(testInstance, presentError)
	require.True(testInstance, present.Exists)
	require.Equal(testInstance, map[string][]string{"/": {"platform"}}, present.Rules)
}
