// Package report renders aging reports over repository items such as stale branches and pull requests.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	repositoryHeaderTemplateConstant = "%s:\n"
	authorSummaryTemplateConstant    = "  %s: (%d, %d)\n"
	repositorySeparatorConstant      = "\n"
	countKeyConstant                 = "count"
	yamlIndentConstant               = 2
	writeSummaryFailureConstant      = "write aging summary"
	encodeYAMLFailureConstant        = "encode aging report"
	invalidDaysMessageConstant       = "days must be a non-negative integer"
	invalidDaysTemplateConstant      = "invalid days argument %q"
)

// ErrInvalidDays indicates an age threshold that is not a non-negative integer.
var ErrInvalidDays = errors.New(invalidDaysMessageConstant)

// ItemsKeyBranches and ItemsKeyPullRequests name the item list in detailed reports.
const (
	ItemsKeyBranches     = "branches"
	ItemsKeyPullRequests = "prs"
)

// AgedItem is one aged entry of a repository.
type AgedItem struct {
	Repository string
	Name       string
	AgeDays    int
	Author     string
}

// ParseDays reads an age threshold argument.
func ParseDays(argument string) (int, error) {
	days, parseError := strconv.Atoi(strings.TrimSpace(argument))
	if parseError != nil || days < 0 {
		return 0, errors.Wrapf(ErrInvalidDays, invalidDaysTemplateConstant, argument)
	}
	return days, nil
}

// AgeInDays returns the number of whole days elapsed from instant to now, never negative.
func AgeInDays(now time.Time, instant time.Time) int {
	elapsed := now.Sub(instant)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

type authorGroup struct {
	author  string
	items   []AgedItem
	maximum int
}

type repositoryGroup struct {
	repository string
	authors    []*authorGroup
}

// WriteSummary prints each repository followed by one "author: (count, max)" line per author,
// ordered by maximum age descending and then by author name. Repositories keep first-seen order.
func WriteSummary(writer io.Writer, items []AgedItem) error {
	for _, group := range groupItems(items) {
		authors := append([]*authorGroup(nil), group.authors...)
		sort.SliceStable(authors, func(leftIndex int, rightIndex int) bool {
			if authors[leftIndex].maximum != authors[rightIndex].maximum {
				return authors[leftIndex].maximum > authors[rightIndex].maximum
			}
			return authors[leftIndex].author < authors[rightIndex].author
		})

		if _, writeError := fmt.Fprintf(writer, repositoryHeaderTemplateConstant, group.repository); writeError != nil {
			return errors.Wrap(writeError, writeSummaryFailureConstant)
		}
		for _, author := range authors {
			if _, writeError := fmt.Fprintf(writer, authorSummaryTemplateConstant, author.author, len(author.items), author.maximum); writeError != nil {
				return errors.Wrap(writeError, writeSummaryFailureConstant)
			}
		}
		if _, writeError := io.WriteString(writer, repositorySeparatorConstant); writeError != nil {
			return errors.Wrap(writeError, writeSummaryFailureConstant)
		}
	}
	return nil
}

// WriteDetailedYAML prints repository -> author -> {itemsKey: [{name: days}], count} as YAML.
// Authors are sorted by name and items oldest first.
func WriteDetailedYAML(writer io.Writer, items []AgedItem, itemsKey string) error {
	groups := groupItems(items)
	if len(groups) == 0 {
		return nil
	}

	document := &yaml.Node{Kind: yaml.MappingNode}
	for _, group := range groups {
		authors := append([]*authorGroup(nil), group.authors...)
		sort.SliceStable(authors, func(leftIndex int, rightIndex int) bool {
			return authors[leftIndex].author < authors[rightIndex].author
		})

		authorsNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, author := range authors {
			agedItems := append([]AgedItem(nil), author.items...)
			sort.SliceStable(agedItems, func(leftIndex int, rightIndex int) bool {
				return agedItems[leftIndex].AgeDays > agedItems[rightIndex].AgeDays
			})

			itemsNode := &yaml.Node{Kind: yaml.SequenceNode}
			for _, agedItem := range agedItems {
				itemsNode.Content = append(itemsNode.Content, mappingNode(scalarNode(agedItem.Name), integerNode(agedItem.AgeDays)))
			}
			authorNode := mappingNode(
				scalarNode(itemsKey), itemsNode,
				scalarNode(countKeyConstant), integerNode(len(agedItems)),
			)
			authorsNode.Content = append(authorsNode.Content, scalarNode(author.author), authorNode)
		}
		document.Content = append(document.Content, scalarNode(group.repository), authorsNode)
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return errors.Wrap(encodeError, encodeYAMLFailureConstant)
	}
	return errors.Wrap(encoder.Close(), encodeYAMLFailureConstant)
}

func groupItems(items []AgedItem) []*repositoryGroup {
	var groups []*repositoryGroup
	repositoryIndex := make(map[string]*repositoryGroup)
	authorIndex := make(map[string]map[string]*authorGroup)

	for _, item := range items {
		group, exists := repositoryIndex[item.Repository]
		if !exists {
			group = &repositoryGroup{repository: item.Repository}
			repositoryIndex[item.Repository] = group
			authorIndex[item.Repository] = make(map[string]*authorGroup)
			groups = append(groups, group)
		}
		author, authorExists := authorIndex[item.Repository][item.Author]
		if !authorExists {
			author = &authorGroup{author: item.Author, maximum: item.AgeDays}
			authorIndex[item.Repository][item.Author] = author
			group.authors = append(group.authors, author)
		}
		author.items = append(author.items, item)
		if item.AgeDays > author.maximum {
			author.maximum = item.AgeDays
		}
	}
	return groups
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func integerNode(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}
}

func mappingNode(keyValues ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: keyValues}
}
