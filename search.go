package guacamole

import (
	"regexp"

	"github.com/guacops/go-guacamole/apperrors"
	"github.com/tidwall/gjson"
)

// ErrBadPattern indicates an invalid regular expression was passed to a
// name search.
var ErrBadPattern = apperrors.New("invalid name pattern")

// nameMatcher matches entity name fields either exactly (case-sensitive)
// or against a compiled regular expression.
type nameMatcher struct {
	name string
	re   *regexp.Regexp
}

func newNameMatcher(name string, useRegex bool) (*nameMatcher, error) {
	m := &nameMatcher{name: name}
	if useRegex {
		re, err := regexp.Compile(name)
		if err != nil {
			return nil, ErrBadPattern.Err(err)
		}
		m.re = re
	}
	return m, nil
}

func (m *nameMatcher) matches(name string) bool {
	if m.re != nil {
		return m.re.MatchString(name)
	}
	return m.name == name
}

// findFirstByName scans an identifier-keyed collection for the first entry
// whose name field matches. Returns nil when nothing matches.
func findFirstByName(list []byte, matcher *nameMatcher) []byte {
	var found []byte
	gjson.ParseBytes(list).ForEach(func(_, entry gjson.Result) bool {
		if matcher.matches(entry.Get("name").String()) {
			found = []byte(entry.Raw)
			return false
		}
		return true
	})
	return found
}

// findAllByName scans an identifier-keyed collection and returns every
// matching entry.
func findAllByName(list []byte, matcher *nameMatcher) [][]byte {
	var found [][]byte
	gjson.ParseBytes(list).ForEach(func(_, entry gjson.Result) bool {
		if matcher.matches(entry.Get("name").String()) {
			found = append(found, []byte(entry.Raw))
		}
		return true
	})
	return found
}

// findGroupByName searches a connection group collection. Depending on the
// server version the response is either a flat identifier-keyed map or a
// tree with nested childConnectionGroups; both shapes are handled by
// recursing depth-first into every node's children.
func findGroupByName(list []byte, matcher *nameMatcher) []byte {
	var found []byte
	gjson.ParseBytes(list).ForEach(func(_, entry gjson.Result) bool {
		found = searchGroupNode(entry, matcher)
		return found == nil
	})
	return found
}

func searchGroupNode(node gjson.Result, matcher *nameMatcher) []byte {
	if matcher.matches(node.Get("name").String()) {
		return []byte(node.Raw)
	}
	var found []byte
	node.Get("childConnectionGroups").ForEach(func(_, child gjson.Result) bool {
		found = searchGroupNode(child, matcher)
		return found == nil
	})
	return found
}
