package reaper

import "strings"

// A Matcher decides whether a discovered resource belongs to the project and
// is therefore a teardown candidate. Each resource kind has its own matching
// rule.
type Matcher interface {
	Matches(name string, tags map[string]string) bool
}

// TagMatcher matches resources carrying the project tag. This is the rule
// for instances and security groups.
type TagMatcher struct {
	Key   string
	Value string
}

func (m TagMatcher) Matches(_ string, tags map[string]string) bool {
	return tags[m.Key] == m.Value
}

// PrefixMatcher matches resources by name prefix. Key pairs carry no usable
// tag handle in the lab scripts, their naming convention is the only way to
// find them.
type PrefixMatcher struct {
	Prefix string
}

func (m PrefixMatcher) Matches(name string, _ map[string]string) bool {
	return strings.HasPrefix(name, m.Prefix)
}

// AnyMatcher matches when at least one of its matchers does. Buckets use the
// OR of tag match and name prefix: a bucket that lost its tags (or was
// created before tagging was added to the lab scripts) is still collected by
// name. This widens bucket matching compared to the tag-only rule of the
// other kinds and is kept deliberately.
type AnyMatcher []Matcher

func (m AnyMatcher) Matches(name string, tags map[string]string) bool {
	for _, matcher := range m {
		if matcher.Matches(name, tags) {
			return true
		}
	}
	return false
}
