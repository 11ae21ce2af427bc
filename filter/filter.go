// Package filter decides which type names take part in generation.
package filter

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Filter admits fully-qualified type names by include and exclude globs.
// It is immutable and safe for concurrent use.
type Filter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// New compiles the glob lists. In a glob, '*' matches any run of
// characters and everything else is literal. A pattern must match the
// whole name. An empty include list admits nothing; an empty exclude list
// excludes nothing.
func New(include, exclude []string) (*Filter, error) {
	in, err := compileGlobs(include)
	if err != nil {
		return nil, errors.Wrap(err, "include patterns")
	}
	ex, err := compileGlobs(exclude)
	if err != nil {
		return nil, errors.Wrap(err, "exclude patterns")
	}
	return &Filter{include: in, exclude: ex}, nil
}

func (f *Filter) Admits(name string) bool {
	if name == "" || f.include == nil {
		return false
	}
	if !f.include.MatchString(name) {
		return false
	}
	return f.exclude == nil || !f.exclude.MatchString(name)
}

// GlobToRegexp translates one glob into an unanchored expression.
func GlobToRegexp(glob string) string {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, "(.*)?")
}

func compileGlobs(globs []string) (*regexp.Regexp, error) {
	if len(globs) == 0 {
		return nil, nil
	}
	alts := make([]string, len(globs))
	for i, g := range globs {
		alts[i] = GlobToRegexp(g)
	}
	return regexp.Compile("^(?:" + strings.Join(alts, "|") + ")$")
}

// Blacklist matches member names against raw regular expressions. Like
// the globs, an expression must match the whole name.
type Blacklist struct {
	re *regexp.Regexp
}

func NewBlacklist(patterns []string) (*Blacklist, error) {
	if len(patterns) == 0 {
		return &Blacklist{}, nil
	}
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, errors.Wrapf(err, "blacklist pattern %q", p)
		}
	}
	re, err := regexp.Compile("^(?:" + strings.Join(patterns, "|") + ")$")
	if err != nil {
		return nil, errors.Wrap(err, "blacklist")
	}
	return &Blacklist{re: re}, nil
}

func (b *Blacklist) Matches(name string) bool {
	return b != nil && b.re != nil && b.re.MatchString(name)
}
