// Package rename batch-renames the files of one folder to prefix+number+extension,
// pulling the number out of each name with an ordered list of regex rules.
package rename

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ExtractKind tags how a rule turns a regex match into a name suffix.
type ExtractKind int

const (
	// ExtractGroup1 uses the text of the first capturing group.
	ExtractGroup1 ExtractKind = iota
)

// Rule is one entry of the ordered rule list tried against each filename.
type Rule struct {
	Name    string
	Pattern string
	Extract ExtractKind

	re *regexp.Regexp
}

// NewRule compiles pattern into a rule. The pattern needs at least one capturing group.
func NewRule(name, pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: pattern %q: %v", ErrInvalidInput, pattern, err)
	}
	if re.NumSubexp() < 1 {
		return Rule{}, fmt.Errorf("%w: pattern %q has no capturing group", ErrInvalidInput, pattern)
	}
	return Rule{Name: name, Pattern: pattern, Extract: ExtractGroup1, re: re}, nil
}

func mustRule(name, pattern string) Rule {
	r, err := NewRule(name, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRules = []Rule{
	mustRule("digits after EP", `EP(\d+)`),
	mustRule("first digit run", `(\d+)`),
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return slices.Clone(defaultRules)
}

// Rules builds the rule list for one call: the custom pattern first when it is usable,
// followed by the defaults. A bad custom pattern is dropped and reported through the
// returned error; the returned rules are always usable.
func Rules(customPattern string) ([]Rule, error) {
	customPattern = strings.TrimSpace(customPattern)
	if customPattern == "" {
		return DefaultRules(), nil
	}

	custom, err := NewRule("custom", customPattern)
	if err != nil {
		return DefaultRules(), err
	}
	return append([]Rule{custom}, defaultRules...), nil
}

// extract applies the rule to name. matched reports whether the pattern hit at all;
// suffix is empty when the capture is empty or did not participate.
func (r Rule) extract(name string) (suffix string, matched bool) {
	if r.re == nil {
		return "", false
	}
	m := r.re.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}

	switch r.Extract {
	case ExtractGroup1:
		return m[1], true
	default:
		return "", true
	}
}

// Match returns the suffix extracted by the first rule whose pattern matches
// filename. That rule is final: an empty capture yields no match.
func Match(filename string, rules []Rule) (string, bool) {
	for _, r := range rules {
		if suffix, matched := r.extract(filename); matched {
			return suffix, suffix != ""
		}
	}
	return "", false
}
