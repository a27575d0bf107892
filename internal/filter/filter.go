// Package filter decides which directory entries take part in an
// organize run.
//
// Rules are checked in a fixed order and the first one that matches
// decides: include patterns, the hidden-file switch, exact filenames,
// extensions, exclude globs, then regular expressions. An entry no rule
// claims is included.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"dirtidy/internal/config"
	serr "dirtidy/internal/errors"
	"dirtidy/pkg/types"
)

// RuleKind identifies the rule that decided an entry.
type RuleKind int

const (
	RuleDefault RuleKind = iota
	RuleInclude
	RuleHidden
	RuleFilename
	RuleExtension
	RulePattern
	RuleRegex
)

var ruleNames = map[RuleKind]string{
	RuleDefault:   "default",
	RuleInclude:   "include.patterns",
	RuleHidden:    "hidden",
	RuleFilename:  "exclude.filenames",
	RuleExtension: "exclude.extensions",
	RulePattern:   "exclude.patterns",
	RuleRegex:     "exclude.regex",
}

func (k RuleKind) String() string {
	if name, ok := ruleNames[k]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(k))
}

// Decision is the verdict for one entry.
type Decision struct {
	Included bool
	Rule     RuleKind
	Match    string // the pattern, name or extension that matched; empty for RuleDefault and RuleHidden
}

// String renders the rule and its match, e.g. `exclude.extensions "bak"`.
func (d Decision) String() string {
	if d.Match == "" {
		return d.Rule.String()
	}
	return fmt.Sprintf("%s %q", d.Rule, d.Match)
}

// rule is one step of the cascade. Each kind keeps its own normalization.
type rule interface {
	kind() RuleKind
	match(e types.FileEntry) (string, bool)
}

type includeRule struct{ globs []*pathGlob }

func (r includeRule) kind() RuleKind { return RuleInclude }
func (r includeRule) match(e types.FileEntry) (string, bool) {
	return matchGlobs(r.globs, e.Name)
}

type hiddenRule struct{ enabled bool }

func (r hiddenRule) kind() RuleKind { return RuleHidden }
func (r hiddenRule) match(e types.FileEntry) (string, bool) {
	return "", e.IsHidden && !r.enabled
}

// filenameRule matches exact names, case-sensitively.
type filenameRule struct{ names map[string]struct{} }

func (r filenameRule) kind() RuleKind { return RuleFilename }
func (r filenameRule) match(e types.FileEntry) (string, bool) {
	_, ok := r.names[e.Name]
	return e.Name, ok
}

// extensionRule holds lower-cased extensions without the dot.
type extensionRule struct{ exts map[string]struct{} }

func (r extensionRule) kind() RuleKind { return RuleExtension }
func (r extensionRule) match(e types.FileEntry) (string, bool) {
	if !e.HasExtension() {
		return "", false
	}
	ext := strings.ToLower(e.Extension)
	_, ok := r.exts[ext]
	return ext, ok
}

type patternRule struct{ globs []*pathGlob }

func (r patternRule) kind() RuleKind { return RulePattern }
func (r patternRule) match(e types.FileEntry) (string, bool) {
	return matchGlobs(r.globs, e.Name)
}

// regexRule is applied to the file name, never the full path.
type regexRule struct{ res []*regexp.Regexp }

func (r regexRule) kind() RuleKind { return RuleRegex }
func (r regexRule) match(e types.FileEntry) (string, bool) {
	for _, re := range r.res {
		if re.MatchString(e.Name) {
			return re.String(), true
		}
	}
	return "", false
}

func matchGlobs(globs []*pathGlob, name string) (string, bool) {
	for _, g := range globs {
		if g.Match(name) {
			return g.String(), true
		}
	}
	return "", false
}

// Engine holds the compiled rules for one run. It is immutable after New
// and safe for concurrent use.
type Engine struct {
	rules []rule
}

// New compiles cfg. Every glob and regex is compiled here, once.
func New(cfg config.FilterConfig) (*Engine, error) {
	include := includeRule{}
	for i, p := range cfg.Include.Patterns {
		g, err := compileGlob(p)
		if err != nil {
			return nil, serr.NewConfigError("invalid glob pattern", fmt.Sprintf("filters.include.patterns[%d]", i), serr.InvalidConfig, err)
		}
		include.globs = append(include.globs, g)
	}

	filenames := filenameRule{names: make(map[string]struct{}, len(cfg.Exclude.Filenames))}
	for _, name := range cfg.Exclude.Filenames {
		filenames.names[name] = struct{}{}
	}

	exts := extensionRule{exts: make(map[string]struct{}, len(cfg.Exclude.Extensions))}
	for _, ext := range cfg.Exclude.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts.exts[ext] = struct{}{}
		}
	}

	patterns := patternRule{}
	for i, p := range cfg.Exclude.Patterns {
		g, err := compileGlob(p)
		if err != nil {
			return nil, serr.NewConfigError("invalid glob pattern", fmt.Sprintf("filters.exclude.patterns[%d]", i), serr.InvalidConfig, err)
		}
		patterns.globs = append(patterns.globs, g)
	}

	regexes := regexRule{}
	for i, expr := range cfg.Exclude.Regex {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, serr.NewConfigError("invalid regex pattern", fmt.Sprintf("filters.exclude.regex[%d]", i), serr.InvalidConfig, err)
		}
		regexes.res = append(regexes.res, re)
	}

	return &Engine{rules: []rule{
		include,
		hiddenRule{enabled: cfg.EnableHiddenFiles},
		filenames,
		exts,
		patterns,
		regexes,
	}}, nil
}

// Decide runs the cascade for one entry. The result depends only on the
// entry's name, hidden flag and extension.
func (e *Engine) Decide(entry types.FileEntry) Decision {
	for _, r := range e.rules {
		if m, ok := r.match(entry); ok {
			return Decision{Included: r.kind() == RuleInclude, Rule: r.kind(), Match: m}
		}
	}
	return Decision{Included: true, Rule: RuleDefault}
}

// Included is shorthand for Decide(entry).Included.
func (e *Engine) Included(entry types.FileEntry) bool {
	return e.Decide(entry).Included
}
