// Package linter checks a cluster.yaml configuration against EKS best
// practices before anything is synthesized.
package linter

import (
	"sort"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/config"
)

// Severity levels of lint issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []wetwire.LintIssue
}

// Errors returns the number of error-level issues.
func (r Result) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// Rules to skip, applied after EnabledRules.
	DisabledRules []string
}

// LintFile loads a configuration file and lints it.
func LintFile(path string, opts Options) (Result, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Lint(cfg, opts), nil
}

// Lint runs the selected rules over cfg.
func Lint(cfg *config.Config, opts Options) Result {
	var issues []wetwire.LintIssue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(cfg)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Rule < issues[j].Rule
	})

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	disabled := make(map[string]bool)
	for _, id := range opts.DisabledRules {
		disabled[id] = true
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}
