// Package validation checks synthesized templates.
//
// Two passes run over a template:
//   - schema: offline checks of the EKS, IAM and EC2 resource types (internal/schema)
//   - cfn-lint-go: CloudFormation linting (library dependency)
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/schema"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Options configures Validate.
type Options struct {
	// Strict reports unknown resource properties as warnings.
	Strict bool
	// SkipCfnLint runs only the schema pass.
	SkipCfnLint bool
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	return categorize(matches), nil
}

// LintTemplate writes the template to a temporary YAML file and lints it.
func LintTemplate(tmpl *wetwire.Template) (*CfnLintResult, error) {
	data, err := template.ToYAML(tmpl)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}

	dir, err := os.MkdirTemp("", "wetwire-eks-lint-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return RunCfnLint(path)
}

// Validate runs the schema pass and, unless skipped, cfn-lint over tmpl.
func Validate(tmpl *wetwire.Template, opts Options) (*wetwire.ValidateResult, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is nil")
	}

	result := &wetwire.ValidateResult{Resources: len(tmpl.Resources)}

	schemaResult, err := schema.ValidateTemplate(tmpl, schema.Options{Strict: opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	for _, e := range schemaResult.Errors {
		result.Errors = append(result.Errors, formatSchemaError(e))
	}
	for _, w := range schemaResult.Warnings {
		result.Warnings = append(result.Warnings, formatSchemaError(w))
	}

	if !opts.SkipCfnLint {
		lintResult, err := LintTemplate(tmpl)
		if err != nil {
			return nil, fmt.Errorf("running cfn-lint: %w", err)
		}
		result.Errors = append(result.Errors, lintResult.Errors...)
		result.Warnings = append(result.Warnings, lintResult.Warnings...)
		result.Warnings = append(result.Warnings, lintResult.Informational...)
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

func categorize(matches []lint.Match) *CfnLintResult {
	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0
	return result
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

func formatSchemaError(e wetwire.SchemaError) string {
	if e.Property == "" {
		return fmt.Sprintf("%s: %s", e.Resource, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Property, e.Message)
}
