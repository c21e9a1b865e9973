package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-eks-go"
)

func TestCfnLintResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   CfnLintResult
		expected int
	}{
		{
			name:     "empty result",
			result:   CfnLintResult{},
			expected: 0,
		},
		{
			name:     "errors only",
			result:   CfnLintResult{Errors: []string{"error1", "error2"}},
			expected: 2,
		},
		{
			name: "mixed issues",
			result: CfnLintResult{
				Errors:        []string{"error1"},
				Warnings:      []string{"warning1", "warning2"},
				Informational: []string{"info1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E3001"},
				Message: "Invalid resource",
			},
			expected: "E3001: Invalid resource",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W3005"},
				Message: "Obsolete DependsOn",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "Cluster", "DependsOn", 0},
				},
			},
			expected: "W3005: Obsolete DependsOn (at Resources/Cluster/DependsOn/0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestCategorize(t *testing.T) {
	result := categorize([]lint.Match{
		{Rule: lint.MatchRule{ID: "E1"}, Level: "Error", Message: "bad"},
		{Rule: lint.MatchRule{ID: "W1"}, Level: "Warning", Message: "meh"},
		{Rule: lint.MatchRule{ID: "I1"}, Level: "Informational", Message: "fyi"},
	})

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"E1: bad"}, result.Errors)
	assert.Equal(t, []string{"W1: meh"}, result.Warnings)
	assert.Equal(t, []string{"I1: fyi"}, result.Informational)

	clean := categorize(nil)
	assert.True(t, clean.Passed)
	assert.Zero(t, clean.TotalIssues())
}

func TestRunCfnLint_FileNotFound(t *testing.T) {
	result, err := RunCfnLint("/nonexistent/template.yaml")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Template file not found")
}

func TestRunCfnLint_ValidTemplate(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "template.yaml")
	validTemplate := `AWSTemplateFormatVersion: '2010-09-09'
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/16
`
	require.NoError(t, os.WriteFile(templatePath, []byte(validTemplate), 0o644))

	result, err := RunCfnLint(templatePath)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestValidate_SchemaErrors(t *testing.T) {
	tmpl := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"Cluster": {
				Type: "AWS::EKS::Cluster",
				Properties: map[string]any{
					"ResourcesVpcConfig": map[string]any{"SubnetIds": []any{"subnet-a"}},
				},
			},
		},
	}

	result, err := Validate(tmpl, Options{SkipCfnLint: true})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Resources)
	assert.Equal(t, []string{"Cluster.RoleArn: missing required property: RoleArn"}, result.Errors)
}

func TestValidate_Valid(t *testing.T) {
	tmpl := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"Vpc": {Type: "AWS::EC2::VPC", Properties: map[string]any{"CidrBlock": "10.0.0.0/16"}},
		},
	}

	result, err := Validate(tmpl, Options{SkipCfnLint: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
}

func TestValidate_NilTemplate(t *testing.T) {
	_, err := Validate(nil, Options{})
	assert.Error(t, err)
}
