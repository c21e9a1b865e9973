package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/linter"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		enabled      []string
		disabled     []string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the cluster configuration for issues",
		Long: `Lint checks cluster.yaml against EKS best practices.

Rules:
    WEK001: Public API endpoint open to the internet
    WEK002: Kubernetes secrets not envelope-encrypted
    WEK003: Control plane audit logging disabled
    WEK004: Nodegroup placed in a single subnet
    WEK005: Add-on version not pinned
    WEK006: Kubernetes version invalid or out of standard support
    WEK007: Spot nodegroup with a single instance type
    WEK008: Private nodegroups without NAT egress

Examples:
    wetwire-eks lint
    wetwire-eks lint --disable WEK005 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := linter.LintFile(opts.configPath, linter.Options{
				EnabledRules:  enabled,
				DisabledRules: disabled,
			})
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}
			return outputLintResult(cmd.OutOrStdout(), wetwire.LintResult{
				Success: result.Success,
				Issues:  result.Issues,
			}, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&enabled, "enable", nil, "Only run these rules")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Skip these rules")

	return cmd
}

func outputLintResult(w io.Writer, result wetwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintln(w, "No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			fmt.Fprintf(w, "%s: %s: %s [%s]\n", issue.Path, issue.Severity, issue.Message, issue.Rule)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return exitError{code: 2} // Exit code 2 for issues found
	}

	return nil
}
