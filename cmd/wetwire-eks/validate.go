package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking the synthesized template.
func newValidateCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		strict       bool
		skipCfnLint  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the synthesized template",
		Long: `Validate synthesizes the cluster configuration and checks the template.

Checks performed:
  - Schema: required properties, types and allowed values per resource type
  - Attributes: Fn::GetAtt targets exist on the referenced resource type
  - cfn-lint: the full cfn-lint rule set (skip with --skip-cfn-lint)

Examples:
    wetwire-eks validate
    wetwire-eks validate --strict --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, synth, err := opts.synthesize()
			if err != nil {
				return err
			}
			result, err := validation.Validate(synth.Template, validation.Options{
				Strict:      strict,
				SkipCfnLint: skipCfnLint,
			})
			if err != nil {
				return err
			}
			return outputValidateResult(cmd.OutOrStdout(), *result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "Report unknown properties as warnings")
	cmd.Flags().BoolVar(&skipCfnLint, "skip-cfn-lint", false, "Only run the schema checks")

	return cmd
}

func outputValidateResult(w io.Writer, result wetwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Fprintln(w, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return exitError{code: 1}
	}

	return nil
}
