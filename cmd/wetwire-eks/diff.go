package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/differ"
)

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> [template2]",
		Short: "Compare CloudFormation templates",
		Long: `Diff reports resources and outputs that were added, removed or modified.

With one argument the template file is compared against the template
synthesized from the current cluster configuration. JSON and YAML templates
can be mixed.

Examples:
    wetwire-eks diff deployed.json
    wetwire-eks diff old.yaml new.json --ignore-order`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diffOpts := differ.Options{IgnoreOrder: ignoreOrder}

			var (
				result *differ.Result
				err    error
			)
			if len(args) == 2 {
				result, err = differ.CompareFiles(args[0], args[1], diffOpts)
			} else {
				result, err = diffAgainstConfig(opts, args[0], diffOpts)
			}
			if err != nil {
				return err
			}
			return outputDiffResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore list ordering when comparing values")

	return cmd
}

func diffAgainstConfig(opts *globalOptions, path string, diffOpts differ.Options) (*differ.Result, error) {
	before, err := differ.LoadTemplate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	_, synth, err := opts.synthesize()
	if err != nil {
		return nil, err
	}
	// Round-trip through JSON so typed values compare like a parsed file.
	data, err := encodeTemplate(synth.Template, "json")
	if err != nil {
		return nil, err
	}
	after, err := differ.ParseTemplate(data)
	if err != nil {
		return nil, err
	}
	return differ.Compare(before, after, diffOpts)
}

func outputDiffResult(w io.Writer, result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Diff    wetwire.TemplateDiff `json:"diff"`
			Summary wetwire.DiffSummary  `json:"summary"`
		}{result.Diff, result.Summary}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Summary.Total == 0 {
			fmt.Fprintln(w, "No differences.")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Fprintf(w, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(w, "- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(w, "~ %s (%s)\n", e.Resource, e.Type)
			for _, change := range e.Changes {
				fmt.Fprintf(w, "    %s\n", change)
			}
		}
		for _, e := range result.Diff.Outputs {
			fmt.Fprintf(w, "~ Outputs.%s\n", e.Resource)
			for _, change := range e.Changes {
				fmt.Fprintf(w, "    %s\n", change)
			}
		}
		fmt.Fprintf(w, "\n%d added, %d removed, %d modified, %d outputs changed\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified, result.Summary.Outputs)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
