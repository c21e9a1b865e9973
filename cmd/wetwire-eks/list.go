package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the resources the configuration declares",
		Long: `List shows every resource in creation order with its type and dependencies.

Examples:
    wetwire-eks list
    wetwire-eks list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, synth, err := opts.synthesize()
			if err != nil {
				return err
			}
			resources, err := synth.Stack.List()
			if err != nil {
				return err
			}
			return outputListResult(cmd.OutOrStdout(), wetwire.ListResult{Resources: resources}, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func outputListResult(w io.Writer, result wetwire.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(w, "No resources found.")
			return nil
		}

		fmt.Fprintf(w, "Resources (%d):\n\n", len(result.Resources))
		for _, res := range result.Resources {
			if len(res.DependsOn) == 0 {
				fmt.Fprintf(w, "  %s: %s\n", res.Name, res.Type)
				continue
			}
			fmt.Fprintf(w, "  %s: %s <- %s\n", res.Name, res.Type, strings.Join(res.DependsOn, ", "))
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
