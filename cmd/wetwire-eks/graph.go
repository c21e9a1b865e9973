package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/graph"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat      string
		includeParameters bool
		clusterByService  bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of resource dependencies",
		Long: `Generate a DOT or Mermaid graph of the synthesized template's dependencies.

The output can be rendered with Graphviz:
    wetwire-eks graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    wetwire-eks graph -f mermaid

Examples:
    wetwire-eks graph
    wetwire-eks graph -p              # include parameters
    wetwire-eks graph -s              # cluster by service
    wetwire-eks graph -f mermaid      # mermaid format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			_, synth, err := opts.synthesize()
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:            graphFormat,
				IncludeParameters: includeParameters,
				ClusterByService:  clusterByService,
			}
			return gen.Generate(synth.Template, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&includeParameters, "include-parameters", "p", false, "Include parameter nodes in the graph")
	cmd.Flags().BoolVarP(&clusterByService, "service", "s", false, "Cluster resources by AWS service")

	return cmd
}
