package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/config"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the CloudFormation template",
		Long: `Build reads the cluster configuration and writes the synthesized template.

Construction warnings (unsupported options, ignored settings) are printed to
stderr.

Examples:
    wetwire-eks build
    wetwire-eks build -c prod.yaml -o template.json
    wetwire-eks build --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, synth, err := opts.synthesize()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), synth)
			return writeTemplate(cmd.OutOrStdout(), synth.Template, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func encodeTemplate(tmpl *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func writeTemplate(w io.Writer, tmpl *wetwire.Template, format, outputFile string) error {
	data, err := encodeTemplate(tmpl, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}

	return os.WriteFile(outputFile, data, 0644)
}

func printWarnings(w io.Writer, synth *config.Synthesized) {
	for _, warning := range synth.Stack.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
