package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/lex00/wetwire-eks-go/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <cluster-name>",
		Short: "Write an example cluster configuration",
		Long: `Init writes an example cluster.yaml for a new cluster.

The example creates a two-AZ VPC, a managed nodegroup and the core add-ons.
The file is not overwritten if it already exists.

Examples:
    wetwire-eks init dev           # Creates ./cluster.yaml
    wetwire-eks init prod -c prod.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil || path == "" {
				path = config.DefaultConfigFilename
			}
			return runInit(cmd.OutOrStdout(), path, args[0])
		},
	}
}

// runInit writes an example configuration for clusterName to path.
func runInit(w io.Writer, path, clusterName string) error {
	// Cluster names end up in DNS labels and IAM names.
	if errs := validation.IsDNS1123Label(clusterName); len(errs) > 0 {
		return fmt.Errorf("invalid cluster name %q: %s", clusterName, errs[0])
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	data, err := config.Marshal(config.Example(clusterName))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(w, "Created %s\n", path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "  wetwire-eks lint -c %s\n", path)
	fmt.Fprintf(w, "  wetwire-eks build -c %s -o template.json\n", path)
	fmt.Fprintln(w)

	return nil
}
