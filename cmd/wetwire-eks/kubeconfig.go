package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/config"
)

func newKubeconfigCmd(opts *globalOptions) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "kubeconfig",
		Short: "Print the commands that configure kubectl for the cluster",
		Long: `Kubeconfig prints the aws CLI commands that write a kubeconfig entry and
fetch an authentication token. When a masters role is configured as a
literal ARN, both commands assume it.

Examples:
    wetwire-eks kubeconfig
    wetwire-eks kubeconfig --region us-west-2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if region == "" {
				region = cfg.Stack.Region
			}
			if region == "" {
				return errors.New("region is required: set stack.region or pass --region")
			}

			declared, err := config.Declare(cfg, opts.logger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, declared.Cluster.ConfigCommand(region))
			fmt.Fprintln(out, declared.Cluster.GetTokenCommand(region))
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region (default: stack.region)")

	return cmd
}
