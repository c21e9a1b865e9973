package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/deploy"
)

func newDeployCmd(opts *globalOptions) *cobra.Command {
	var (
		region       string
		pollInterval time.Duration
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update the CloudFormation stack",
		Long: `Deploy synthesizes the cluster configuration and applies it with CloudFormation.

The stack is created when it does not exist and updated otherwise. The command
waits until the stack settles and prints its outputs. AWS credentials are read
from the environment, the shared config files or the instance role.

Examples:
    wetwire-eks deploy
    wetwire-eks deploy --region eu-west-1 --timeout 45m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, synth, err := opts.synthesize()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), synth)

			body, err := encodeTemplate(synth.Template, "json")
			if err != nil {
				return err
			}

			if region == "" {
				region = cfg.Stack.Region
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			d, err := deploy.NewFromConfig(ctx, region, deploy.Options{
				Logger:       opts.logger(),
				PollInterval: pollInterval,
			})
			if err != nil {
				return err
			}

			result, err := d.Deploy(ctx, deploy.Request{
				StackName: cfg.Stack.Name,
				Template:  body,
				Tags:      cfg.Cluster.Tags,
			})
			if err != nil {
				return err
			}
			printDeployResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region (default: stack.region or the AWS config)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", deploy.DefaultPollInterval, "Delay between stack status checks")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Hour, "Give up waiting after this long")

	return cmd
}

func printDeployResult(w io.Writer, result *deploy.Result) {
	if result.NoChanges {
		fmt.Fprintf(w, "Stack %s is up to date\n", result.StackName)
	} else {
		fmt.Fprintf(w, "Stack %s: %s\n", result.StackName, result.Status)
	}

	keys := make([]string, 0, len(result.Outputs))
	for k := range result.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		fmt.Fprintln(w, "\nOutputs:")
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, result.Outputs[k])
	}
}
