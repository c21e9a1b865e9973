// Command wetwire-eks synthesizes CloudFormation templates for EKS clusters
// described in a cluster.yaml file.
//
// Usage:
//
//	wetwire-eks init my-cluster       Write an example cluster.yaml
//	wetwire-eks build                 Generate the CloudFormation template
//	wetwire-eks lint                  Check cluster.yaml for issues
//	wetwire-eks deploy                Create or update the stack
//	wetwire-eks version               Show version
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/config"
)

// exitError carries a process exit code without printing anything further.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbosity  int
}

func (o *globalOptions) logger() logr.Logger {
	stdr.SetVerbosity(o.verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("wetwire-eks")
}

func (o *globalOptions) load() (*config.Config, error) {
	return config.LoadFile(o.configPath)
}

func (o *globalOptions) synthesize() (*config.Config, *config.Synthesized, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	synth, err := config.Synthesize(cfg, o.logger())
	if err != nil {
		return nil, nil, fmt.Errorf("synthesis failed: %w", err)
	}
	return cfg, synth, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "wetwire-eks",
		Short: "Generate CloudFormation templates for EKS clusters",
		Long: `wetwire-eks turns a cluster.yaml description into a CloudFormation template
containing the VPC, IAM roles, EKS control plane, nodegroups, Fargate
profiles, add-ons and access entries.

Start from an example:

    wetwire-eks init my-cluster

Then generate the template:

    wetwire-eks build -o template.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFilename, "Path to the cluster configuration")
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (repeatable)")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newValidateCmd(opts),
		newLintCmd(opts),
		newGraphCmd(opts),
		newDiffCmd(opts),
		newListCmd(opts),
		newWatchCmd(opts),
		newDeployCmd(opts),
		newKubeconfigCmd(opts),
		newInitCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wetwire-eks %s\n", getVersion())
		},
	}
}
