package cluster

import (
	"strings"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
)

// ConfigCommand returns the command that writes a kubeconfig entry for the
// cluster in the given region. The masters role ARN is appended only when
// it is a literal string.
func (c *Cluster) ConfigCommand(region string) string {
	return literal(c.configCommandParts(region))
}

// GetTokenCommand returns the command that prints an authentication token
// for the cluster in the given region.
func (c *Cluster) GetTokenCommand(region string) string {
	return literal(c.getTokenCommandParts(region))
}

func (c *Cluster) configCommandParts(region any) []any {
	return c.withMastersRole("aws eks update-kubeconfig --name "+c.name+" --region ", region)
}

func (c *Cluster) getTokenCommandParts(region any) []any {
	return c.withMastersRole("aws eks get-token --cluster-name "+c.name+" --region ", region)
}

func (c *Cluster) withMastersRole(prefix string, region any) []any {
	parts := []any{prefix, region}
	if c.props.MastersRole != nil {
		parts = append(parts, " --role-arn ", c.props.MastersRole)
	}
	return parts
}

func (c *Cluster) addOutputs() error {
	if c.props.OutputClusterName {
		if err := c.stack.AddOutput(c.id+"ClusterName", wetwire.Output{
			Description: "EKS cluster name",
			Value:       c.ClusterName(),
		}); err != nil {
			return err
		}
	}
	if c.props.OutputMastersRoleArn && c.props.MastersRole != nil {
		if err := c.stack.AddOutput(c.id+"MastersRoleArn", wetwire.Output{
			Description: "IAM role granted cluster admin",
			Value:       c.props.MastersRole,
		}); err != nil {
			return err
		}
	}
	if c.props.DisableConfigCommand {
		return nil
	}

	region := c.stack.Region()
	if err := c.stack.AddOutput(c.id+"ConfigCommand", wetwire.Output{
		Description: "Command to update kubeconfig for the cluster",
		Value:       joinOrString(c.configCommandParts(region)),
	}); err != nil {
		return err
	}
	return c.stack.AddOutput(c.id+"GetTokenCommand", wetwire.Output{
		Description: "Command to get an authentication token for the cluster",
		Value:       joinOrString(c.getTokenCommandParts(region)),
	})
}

// joinOrString concatenates the parts when they are all strings and falls
// back to Fn::Join when any part is an intrinsic.
func joinOrString(parts []any) any {
	for _, p := range parts {
		if _, ok := p.(string); !ok {
			return intrinsics.Join{Delimiter: "", Values: parts}
		}
	}
	return concat(parts)
}

// literal drops a trailing role ARN that cannot be rendered as text.
func literal(parts []any) string {
	if len(parts) == 4 {
		if _, ok := parts[3].(string); !ok {
			parts = parts[:2]
		}
	}
	return concat(parts)
}

func concat(parts []any) string {
	var b strings.Builder
	for _, p := range parts {
		if s, ok := p.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}
