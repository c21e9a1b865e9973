package config

import (
	"fmt"

	"github.com/go-logr/logr"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/cluster"
	"github.com/lex00/wetwire-eks-go/network"
	"github.com/lex00/wetwire-eks-go/stack"
)

// Declared is a configuration turned into library constructs.
type Declared struct {
	Stack   *stack.Stack
	Vpc     network.Vpc
	Cluster *cluster.Cluster
}

// Synthesized is a declared configuration and its template.
type Synthesized struct {
	*Declared
	Template *wetwire.Template
}

// Declare registers the network, cluster and capacity described by cfg on a
// new stack.
func Declare(cfg *Config, log logr.Logger) (*Declared, error) {
	s := stack.New(cfg.Stack.Name, stack.Props{
		Description: cfg.Stack.Description,
		Region:      cfg.Stack.Region,
		Logger:      log,
	})

	vpc, err := declareNetwork(s, cfg.Network, cfg.Cluster.Tags)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	props, err := clusterProps(cfg.Cluster)
	if err != nil {
		return nil, err
	}
	props.Vpc = vpc

	c, err := cluster.New(s, "Cluster", props)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	for _, ng := range cfg.Nodegroups {
		opts := cluster.NodegroupOptions{
			NodegroupName:  ng.Name,
			InstanceTypes:  ng.InstanceTypes,
			AmiType:        ng.AmiType,
			CapacityType:   ng.CapacityType,
			DiskSize:       ng.DiskSize,
			ReleaseVersion: ng.ReleaseVersion,
			MinSize:        ng.MinSize,
			DesiredSize:    ng.DesiredSize,
			MaxSize:        ng.MaxSize,
			MaxUnavailable: ng.MaxUnavailable,
			Labels:         ng.Labels,
			Tags:           ng.Tags,
		}
		for _, t := range ng.Taints {
			opts.Taints = append(opts.Taints, cluster.Taint{Key: t.Key, Value: t.Value, Effect: t.Effect})
		}
		if ng.NodeRole != "" {
			opts.NodeRole = ng.NodeRole
		}
		if ng.Placement == "public" {
			opts.Subnets = vpc.PublicSubnets()
		}
		if _, err := c.AddNodegroupCapacity(ng.ID, opts); err != nil {
			return nil, fmt.Errorf("nodegroup %s: %w", ng.ID, err)
		}
	}

	for _, fp := range cfg.FargateProfiles {
		opts := cluster.FargateProfileOptions{
			FargateProfileName: fp.Name,
			Tags:               fp.Tags,
		}
		for _, sel := range fp.Selectors {
			opts.Selectors = append(opts.Selectors, cluster.FargateSelector{Namespace: sel.Namespace, Labels: sel.Labels})
		}
		if fp.PodExecutionRole != "" {
			opts.PodExecutionRole = fp.PodExecutionRole
		}
		if _, err := c.AddFargateProfile(fp.ID, opts); err != nil {
			return nil, err
		}
	}

	for _, addon := range cfg.Addons {
		opts := cluster.AddonOptions{
			AddonName:           addon.Name,
			AddonVersion:        addon.Version,
			ResolveConflicts:    addon.ResolveConflicts,
			ConfigurationValues: addon.ConfigurationValues,
			Tags:                addon.Tags,
		}
		if addon.ServiceAccountRoleArn != "" {
			opts.ServiceAccountRoleArn = addon.ServiceAccountRoleArn
		}
		if _, err := c.AddAddon(addon.ID, opts); err != nil {
			return nil, err
		}
	}

	for _, entry := range cfg.AccessEntries {
		if err := c.GrantAccess(entry.ID, accessPrincipal(entry.AccessConfig)); err != nil {
			return nil, fmt.Errorf("access entry %s: %w", entry.ID, err)
		}
	}

	return &Declared{Stack: s, Vpc: vpc, Cluster: c}, nil
}

// Synthesize declares cfg and builds its template.
func Synthesize(cfg *Config, log logr.Logger) (*Synthesized, error) {
	d, err := Declare(cfg, log)
	if err != nil {
		return nil, err
	}
	tmpl, err := d.Stack.Synth()
	if err != nil {
		return nil, err
	}
	return &Synthesized{Declared: d, Template: tmpl}, nil
}

func declareNetwork(s *stack.Stack, n NetworkConfig, tags map[string]string) (network.Vpc, error) {
	if n.Imported() {
		return network.FromAttributes(network.Attributes{
			VpcID:            n.VpcID,
			PrivateSubnetIDs: n.PrivateSubnetIDs,
			PublicSubnetIDs:  n.PublicSubnetIDs,
		})
	}
	return network.New(s, "Vpc", network.Props{
		CIDR:           n.CIDR,
		MaxAZs:         n.MaxAZs,
		SubnetCidrMask: n.SubnetCidrMask,
		NatGateways:    n.NatGateways,
		Tags:           tags,
	})
}

func clusterProps(c ClusterConfig) (cluster.Props, error) {
	access, err := cluster.ParseEndpointAccess(c.EndpointAccess)
	if err != nil {
		return cluster.Props{}, fmt.Errorf("cluster: %w", err)
	}
	if len(c.PublicAccessCIDRs) > 0 {
		access, err = access.OnlyFrom(c.PublicAccessCIDRs...)
		if err != nil {
			return cluster.Props{}, fmt.Errorf("cluster: %w", err)
		}
	}

	props := cluster.Props{
		ClusterName:                  c.Name,
		Version:                      c.Version,
		IPFamily:                     cluster.IPFamily(c.IPFamily),
		ServiceIPv4CIDR:              c.ServiceIPv4CIDR,
		EndpointAccess:               access,
		Tags:                         c.Tags,
		DefaultCapacity:              c.DefaultCapacity,
		DefaultCapacityInstanceTypes: c.DefaultCapacityInstanceTypes,
		OutputClusterName:            c.OutputClusterName,
		OutputMastersRoleArn:         c.OutputMastersRoleArn,
		DisableConfigCommand:         c.DisableConfigCommand,
	}
	// Optional ARNs stay nil so the cluster creates its own resources.
	if c.MastersRole != "" {
		props.MastersRole = c.MastersRole
	}
	if c.Role != "" {
		props.Role = c.Role
	}
	if c.SecretsEncryptionKey != "" {
		props.SecretsEncryptionKey = c.SecretsEncryptionKey
	}
	if c.SecurityGroup != "" {
		props.SecurityGroup = c.SecurityGroup
	}
	for _, l := range c.Logging {
		props.Logging = append(props.Logging, cluster.LogType(l))
	}
	if c.AccessPrincipal != nil {
		p := accessPrincipal(*c.AccessPrincipal)
		props.AccessPrincipal = &p
	}
	return props, nil
}

func accessPrincipal(a AccessConfig) cluster.AccessPrincipal {
	p := cluster.AccessPrincipal{
		KubernetesGroups: a.KubernetesGroups,
		Username:         a.Username,
	}
	if a.PrincipalArn != "" {
		p.PrincipalArn = a.PrincipalArn
	}
	for _, policy := range a.AccessPolicies {
		p.AccessPolicies = append(p.AccessPolicies, cluster.AccessPolicy{
			PolicyName: policy.Policy,
			Namespaces: policy.Namespaces,
		})
	}
	return p
}
