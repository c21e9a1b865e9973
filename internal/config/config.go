// Package config loads the cluster.yaml file that drives the wetwire-eks CLI.
package config

import (
	"errors"
	"fmt"
	"net"
)

// DefaultConfigFilename is the file the CLI looks for when none is given.
const DefaultConfigFilename = "cluster.yaml"

// Config is the root of cluster.yaml.
type Config struct {
	Stack           StackConfig            `yaml:"stack"`
	Network         NetworkConfig          `yaml:"network"`
	Cluster         ClusterConfig          `yaml:"cluster"`
	Nodegroups      []NodegroupConfig      `yaml:"nodegroups,omitempty"`
	FargateProfiles []FargateProfileConfig `yaml:"fargateProfiles,omitempty"`
	Addons          []AddonConfig          `yaml:"addons,omitempty"`
	AccessEntries   []AccessEntryConfig    `yaml:"accessEntries,omitempty"`
}

// StackConfig names the CloudFormation stack.
type StackConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Region pins the region. Empty resolves through AWS::Region.
	Region string `yaml:"region,omitempty"`
}

// NetworkConfig either creates a VPC or imports an existing one.
// Setting VpcID selects import.
type NetworkConfig struct {
	CIDR           string `yaml:"cidr,omitempty"`
	MaxAZs         int    `yaml:"maxAZs,omitempty"`
	SubnetCidrMask int    `yaml:"subnetCidrMask,omitempty"`
	NatGateways    *int   `yaml:"natGateways,omitempty"`

	VpcID            string   `yaml:"vpcId,omitempty"`
	PrivateSubnetIDs []string `yaml:"privateSubnetIds,omitempty"`
	PublicSubnetIDs  []string `yaml:"publicSubnetIds,omitempty"`
}

// Imported reports whether the network refers to an existing VPC.
func (n NetworkConfig) Imported() bool { return n.VpcID != "" }

// ClusterConfig mirrors cluster.Props.
type ClusterConfig struct {
	Name                 string            `yaml:"name"`
	Version              string            `yaml:"version,omitempty"`
	IPFamily             string            `yaml:"ipFamily,omitempty"`
	ServiceIPv4CIDR      string            `yaml:"serviceIpv4Cidr,omitempty"`
	EndpointAccess       string            `yaml:"endpointAccess,omitempty"`
	PublicAccessCIDRs    []string          `yaml:"publicAccessCidrs,omitempty"`
	MastersRole          string            `yaml:"mastersRole,omitempty"`
	Role                 string            `yaml:"role,omitempty"`
	SecretsEncryptionKey string            `yaml:"secretsEncryptionKey,omitempty"`
	SecurityGroup        string            `yaml:"securityGroup,omitempty"`
	Logging              []string          `yaml:"logging,omitempty"`
	Tags                 map[string]string `yaml:"tags,omitempty"`
	AccessPrincipal      *AccessConfig     `yaml:"accessPrincipal,omitempty"`

	DefaultCapacity              *int     `yaml:"defaultCapacity,omitempty"`
	DefaultCapacityInstanceTypes []string `yaml:"defaultCapacityInstanceTypes,omitempty"`

	OutputClusterName    bool `yaml:"outputClusterName,omitempty"`
	OutputMastersRoleArn bool `yaml:"outputMastersRoleArn,omitempty"`
	DisableConfigCommand bool `yaml:"disableConfigCommand,omitempty"`
}

// NodegroupConfig declares a managed node group.
type NodegroupConfig struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name,omitempty"`
	InstanceTypes  []string          `yaml:"instanceTypes,omitempty"`
	AmiType        string            `yaml:"amiType,omitempty"`
	CapacityType   string            `yaml:"capacityType,omitempty"`
	DiskSize       int               `yaml:"diskSize,omitempty"`
	ReleaseVersion string            `yaml:"releaseVersion,omitempty"`
	MinSize        *int              `yaml:"minSize,omitempty"`
	DesiredSize    *int              `yaml:"desiredSize,omitempty"`
	MaxSize        *int              `yaml:"maxSize,omitempty"`
	MaxUnavailable int               `yaml:"maxUnavailable,omitempty"`
	Labels         map[string]string `yaml:"labels,omitempty"`
	Taints         []TaintConfig     `yaml:"taints,omitempty"`
	NodeRole       string            `yaml:"nodeRole,omitempty"`
	// Placement is "private" (default) or "public".
	Placement string            `yaml:"placement,omitempty"`
	Tags      map[string]string `yaml:"tags,omitempty"`
}

// TaintConfig is a node taint.
type TaintConfig struct {
	Key    string `yaml:"key"`
	Value  string `yaml:"value,omitempty"`
	Effect string `yaml:"effect"`
}

// FargateProfileConfig declares a Fargate profile.
type FargateProfileConfig struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name,omitempty"`
	Selectors        []SelectorConfig  `yaml:"selectors"`
	PodExecutionRole string            `yaml:"podExecutionRole,omitempty"`
	Tags             map[string]string `yaml:"tags,omitempty"`
}

// SelectorConfig matches pods scheduled on Fargate.
type SelectorConfig struct {
	Namespace string            `yaml:"namespace"`
	Labels    map[string]string `yaml:"labels,omitempty"`
}

// AddonConfig declares a managed add-on.
type AddonConfig struct {
	ID                    string            `yaml:"id"`
	Name                  string            `yaml:"name"`
	Version               string            `yaml:"version,omitempty"`
	ResolveConflicts      string            `yaml:"resolveConflicts,omitempty"`
	ServiceAccountRoleArn string            `yaml:"serviceAccountRoleArn,omitempty"`
	ConfigurationValues   string            `yaml:"configurationValues,omitempty"`
	Tags                  map[string]string `yaml:"tags,omitempty"`
}

// AccessEntryConfig grants an IAM principal access to the cluster.
type AccessEntryConfig struct {
	ID           string `yaml:"id"`
	AccessConfig `yaml:",inline"`
}

// AccessConfig is the principal part of an access entry.
type AccessConfig struct {
	PrincipalArn     string               `yaml:"principalArn"`
	KubernetesGroups []string             `yaml:"kubernetesGroups,omitempty"`
	Username         string               `yaml:"username,omitempty"`
	AccessPolicies   []AccessPolicyConfig `yaml:"accessPolicies,omitempty"`
}

// AccessPolicyConfig associates an EKS access policy.
type AccessPolicyConfig struct {
	Policy     string   `yaml:"policy"`
	Namespaces []string `yaml:"namespaces,omitempty"`
}

// ApplyDefaults fills in values left empty in the file.
func (c *Config) ApplyDefaults() {
	if c.Stack.Name == "" {
		c.Stack.Name = c.Cluster.Name
	}
	if !c.Network.Imported() && c.Network.CIDR == "" {
		c.Network.CIDR = "10.0.0.0/16"
	}
	for i := range c.Nodegroups {
		if c.Nodegroups[i].Placement == "" {
			c.Nodegroups[i].Placement = "private"
		}
	}
}

// Validate checks the parts of the file that the library does not check
// itself. Field-level validation of the cluster and its capacity happens
// during synthesis.
func (c *Config) Validate() error {
	var errs []error

	if c.Cluster.Name == "" {
		errs = append(errs, errors.New("cluster.name is required"))
	}
	if c.Stack.Name == "" {
		errs = append(errs, errors.New("stack.name is required"))
	}

	if c.Network.Imported() {
		if len(c.Network.PrivateSubnetIDs)+len(c.Network.PublicSubnetIDs) == 0 {
			errs = append(errs, errors.New("network: an imported VPC needs privateSubnetIds or publicSubnetIds"))
		}
		if c.Network.CIDR != "" {
			errs = append(errs, errors.New("network: cidr cannot be combined with vpcId"))
		}
	} else if _, _, err := net.ParseCIDR(c.Network.CIDR); err != nil {
		errs = append(errs, fmt.Errorf("network.cidr: %w", err))
	}

	if len(c.Cluster.PublicAccessCIDRs) > 0 && c.Cluster.EndpointAccess == "private" {
		errs = append(errs, errors.New("cluster.publicAccessCidrs cannot be used with a private endpoint"))
	}

	ids := make(map[string]string)
	checkID := func(kind, id string) {
		if id == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", kind))
			return
		}
		if prev, ok := ids[id]; ok {
			errs = append(errs, fmt.Errorf("%s %q: id already used by %s", kind, id, prev))
			return
		}
		ids[id] = kind
	}
	for _, ng := range c.Nodegroups {
		checkID("nodegroup", ng.ID)
		if ng.Placement != "private" && ng.Placement != "public" {
			errs = append(errs, fmt.Errorf("nodegroup %q: placement must be private or public", ng.ID))
		}
	}
	for _, fp := range c.FargateProfiles {
		checkID("fargate profile", fp.ID)
	}
	for _, addon := range c.Addons {
		checkID("addon", addon.ID)
	}
	for _, entry := range c.AccessEntries {
		checkID("access entry", entry.ID)
	}

	return errors.Join(errs...)
}
