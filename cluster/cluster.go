// Package cluster declares an Amazon EKS cluster as a low-level
// AWS::EKS::Cluster resource together with the roles, security group,
// OIDC provider and outputs it depends on.
//
// Kubernetes-side operations (manifests, Helm charts, service accounts,
// self-managed capacity) are not supported and return ErrNotImplemented.
package cluster

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/version"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/network"
	"github.com/lex00/wetwire-eks-go/resources/ec2"
	"github.com/lex00/wetwire-eks-go/resources/eks"
	"github.com/lex00/wetwire-eks-go/resources/iam"
	"github.com/lex00/wetwire-eks-go/stack"
)

const (
	// DefaultVersion is the Kubernetes version used when none is given.
	DefaultVersion = "1.29"
	// MinimumVersion is the oldest Kubernetes version accepted.
	MinimumVersion = "1.23"
	// DefaultCapacity is the node count of the default node group.
	DefaultCapacity = 2
	// DefaultInstanceType is the instance type of the default node group.
	DefaultInstanceType = "m5.large"

	// OIDCClientID is the audience of tokens exchanged for IAM credentials.
	OIDCClientID = "sts.amazonaws.com"
	// OIDCThumbprint is the root CA thumbprint of the EKS OIDC issuer.
	OIDCThumbprint = "9e99a48a9960b14926bb7f3b02e22da2b0ab7280"

	privateSubnetTag = "kubernetes.io/role/internal-elb"
	publicSubnetTag  = "kubernetes.io/role/elb"
)

var (
	ErrClusterNameRequired = errors.New("cluster name is required")
	ErrVpcRequired         = errors.New("vpc is required")
	ErrInvalidClusterName  = errors.New("invalid cluster name")
	ErrUnsupportedVersion  = errors.New("unsupported Kubernetes version")
	ErrInvalidIPFamily     = errors.New("ip family must be ipv4 or ipv6")
	ErrInvalidLogType      = errors.New("invalid control plane log type")
	ErrNoSubnets           = errors.New("vpc has no subnets")
)

var clusterNamePattern = regexp.MustCompile(`^[0-9A-Za-z][A-Za-z0-9\-_]{0,99}$`)

// IPFamily selects the address family of pods and services.
type IPFamily string

const (
	IPFamilyIPv4 IPFamily = "ipv4"
	IPFamilyIPv6 IPFamily = "ipv6"
)

// LogType is a control plane log type.
type LogType string

const (
	LogAPI               LogType = "api"
	LogAudit             LogType = "audit"
	LogAuthenticator     LogType = "authenticator"
	LogControllerManager LogType = "controllerManager"
	LogScheduler         LogType = "scheduler"
)

// Props configures a cluster.
type Props struct {
	// ClusterName is the physical EKS cluster name. Required.
	ClusterName string
	// Vpc is the network the cluster is placed in. Required.
	Vpc network.Vpc
	// Version is the Kubernetes version, e.g. "1.29". Patch versions are
	// truncated to major.minor.
	Version string
	// IPFamily defaults to ipv4.
	IPFamily IPFamily
	// ServiceIPv4CIDR overrides the Kubernetes service address range.
	ServiceIPv4CIDR string
	// EndpointAccess defaults to EndpointAccessPublicAndPrivate.
	EndpointAccess EndpointAccess
	// MastersRole is an IAM role ARN granted cluster admin.
	MastersRole any
	// Role is an existing control plane role ARN. A role is created when nil.
	Role any
	// SecretsEncryptionKey is a KMS key ARN for envelope encryption of secrets.
	SecretsEncryptionKey any
	// AccessPrincipal is bound to Kubernetes groups through an access entry.
	AccessPrincipal *AccessPrincipal
	// SecurityGroup is an existing control plane security group ID. A
	// security group is created when nil.
	SecurityGroup any
	Logging       []LogType
	Tags          map[string]string
	// DefaultCapacity is the size of the default node group. nil means
	// DefaultCapacity nodes; zero disables the default node group.
	DefaultCapacity              *int
	DefaultCapacityInstanceTypes []string

	OutputClusterName    bool
	OutputMastersRoleArn bool
	DisableConfigCommand bool
}

// Cluster is a declared EKS cluster.
type Cluster struct {
	stack *stack.Stack
	id    string
	name  string
	props Props
	log   logr.Logger

	resource        *eks.Cluster
	role            any
	securityGroupID any
	oidc            *OpenIDConnectProvider
	defaultCapacity *Nodegroup
}

// New declares an EKS cluster and its dependent resources on the stack.
func New(s *stack.Stack, id string, props Props) (*Cluster, error) {
	if props.ClusterName == "" {
		return nil, ErrClusterNameRequired
	}
	if isNilVpc(props.Vpc) {
		return nil, ErrVpcRequired
	}
	if !clusterNamePattern.MatchString(props.ClusterName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClusterName, props.ClusterName)
	}

	k8sVersion, err := NormalizeVersion(props.Version)
	if err != nil {
		return nil, err
	}
	ipFamily := props.IPFamily
	if ipFamily == "" {
		ipFamily = IPFamilyIPv4
	}
	if ipFamily != IPFamilyIPv4 && ipFamily != IPFamilyIPv6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIPFamily, ipFamily)
	}
	logging, err := loggingConfig(props.Logging)
	if err != nil {
		return nil, err
	}

	subnets := append(append([]*network.Subnet(nil), props.Vpc.PrivateSubnets()...), props.Vpc.PublicSubnets()...)
	if len(subnets) == 0 {
		return nil, ErrNoSubnets
	}

	// Principals are checked up front so a rejected call leaves the stack untouched.
	mastersEntry := AccessPrincipal{
		PrincipalArn:   props.MastersRole,
		AccessPolicies: []AccessPolicy{{PolicyName: "AmazonEKSClusterAdminPolicy"}},
	}
	if props.MastersRole != nil {
		if err := validateAccessPrincipal(id+"MastersAccessEntry", mastersEntry); err != nil {
			return nil, err
		}
	}
	if props.AccessPrincipal != nil {
		if err := validateAccessPrincipal(id+"AccessPrincipal", *props.AccessPrincipal); err != nil {
			return nil, err
		}
	}

	c := &Cluster{
		stack: s,
		id:    id,
		name:  props.ClusterName,
		props: props,
		log:   s.Logger().WithName("cluster").WithValues("id", id),
	}

	c.role = props.Role
	if c.role == nil {
		roleID := id + "Role"
		if err := s.Add(roleID, &iam.Role{
			AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(intrinsics.ServicePrincipal{"eks.amazonaws.com"}),
			ManagedPolicyArns:        []any{intrinsics.ManagedPolicyArn("AmazonEKSClusterPolicy")},
			Tags:                     wetwire.TagsFromMap(props.Tags),
		}); err != nil {
			return nil, err
		}
		c.role = wetwire.AttrRef{Resource: roleID, Attribute: "Arn"}
	}

	c.securityGroupID = props.SecurityGroup
	if c.securityGroupID == nil {
		sgID := id + "ControlPlaneSecurityGroup"
		if err := s.Add(sgID, &ec2.SecurityGroup{
			GroupDescription: "EKS Control Plane Security Group",
			VpcId:            props.Vpc.VpcID(),
			SecurityGroupEgress: []ec2.SecurityGroup_Egress{
				{IpProtocol: "-1", CidrIp: "0.0.0.0/0", Description: "Allow all outbound traffic by default"},
			},
			Tags: wetwire.TagsFromMap(props.Tags),
		}); err != nil {
			return nil, err
		}
		c.securityGroupID = wetwire.AttrRef{Resource: sgID, Attribute: "GroupId"}
	}

	access := props.EndpointAccess
	c.resource = &eks.Cluster{
		Name:    props.ClusterName,
		Version: k8sVersion,
		RoleArn: c.role,
		ResourcesVpcConfig: &eks.Cluster_ResourcesVpcConfig{
			SubnetIds:             network.SubnetIDs(subnets),
			SecurityGroupIds:      []any{c.securityGroupID},
			EndpointPublicAccess:  boolPtr(access.Public()),
			EndpointPrivateAccess: boolPtr(access.Private()),
			PublicAccessCidrs:     access.PublicCIDRs(),
		},
		KubernetesNetworkConfig: &eks.Cluster_KubernetesNetworkConfig{
			IpFamily:        string(ipFamily),
			ServiceIpv4Cidr: props.ServiceIPv4CIDR,
		},
		Logging: logging,
		AccessConfig: &eks.Cluster_AccessConfig{
			AuthenticationMode: "API_AND_CONFIG_MAP",
		},
		Tags: wetwire.TagsFromMap(props.Tags),
	}
	if props.SecretsEncryptionKey != nil {
		c.resource.EncryptionConfig = []eks.Cluster_EncryptionConfig{{
			Provider:  &eks.Cluster_Provider{KeyArn: props.SecretsEncryptionKey},
			Resources: []string{"secrets"},
		}}
	}
	if err := s.Add(id, c.resource); err != nil {
		return nil, err
	}

	c.tagSubnets()

	oidcID := id + "OpenIdConnectProvider"
	oidc := &iam.OIDCProvider{
		Url:            c.attr("OpenIdConnectIssuerUrl"),
		ClientIdList:   []string{OIDCClientID},
		ThumbprintList: []string{OIDCThumbprint},
		Tags:           wetwire.TagsFromMap(props.Tags),
	}
	if err := s.Add(oidcID, oidc); err != nil {
		return nil, err
	}
	c.oidc = &OpenIDConnectProvider{id: oidcID, resource: oidc}

	if props.MastersRole != nil {
		if err := c.addAccessEntry(id+"MastersAccessEntry", mastersEntry); err != nil {
			return nil, err
		}
	}
	if props.AccessPrincipal != nil {
		if err := c.GrantAccess("AccessPrincipal", *props.AccessPrincipal); err != nil {
			return nil, err
		}
	}

	if err := c.addDefaultCapacity(); err != nil {
		return nil, err
	}
	if err := c.addOutputs(); err != nil {
		return nil, err
	}

	c.log.V(1).Info("cluster declared", "name", props.ClusterName, "version", k8sVersion, "ipFamily", ipFamily)
	return c, nil
}

// isNilVpc reports whether v is nil or a typed nil pointer.
func isNilVpc(v network.Vpc) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// NormalizeVersion parses a Kubernetes version and returns it as major.minor.
// An empty string returns DefaultVersion.
func NormalizeVersion(v string) (string, error) {
	if v == "" {
		return DefaultVersion, nil
	}
	parsed, err := version.ParseGeneric(v)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, v, err)
	}
	if parsed.LessThan(version.MustParseGeneric(MinimumVersion)) {
		return "", fmt.Errorf("%w: %s is older than %s", ErrUnsupportedVersion, v, MinimumVersion)
	}
	return fmt.Sprintf("%d.%d", parsed.Major(), parsed.Minor()), nil
}

func loggingConfig(types []LogType) (*eks.Cluster_Logging, error) {
	if len(types) == 0 {
		return nil, nil
	}
	enabled := make([]eks.Cluster_LoggingTypeConfig, 0, len(types))
	seen := make(map[LogType]bool)
	for _, t := range types {
		switch t {
		case LogAPI, LogAudit, LogAuthenticator, LogControllerManager, LogScheduler:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogType, t)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		enabled = append(enabled, eks.Cluster_LoggingTypeConfig{Type_: string(t)})
	}
	return &eks.Cluster_Logging{
		ClusterLogging: &eks.Cluster_ClusterLogging{EnabledTypes: enabled},
	}, nil
}

// tagSubnets marks subnets for load balancer discovery. Subnets that are not
// declared in the stack cannot be tagged and produce a warning instead.
func (c *Cluster) tagSubnets() {
	tag := func(subnets []*network.Subnet, key, kind string) {
		for _, subnet := range subnets {
			if !subnet.Taggable() {
				c.stack.Warn(c.id, "Could not auto-tag %s subnet %s with \"%s=1\", please remember to do this manually",
					kind, subnet.Name, key)
				continue
			}
			subnet.Resource.AddTag(key, "1")
		}
	}
	tag(c.props.Vpc.PrivateSubnets(), privateSubnetTag, "private")
	tag(c.props.Vpc.PublicSubnets(), publicSubnetTag, "public")
}

func (c *Cluster) addDefaultCapacity() error {
	size := DefaultCapacity
	if c.props.DefaultCapacity != nil {
		size = *c.props.DefaultCapacity
	}
	if size < 0 {
		return fmt.Errorf("default capacity must not be negative, got %d", size)
	}
	if size == 0 {
		return nil
	}
	instanceTypes := c.props.DefaultCapacityInstanceTypes
	if len(instanceTypes) == 0 {
		instanceTypes = []string{DefaultInstanceType}
	}
	ng, err := c.AddNodegroupCapacity("DefaultCapacity", NodegroupOptions{
		InstanceTypes: instanceTypes,
		MinSize:       &size,
		DesiredSize:   &size,
		MaxSize:       &size,
	})
	if err != nil {
		return fmt.Errorf("default capacity: %w", err)
	}
	c.defaultCapacity = ng
	return nil
}

func (c *Cluster) attr(name string) wetwire.AttrRef {
	return wetwire.AttrRef{Resource: c.id, Attribute: name}
}

// ID returns the logical ID of the cluster resource.
func (c *Cluster) ID() string { return c.id }

// Name returns the physical cluster name.
func (c *Cluster) Name() string { return c.name }

// ClusterName returns a Ref to the cluster, which resolves to its name.
func (c *Cluster) ClusterName() any { return intrinsics.Ref{LogicalName: c.id} }

// ClusterArn returns the cluster ARN.
func (c *Cluster) ClusterArn() wetwire.AttrRef { return c.attr("Arn") }

// ClusterEndpoint returns the Kubernetes API server URL.
func (c *Cluster) ClusterEndpoint() wetwire.AttrRef { return c.attr("Endpoint") }

// ClusterCertificateAuthorityData returns the base64 cluster CA certificate.
func (c *Cluster) ClusterCertificateAuthorityData() wetwire.AttrRef {
	return c.attr("CertificateAuthorityData")
}

// ClusterSecurityGroupID returns the security group EKS creates for
// control plane to node communication.
func (c *Cluster) ClusterSecurityGroupID() wetwire.AttrRef { return c.attr("ClusterSecurityGroupId") }

// ClusterEncryptionConfigKeyArn returns the KMS key ARN used for secrets.
func (c *Cluster) ClusterEncryptionConfigKeyArn() wetwire.AttrRef {
	return c.attr("EncryptionConfigKeyArn")
}

// ControlPlaneSecurityGroupID returns the additional control plane
// security group, created or supplied.
func (c *Cluster) ControlPlaneSecurityGroupID() any { return c.securityGroupID }

// Role returns the control plane role ARN.
func (c *Cluster) Role() any { return c.role }

// OpenIDConnectProvider returns the IAM OIDC provider bound to the cluster issuer.
func (c *Cluster) OpenIDConnectProvider() *OpenIDConnectProvider { return c.oidc }

// DefaultCapacity returns the default node group, or nil when disabled.
func (c *Cluster) DefaultCapacity() *Nodegroup { return c.defaultCapacity }

// Resource returns the declared cluster resource.
func (c *Cluster) Resource() *eks.Cluster { return c.resource }

// OpenIDConnectProvider is the IAM identity provider for the cluster issuer.
type OpenIDConnectProvider struct {
	id       string
	resource *iam.OIDCProvider
}

// ID returns the logical ID of the provider.
func (p *OpenIDConnectProvider) ID() string { return p.id }

// Arn returns the provider ARN.
func (p *OpenIDConnectProvider) Arn() any { return intrinsics.Ref{LogicalName: p.id} }

// Issuer returns the cluster issuer URL.
func (p *OpenIDConnectProvider) Issuer() any { return p.resource.Url }

// Resource returns the declared provider resource.
func (p *OpenIDConnectProvider) Resource() *iam.OIDCProvider { return p.resource }

func boolPtr(b bool) *bool { return &b }
