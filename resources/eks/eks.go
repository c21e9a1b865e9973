// Package eks contains CloudFormation resource types for Amazon EKS.
//
// Property fields typed as any accept literals or intrinsics
// (Ref, Sub, AttrRef). Nested property types follow the
// <Resource>_<Property> naming used by the CloudFormation schema.
package eks

import (
	wetwire "github.com/lex00/wetwire-eks-go"
)

// Cluster is AWS::EKS::Cluster.
type Cluster struct {
	Name                    any                              `json:"Name,omitempty"`
	Version                 any                              `json:"Version,omitempty"`
	RoleArn                 any                              `json:"RoleArn,omitempty"`
	ResourcesVpcConfig      *Cluster_ResourcesVpcConfig      `json:"ResourcesVpcConfig,omitempty"`
	KubernetesNetworkConfig *Cluster_KubernetesNetworkConfig `json:"KubernetesNetworkConfig,omitempty"`
	EncryptionConfig        []Cluster_EncryptionConfig       `json:"EncryptionConfig,omitempty"`
	Logging                 *Cluster_Logging                 `json:"Logging,omitempty"`
	AccessConfig            *Cluster_AccessConfig            `json:"AccessConfig,omitempty"`
	Tags                    []wetwire.Tag                    `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EKS::Cluster".
func (Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// Attributes lists the GetAtt attributes of a cluster.
func (Cluster) Attributes() []string {
	return []string{
		"Arn",
		"CertificateAuthorityData",
		"ClusterSecurityGroupId",
		"EncryptionConfigKeyArn",
		"Endpoint",
		"Id",
		"KubernetesNetworkConfig.ServiceIpv6Cidr",
		"OpenIdConnectIssuerUrl",
	}
}

// Cluster_ResourcesVpcConfig is the VPC configuration of the control plane.
type Cluster_ResourcesVpcConfig struct {
	SubnetIds             []any    `json:"SubnetIds,omitempty"`
	SecurityGroupIds      []any    `json:"SecurityGroupIds,omitempty"`
	EndpointPublicAccess  *bool    `json:"EndpointPublicAccess,omitempty"`
	EndpointPrivateAccess *bool    `json:"EndpointPrivateAccess,omitempty"`
	PublicAccessCidrs     []string `json:"PublicAccessCidrs,omitempty"`
}

// Cluster_KubernetesNetworkConfig selects the service CIDR and IP family.
type Cluster_KubernetesNetworkConfig struct {
	IpFamily        string `json:"IpFamily,omitempty"`
	ServiceIpv4Cidr string `json:"ServiceIpv4Cidr,omitempty"`
}

// Cluster_EncryptionConfig enables envelope encryption of Kubernetes resources.
type Cluster_EncryptionConfig struct {
	Provider  *Cluster_Provider `json:"Provider,omitempty"`
	Resources []string          `json:"Resources,omitempty"`
}

// Cluster_Provider identifies the KMS key used for envelope encryption.
type Cluster_Provider struct {
	KeyArn any `json:"KeyArn,omitempty"`
}

// Cluster_Logging configures control plane logging.
type Cluster_Logging struct {
	ClusterLogging *Cluster_ClusterLogging `json:"ClusterLogging,omitempty"`
}

// Cluster_ClusterLogging lists the enabled control plane log types.
type Cluster_ClusterLogging struct {
	EnabledTypes []Cluster_LoggingTypeConfig `json:"EnabledTypes,omitempty"`
}

// Cluster_LoggingTypeConfig is a single control plane log type.
type Cluster_LoggingTypeConfig struct {
	Type_ string `json:"Type,omitempty"`
}

// Cluster_AccessConfig selects how IAM principals authenticate to the cluster.
type Cluster_AccessConfig struct {
	AuthenticationMode                      string `json:"AuthenticationMode,omitempty"`
	BootstrapClusterCreatorAdminPermissions *bool  `json:"BootstrapClusterCreatorAdminPermissions,omitempty"`
}

// Nodegroup is AWS::EKS::Nodegroup.
type Nodegroup struct {
	ClusterName    any                      `json:"ClusterName,omitempty"`
	NodegroupName  any                      `json:"NodegroupName,omitempty"`
	NodeRole       any                      `json:"NodeRole,omitempty"`
	Subnets        []any                    `json:"Subnets,omitempty"`
	InstanceTypes  []string                 `json:"InstanceTypes,omitempty"`
	AmiType        string                   `json:"AmiType,omitempty"`
	CapacityType   string                   `json:"CapacityType,omitempty"`
	DiskSize       int                      `json:"DiskSize,omitempty"`
	ReleaseVersion string                   `json:"ReleaseVersion,omitempty"`
	Version        any                      `json:"Version,omitempty"`
	ScalingConfig  *Nodegroup_ScalingConfig `json:"ScalingConfig,omitempty"`
	UpdateConfig   *Nodegroup_UpdateConfig  `json:"UpdateConfig,omitempty"`
	Labels         map[string]string        `json:"Labels,omitempty"`
	Taints         []Nodegroup_Taint        `json:"Taints,omitempty"`
	Tags           map[string]any           `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EKS::Nodegroup".
func (Nodegroup) ResourceType() string { return "AWS::EKS::Nodegroup" }

// Attributes lists the GetAtt attributes of a node group.
func (Nodegroup) Attributes() []string {
	return []string{"Arn", "ClusterName", "Id", "NodegroupName"}
}

// Nodegroup_ScalingConfig sets the node group size bounds.
type Nodegroup_ScalingConfig struct {
	MinSize     *int `json:"MinSize,omitempty"`
	MaxSize     *int `json:"MaxSize,omitempty"`
	DesiredSize *int `json:"DesiredSize,omitempty"`
}

// Nodegroup_UpdateConfig bounds how many nodes are replaced at once.
type Nodegroup_UpdateConfig struct {
	MaxUnavailable           int `json:"MaxUnavailable,omitempty"`
	MaxUnavailablePercentage int `json:"MaxUnavailablePercentage,omitempty"`
}

// Nodegroup_Taint is a Kubernetes taint applied to every node in the group.
type Nodegroup_Taint struct {
	Key    string `json:"Key,omitempty"`
	Value  string `json:"Value,omitempty"`
	Effect string `json:"Effect,omitempty"`
}

// FargateProfile is AWS::EKS::FargateProfile.
type FargateProfile struct {
	ClusterName         any                       `json:"ClusterName,omitempty"`
	FargateProfileName  any                       `json:"FargateProfileName,omitempty"`
	PodExecutionRoleArn any                       `json:"PodExecutionRoleArn,omitempty"`
	Subnets             []any                     `json:"Subnets,omitempty"`
	Selectors           []FargateProfile_Selector `json:"Selectors,omitempty"`
	Tags                []wetwire.Tag             `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EKS::FargateProfile".
func (FargateProfile) ResourceType() string { return "AWS::EKS::FargateProfile" }

// Attributes lists the GetAtt attributes of a Fargate profile.
func (FargateProfile) Attributes() []string { return []string{"Arn"} }

// FargateProfile_Selector matches pods scheduled onto the profile.
type FargateProfile_Selector struct {
	Namespace string                    `json:"Namespace,omitempty"`
	Labels    []FargateProfile_LabelKey `json:"Labels,omitempty"`
}

// FargateProfile_LabelKey is a label a selected pod must carry.
type FargateProfile_LabelKey struct {
	Key   string `json:"Key,omitempty"`
	Value string `json:"Value,omitempty"`
}

// Addon is AWS::EKS::Addon.
type Addon struct {
	ClusterName           any           `json:"ClusterName,omitempty"`
	AddonName             string        `json:"AddonName,omitempty"`
	AddonVersion          string        `json:"AddonVersion,omitempty"`
	ResolveConflicts      string        `json:"ResolveConflicts,omitempty"`
	ServiceAccountRoleArn any           `json:"ServiceAccountRoleArn,omitempty"`
	ConfigurationValues   string        `json:"ConfigurationValues,omitempty"`
	Tags                  []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EKS::Addon".
func (Addon) ResourceType() string { return "AWS::EKS::Addon" }

// Attributes lists the GetAtt attributes of an add-on.
func (Addon) Attributes() []string { return []string{"Arn"} }

// AccessEntry is AWS::EKS::AccessEntry.
type AccessEntry struct {
	ClusterName      any                        `json:"ClusterName,omitempty"`
	PrincipalArn     any                        `json:"PrincipalArn,omitempty"`
	Type_            string                     `json:"Type,omitempty"`
	Username         string                     `json:"Username,omitempty"`
	KubernetesGroups []string                   `json:"KubernetesGroups,omitempty"`
	AccessPolicies   []AccessEntry_AccessPolicy `json:"AccessPolicies,omitempty"`
	Tags             []wetwire.Tag              `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EKS::AccessEntry".
func (AccessEntry) ResourceType() string { return "AWS::EKS::AccessEntry" }

// Attributes lists the GetAtt attributes of an access entry.
func (AccessEntry) Attributes() []string { return []string{"AccessEntryArn"} }

// AccessEntry_AccessPolicy associates an EKS access policy with the entry.
type AccessEntry_AccessPolicy struct {
	PolicyArn   any                      `json:"PolicyArn,omitempty"`
	AccessScope *AccessEntry_AccessScope `json:"AccessScope,omitempty"`
}

// AccessEntry_AccessScope limits an access policy to the cluster or to namespaces.
type AccessEntry_AccessScope struct {
	Type_      string   `json:"Type,omitempty"`
	Namespaces []string `json:"Namespaces,omitempty"`
}
