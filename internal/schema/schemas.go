package schema

import (
	"github.com/lex00/wetwire-eks-go/resources/ec2"
	"github.com/lex00/wetwire-eks-go/resources/eks"
	"github.com/lex00/wetwire-eks-go/resources/iam"
)

var (
	str     = PropertySchema{Type: "String"}
	reqStr  = PropertySchema{Type: "String", Required: true}
	integer = PropertySchema{Type: "Integer"}
	boolean = PropertySchema{Type: "Boolean"}
	list    = PropertySchema{Type: "List"}
	tags    = PropertySchema{Type: "List", Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
		"Key":   reqStr,
		"Value": {Type: "String", Required: true},
	}}}
)

func strList(maxItems int) PropertySchema {
	return PropertySchema{Type: "List", Items: &str, MaxItems: maxItems}
}

func object(props map[string]PropertySchema) PropertySchema {
	return PropertySchema{Type: "Object", Properties: props}
}

func required(p PropertySchema) PropertySchema {
	p.Required = true
	return p
}

func oneOf(values ...string) PropertySchema {
	return PropertySchema{Type: "String", AllowedValues: values}
}

// resourceSchemas covers the resource types this module synthesizes.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::EKS::Cluster": {
		Type: "AWS::EKS::Cluster",
		Properties: map[string]PropertySchema{
			"Name":    str,
			"Version": str,
			"RoleArn": reqStr,
			"ResourcesVpcConfig": required(object(map[string]PropertySchema{
				"SubnetIds":             required(list),
				"SecurityGroupIds":      strList(5),
				"EndpointPublicAccess":  boolean,
				"EndpointPrivateAccess": boolean,
				"PublicAccessCidrs":     strList(0),
			})),
			"KubernetesNetworkConfig": object(map[string]PropertySchema{
				"IpFamily":        oneOf("ipv4", "ipv6"),
				"ServiceIpv4Cidr": str,
			}),
			"EncryptionConfig": {Type: "List", MaxItems: 1, Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
				"Provider":  object(map[string]PropertySchema{"KeyArn": str}),
				"Resources": strList(0),
			}}},
			"Logging": object(map[string]PropertySchema{
				"ClusterLogging": object(map[string]PropertySchema{
					"EnabledTypes": {Type: "List", Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
						"Type": oneOf("api", "audit", "authenticator", "controllerManager", "scheduler"),
					}}},
				}),
			}),
			"AccessConfig": object(map[string]PropertySchema{
				"AuthenticationMode":                      oneOf("CONFIG_MAP", "API", "API_AND_CONFIG_MAP"),
				"BootstrapClusterCreatorAdminPermissions": boolean,
			}),
			"Tags": tags,
		},
		Attributes: eks.Cluster{}.Attributes(),
	},
	"AWS::EKS::Nodegroup": {
		Type: "AWS::EKS::Nodegroup",
		Properties: map[string]PropertySchema{
			"ClusterName":    reqStr,
			"NodegroupName":  str,
			"NodeRole":       reqStr,
			"Subnets":        required(list),
			"InstanceTypes":  strList(0),
			"AmiType":        oneOf("AL2_x86_64", "AL2_x86_64_GPU", "AL2_ARM_64", "AL2023_x86_64_STANDARD", "AL2023_ARM_64_STANDARD", "AL2023_x86_64_NVIDIA", "AL2023_x86_64_NEURON", "BOTTLEROCKET_ARM_64", "BOTTLEROCKET_x86_64", "BOTTLEROCKET_ARM_64_NVIDIA", "BOTTLEROCKET_x86_64_NVIDIA", "WINDOWS_CORE_2019_x86_64", "WINDOWS_FULL_2019_x86_64", "WINDOWS_CORE_2022_x86_64", "WINDOWS_FULL_2022_x86_64", "CUSTOM"),
			"CapacityType":   oneOf("ON_DEMAND", "SPOT", "CAPACITY_BLOCK"),
			"DiskSize":       integer,
			"ReleaseVersion": str,
			"Version":        str,
			"ScalingConfig": object(map[string]PropertySchema{
				"MinSize":     integer,
				"MaxSize":     integer,
				"DesiredSize": integer,
			}),
			"UpdateConfig": object(map[string]PropertySchema{
				"MaxUnavailable":           integer,
				"MaxUnavailablePercentage": integer,
			}),
			"Labels": {Type: "Map"},
			"Taints": {Type: "List", Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
				"Key":    str,
				"Value":  str,
				"Effect": oneOf("NO_SCHEDULE", "NO_EXECUTE", "PREFER_NO_SCHEDULE"),
			}}},
			"Tags": {Type: "Map"},
		},
		Attributes: eks.Nodegroup{}.Attributes(),
	},
	"AWS::EKS::FargateProfile": {
		Type: "AWS::EKS::FargateProfile",
		Properties: map[string]PropertySchema{
			"ClusterName":         reqStr,
			"FargateProfileName":  str,
			"PodExecutionRoleArn": reqStr,
			"Subnets":             list,
			"Selectors": {Type: "List", Required: true, MaxItems: 5, Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
				"Namespace": reqStr,
				"Labels":    {Type: "List", MaxItems: 5},
			}}},
			"Tags": tags,
		},
		Attributes: eks.FargateProfile{}.Attributes(),
	},
	"AWS::EKS::Addon": {
		Type: "AWS::EKS::Addon",
		Properties: map[string]PropertySchema{
			"ClusterName":           reqStr,
			"AddonName":             reqStr,
			"AddonVersion":          str,
			"ResolveConflicts":      oneOf("NONE", "OVERWRITE", "PRESERVE"),
			"ServiceAccountRoleArn": str,
			"ConfigurationValues":   str,
			"Tags":                  tags,
		},
		Attributes: eks.Addon{}.Attributes(),
	},
	"AWS::EKS::AccessEntry": {
		Type: "AWS::EKS::AccessEntry",
		Properties: map[string]PropertySchema{
			"ClusterName":      reqStr,
			"PrincipalArn":     reqStr,
			"Type":             oneOf("STANDARD", "FARGATE_LINUX", "EC2_LINUX", "EC2_WINDOWS"),
			"Username":         str,
			"KubernetesGroups": strList(0),
			"AccessPolicies": {Type: "List", Items: &PropertySchema{Type: "Object", Properties: map[string]PropertySchema{
				"PolicyArn": reqStr,
				"AccessScope": required(object(map[string]PropertySchema{
					"Type":       {Type: "String", Required: true, AllowedValues: []string{"cluster", "namespace"}},
					"Namespaces": strList(0),
				})),
			}}},
			"Tags": tags,
		},
		Attributes: eks.AccessEntry{}.Attributes(),
	},
	"AWS::IAM::Role": {
		Type: "AWS::IAM::Role",
		Properties: map[string]PropertySchema{
			"RoleName":                 str,
			"Description":              str,
			"Path":                     str,
			"AssumeRolePolicyDocument": {Type: "Json", Required: true},
			"ManagedPolicyArns":        {Type: "List", MaxItems: 20},
			"MaxSessionDuration":       integer,
			"Tags":                     tags,
		},
		Attributes: iam.Role{}.Attributes(),
	},
	"AWS::IAM::OIDCProvider": {
		Type: "AWS::IAM::OIDCProvider",
		Properties: map[string]PropertySchema{
			"Url":            str,
			"ClientIdList":   strList(100),
			"ThumbprintList": strList(5),
			"Tags":           tags,
		},
		Attributes: iam.OIDCProvider{}.Attributes(),
	},
	"AWS::EC2::VPC": {
		Type: "AWS::EC2::VPC",
		Properties: map[string]PropertySchema{
			"CidrBlock":          str,
			"EnableDnsHostnames": boolean,
			"EnableDnsSupport":   boolean,
			"Tags":               tags,
		},
		Attributes: ec2.VPC{}.Attributes(),
	},
	"AWS::EC2::Subnet": {
		Type: "AWS::EC2::Subnet",
		Properties: map[string]PropertySchema{
			"VpcId":               reqStr,
			"CidrBlock":           str,
			"AvailabilityZone":    str,
			"MapPublicIpOnLaunch": boolean,
			"Tags":                tags,
		},
		Attributes: ec2.Subnet{}.Attributes(),
	},
	"AWS::EC2::SecurityGroup": {
		Type: "AWS::EC2::SecurityGroup",
		Properties: map[string]PropertySchema{
			"GroupDescription":     reqStr,
			"VpcId":                str,
			"SecurityGroupIngress": list,
			"SecurityGroupEgress":  list,
			"Tags":                 tags,
		},
		Attributes: ec2.SecurityGroup{}.Attributes(),
	},
	"AWS::EC2::InternetGateway": {
		Type:       "AWS::EC2::InternetGateway",
		Properties: map[string]PropertySchema{"Tags": tags},
		Attributes: ec2.InternetGateway{}.Attributes(),
	},
	"AWS::EC2::VPCGatewayAttachment": {
		Type: "AWS::EC2::VPCGatewayAttachment",
		Properties: map[string]PropertySchema{
			"VpcId":             reqStr,
			"InternetGatewayId": str,
		},
		Attributes: ec2.VPCGatewayAttachment{}.Attributes(),
	},
	"AWS::EC2::EIP": {
		Type: "AWS::EC2::EIP",
		Properties: map[string]PropertySchema{
			"Domain": oneOf("vpc", "standard"),
			"Tags":   tags,
		},
		Attributes: ec2.EIP{}.Attributes(),
	},
	"AWS::EC2::NatGateway": {
		Type: "AWS::EC2::NatGateway",
		Properties: map[string]PropertySchema{
			"AllocationId": str,
			"SubnetId":     reqStr,
			"Tags":         tags,
		},
		Attributes: ec2.NatGateway{}.Attributes(),
	},
	"AWS::EC2::RouteTable": {
		Type: "AWS::EC2::RouteTable",
		Properties: map[string]PropertySchema{
			"VpcId": reqStr,
			"Tags":  tags,
		},
		Attributes: ec2.RouteTable{}.Attributes(),
	},
	"AWS::EC2::Route": {
		Type: "AWS::EC2::Route",
		Properties: map[string]PropertySchema{
			"RouteTableId":         reqStr,
			"DestinationCidrBlock": str,
			"GatewayId":            str,
			"NatGatewayId":         str,
		},
		Attributes: ec2.Route{}.Attributes(),
	},
	"AWS::EC2::SubnetRouteTableAssociation": {
		Type: "AWS::EC2::SubnetRouteTableAssociation",
		Properties: map[string]PropertySchema{
			"SubnetId":     reqStr,
			"RouteTableId": reqStr,
		},
		Attributes: ec2.SubnetRouteTableAssociation{}.Attributes(),
	},
}
