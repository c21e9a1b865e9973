// Package ec2 contains the CloudFormation EC2 networking resource types used
// to lay out a cluster VPC.
package ec2

import (
	wetwire "github.com/lex00/wetwire-eks-go"
)

// VPC is AWS::EC2::VPC.
type VPC struct {
	CidrBlock          string        `json:"CidrBlock,omitempty"`
	EnableDnsHostnames bool          `json:"EnableDnsHostnames,omitempty"`
	EnableDnsSupport   bool          `json:"EnableDnsSupport,omitempty"`
	Tags               []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::VPC".
func (VPC) ResourceType() string { return "AWS::EC2::VPC" }

// Attributes lists the GetAtt attributes of a VPC.
func (VPC) Attributes() []string {
	return []string{"CidrBlock", "DefaultNetworkAcl", "DefaultSecurityGroup", "VpcId"}
}

// Subnet is AWS::EC2::Subnet.
type Subnet struct {
	VpcId               any           `json:"VpcId,omitempty"`
	CidrBlock           any           `json:"CidrBlock,omitempty"`
	AvailabilityZone    any           `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch bool          `json:"MapPublicIpOnLaunch,omitempty"`
	Tags                []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::Subnet".
func (Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// Attributes lists the GetAtt attributes of a subnet.
func (Subnet) Attributes() []string {
	return []string{"AvailabilityZone", "CidrBlock", "SubnetId", "VpcId"}
}

// AddTag sets a tag on the subnet, replacing any tag with the same key.
func (s *Subnet) AddTag(key string, value any) {
	s.Tags = wetwire.SetTag(s.Tags, key, value)
}

// SecurityGroup is AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupDescription     string                 `json:"GroupDescription,omitempty"`
	VpcId                any                    `json:"VpcId,omitempty"`
	SecurityGroupIngress []SecurityGroup_Rule   `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []SecurityGroup_Egress `json:"SecurityGroupEgress,omitempty"`
	Tags                 []wetwire.Tag          `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::SecurityGroup".
func (SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// Attributes lists the GetAtt attributes of a security group.
func (SecurityGroup) Attributes() []string { return []string{"GroupId", "VpcId"} }

// SecurityGroup_Rule is an inline ingress rule.
type SecurityGroup_Rule struct {
	IpProtocol            string `json:"IpProtocol,omitempty"`
	FromPort              *int   `json:"FromPort,omitempty"`
	ToPort                *int   `json:"ToPort,omitempty"`
	CidrIp                string `json:"CidrIp,omitempty"`
	SourceSecurityGroupId any    `json:"SourceSecurityGroupId,omitempty"`
	Description           string `json:"Description,omitempty"`
}

// SecurityGroup_Egress is an inline egress rule.
type SecurityGroup_Egress struct {
	IpProtocol  string `json:"IpProtocol,omitempty"`
	FromPort    *int   `json:"FromPort,omitempty"`
	ToPort      *int   `json:"ToPort,omitempty"`
	CidrIp      string `json:"CidrIp,omitempty"`
	CidrIpv6    string `json:"CidrIpv6,omitempty"`
	Description string `json:"Description,omitempty"`
}

// InternetGateway is AWS::EC2::InternetGateway.
type InternetGateway struct {
	Tags []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::InternetGateway".
func (InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// Attributes lists the GetAtt attributes of an internet gateway.
func (InternetGateway) Attributes() []string { return []string{"InternetGatewayId"} }

// VPCGatewayAttachment is AWS::EC2::VPCGatewayAttachment.
type VPCGatewayAttachment struct {
	VpcId             any `json:"VpcId,omitempty"`
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
}

// ResourceType returns "AWS::EC2::VPCGatewayAttachment".
func (VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }

// Attributes lists the GetAtt attributes of a gateway attachment.
func (VPCGatewayAttachment) Attributes() []string { return nil }

// EIP is AWS::EC2::EIP.
type EIP struct {
	Domain string        `json:"Domain,omitempty"`
	Tags   []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::EIP".
func (EIP) ResourceType() string { return "AWS::EC2::EIP" }

// Attributes lists the GetAtt attributes of an elastic IP.
func (EIP) Attributes() []string { return []string{"AllocationId", "PublicIp"} }

// NatGateway is AWS::EC2::NatGateway.
type NatGateway struct {
	AllocationId any           `json:"AllocationId,omitempty"`
	SubnetId     any           `json:"SubnetId,omitempty"`
	Tags         []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::NatGateway".
func (NatGateway) ResourceType() string { return "AWS::EC2::NatGateway" }

// Attributes lists the GetAtt attributes of a NAT gateway.
func (NatGateway) Attributes() []string { return []string{"NatGatewayId"} }

// RouteTable is AWS::EC2::RouteTable.
type RouteTable struct {
	VpcId any           `json:"VpcId,omitempty"`
	Tags  []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::EC2::RouteTable".
func (RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// Attributes lists the GetAtt attributes of a route table.
func (RouteTable) Attributes() []string { return []string{"RouteTableId"} }

// Route is AWS::EC2::Route.
type Route struct {
	RouteTableId         any    `json:"RouteTableId,omitempty"`
	DestinationCidrBlock string `json:"DestinationCidrBlock,omitempty"`
	GatewayId            any    `json:"GatewayId,omitempty"`
	NatGatewayId         any    `json:"NatGatewayId,omitempty"`
}

// ResourceType returns "AWS::EC2::Route".
func (Route) ResourceType() string { return "AWS::EC2::Route" }

// Attributes lists the GetAtt attributes of a route.
func (Route) Attributes() []string { return nil }

// SubnetRouteTableAssociation is AWS::EC2::SubnetRouteTableAssociation.
type SubnetRouteTableAssociation struct {
	SubnetId     any `json:"SubnetId,omitempty"`
	RouteTableId any `json:"RouteTableId,omitempty"`
}

// ResourceType returns "AWS::EC2::SubnetRouteTableAssociation".
func (SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// Attributes lists the GetAtt attributes of a route table association.
func (SubnetRouteTableAssociation) Attributes() []string { return nil }
