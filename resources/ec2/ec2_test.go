package ec2

import (
	"testing"

	"github.com/stretchr/testify/assert"

	wetwire "github.com/lex00/wetwire-eks-go"
)

func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource wetwire.Resource
		expected string
	}{
		{"VPC", VPC{}, "AWS::EC2::VPC"},
		{"Subnet", Subnet{}, "AWS::EC2::Subnet"},
		{"SecurityGroup", SecurityGroup{}, "AWS::EC2::SecurityGroup"},
		{"InternetGateway", InternetGateway{}, "AWS::EC2::InternetGateway"},
		{"VPCGatewayAttachment", VPCGatewayAttachment{}, "AWS::EC2::VPCGatewayAttachment"},
		{"EIP", EIP{}, "AWS::EC2::EIP"},
		{"NatGateway", NatGateway{}, "AWS::EC2::NatGateway"},
		{"RouteTable", RouteTable{}, "AWS::EC2::RouteTable"},
		{"Route", Route{}, "AWS::EC2::Route"},
		{"SubnetRouteTableAssociation", SubnetRouteTableAssociation{}, "AWS::EC2::SubnetRouteTableAssociation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

func TestSubnet_AddTag(t *testing.T) {
	subnet := &Subnet{Tags: []wetwire.Tag{{Key: "Name", Value: "private-a"}}}

	subnet.AddTag("kubernetes.io/role/internal-elb", "1")
	subnet.AddTag("kubernetes.io/role/internal-elb", "1")

	assert.Equal(t, []wetwire.Tag{
		{Key: "Name", Value: "private-a"},
		{Key: "kubernetes.io/role/internal-elb", Value: "1"},
	}, subnet.Tags)
}
