// Package network declares or imports the VPC a cluster runs in.
//
// Network topology created by New with MaxAZs=2 and one NAT gateway:
//
//	VPC (10.0.0.0/16)
//	|
//	+-- Public Subnet 1 (AZ 0) --+-- NAT Gateway
//	+-- Public Subnet 2 (AZ 1)   |
//	|                            |
//	+-- Private Subnet 1 (AZ 0) -+
//	+-- Private Subnet 2 (AZ 1) -+
package network

import (
	"errors"
	"fmt"
	"math/bits"
	"net"
	"strconv"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/ec2"
	"github.com/lex00/wetwire-eks-go/stack"
)

const (
	DefaultCIDR           = "10.0.0.0/16"
	DefaultMaxAZs         = 2
	DefaultSubnetCidrMask = 24
)

var (
	// ErrInvalidCIDR is returned for a VPC CIDR that is not an IPv4 network.
	ErrInvalidCIDR = errors.New("invalid VPC CIDR")
	// ErrInvalidSubnetMask is returned when the subnets do not fit the VPC CIDR.
	ErrInvalidSubnetMask = errors.New("invalid subnet mask")
	// ErrNoSubnets is returned when an imported VPC has no subnets.
	ErrNoSubnets = errors.New("at least one subnet is required")
)

// Vpc is the network a cluster is placed in.
type Vpc interface {
	// VpcID returns the VPC ID, literal or intrinsic.
	VpcID() any
	PrivateSubnets() []*Subnet
	PublicSubnets() []*Subnet
}

// Subnet is a subnet reference. Resource is set only when the subnet is
// declared in the same stack, which is what makes it taggable.
type Subnet struct {
	// Name is the logical ID or the imported subnet ID.
	Name     string
	ID       any
	Resource *ec2.Subnet
}

// Taggable reports whether tags can be added to the subnet.
func (s *Subnet) Taggable() bool { return s.Resource != nil }

// SubnetIDs returns the IDs of the given subnets.
func SubnetIDs(subnets []*Subnet) []any {
	ids := make([]any, len(subnets))
	for i, s := range subnets {
		ids[i] = s.ID
	}
	return ids
}

// Props configures a new VPC.
type Props struct {
	// CIDR is the VPC IPv4 block. Defaults to 10.0.0.0/16.
	CIDR string
	// MaxAZs is the number of availability zones to span. Defaults to 2.
	MaxAZs int
	// SubnetCidrMask is the prefix length of every subnet. Defaults to 24.
	SubnetCidrMask int
	// NatGateways is the number of NAT gateways for private egress.
	// nil means one; zero leaves the private subnets without egress.
	NatGateways *int
	Tags        map[string]string
}

// Network is a VPC declared in a stack.
type Network struct {
	id      string
	vpc     *ec2.VPC
	public  []*Subnet
	private []*Subnet
}

var _ Vpc = (*Network)(nil)

// VpcID returns a Ref to the declared VPC.
func (n *Network) VpcID() any { return intrinsics.Ref{LogicalName: n.id} }

// PrivateSubnets returns the private subnets, one per availability zone.
func (n *Network) PrivateSubnets() []*Subnet { return n.private }

// PublicSubnets returns the public subnets, one per availability zone.
func (n *Network) PublicSubnets() []*Subnet { return n.public }

// Resource returns the declared VPC.
func (n *Network) Resource() *ec2.VPC { return n.vpc }

// New declares a VPC with public and private subnets across availability
// zones. Subnet CIDRs are carved from the VPC block with Fn::Cidr.
func New(s *stack.Stack, id string, props Props) (*Network, error) {
	props = withDefaults(props)

	_, block, err := net.ParseCIDR(props.CIDR)
	if err != nil || block.IP.To4() == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCIDR, props.CIDR)
	}
	prefix, _ := block.Mask.Size()
	count := 2 * props.MaxAZs
	needed := bits.Len(uint(count - 1))
	if props.SubnetCidrMask > 28 || props.SubnetCidrMask-prefix < needed {
		return nil, fmt.Errorf("%w: %d subnets of /%d do not fit in %s",
			ErrInvalidSubnetMask, count, props.SubnetCidrMask, props.CIDR)
	}
	natCount := 1
	if props.NatGateways != nil {
		natCount = *props.NatGateways
	}
	if natCount < 0 || natCount > props.MaxAZs {
		return nil, fmt.Errorf("nat gateways must be between 0 and %d, got %d", props.MaxAZs, natCount)
	}

	n := &Network{id: id}
	tags := wetwire.TagsFromMap(props.Tags)
	named := func(suffix string) []wetwire.Tag {
		out := append([]wetwire.Tag(nil), tags...)
		return wetwire.SetTag(out, "Name", intrinsics.Sub{String: "${AWS::StackName}/" + id + suffix})
	}

	n.vpc = &ec2.VPC{
		CidrBlock:          props.CIDR,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		Tags:               named(""),
	}
	if err := s.Add(id, n.vpc); err != nil {
		return nil, err
	}

	igwID := id + "InternetGateway"
	attachID := id + "GatewayAttachment"
	if err := s.Add(igwID, &ec2.InternetGateway{Tags: named("/igw")}); err != nil {
		return nil, err
	}
	if err := s.Add(attachID, &ec2.VPCGatewayAttachment{
		VpcId:             n.VpcID(),
		InternetGatewayId: intrinsics.Ref{LogicalName: igwID},
	}); err != nil {
		return nil, err
	}

	publicRT := id + "PublicRouteTable"
	if err := s.Add(publicRT, &ec2.RouteTable{VpcId: n.VpcID(), Tags: named("/public")}); err != nil {
		return nil, err
	}
	if err := s.Add(id+"PublicDefaultRoute", &ec2.Route{
		RouteTableId:         intrinsics.Ref{LogicalName: publicRT},
		DestinationCidrBlock: "0.0.0.0/0",
		GatewayId:            intrinsics.Ref{LogicalName: igwID},
	}, stack.DependsOn(attachID)); err != nil {
		return nil, err
	}

	cidrBits := 32 - props.SubnetCidrMask
	subnetCIDR := func(index int) any {
		return intrinsics.Select{
			Index: index,
			List:  intrinsics.Cidr{IPBlock: props.CIDR, Count: count, CidrBits: cidrBits},
		}
	}

	var natIDs []string
	for az := 0; az < props.MaxAZs; az++ {
		suffix := strconv.Itoa(az + 1)
		subnetID := id + "PublicSubnet" + suffix
		subnet := &ec2.Subnet{
			VpcId:               n.VpcID(),
			CidrBlock:           subnetCIDR(az),
			AvailabilityZone:    intrinsics.Select{Index: az, List: intrinsics.GetAZs{}},
			MapPublicIpOnLaunch: true,
			Tags:                named("/PublicSubnet" + suffix),
		}
		if err := s.Add(subnetID, subnet, stack.DependsOn(attachID)); err != nil {
			return nil, err
		}
		if err := s.Add(subnetID+"RouteTableAssociation", &ec2.SubnetRouteTableAssociation{
			SubnetId:     intrinsics.Ref{LogicalName: subnetID},
			RouteTableId: intrinsics.Ref{LogicalName: publicRT},
		}); err != nil {
			return nil, err
		}
		n.public = append(n.public, &Subnet{Name: subnetID, ID: intrinsics.Ref{LogicalName: subnetID}, Resource: subnet})

		if az < natCount {
			eipID := subnetID + "EIP"
			natID := subnetID + "NatGateway"
			if err := s.Add(eipID, &ec2.EIP{Domain: "vpc", Tags: named("/PublicSubnet" + suffix)}, stack.DependsOn(attachID)); err != nil {
				return nil, err
			}
			if err := s.Add(natID, &ec2.NatGateway{
				AllocationId: wetwire.AttrRef{Resource: eipID, Attribute: "AllocationId"},
				SubnetId:     intrinsics.Ref{LogicalName: subnetID},
				Tags:         named("/PublicSubnet" + suffix),
			}); err != nil {
				return nil, err
			}
			natIDs = append(natIDs, natID)
		}
	}

	for az := 0; az < props.MaxAZs; az++ {
		suffix := strconv.Itoa(az + 1)
		subnetID := id + "PrivateSubnet" + suffix
		rtID := subnetID + "RouteTable"
		subnet := &ec2.Subnet{
			VpcId:            n.VpcID(),
			CidrBlock:        subnetCIDR(props.MaxAZs + az),
			AvailabilityZone: intrinsics.Select{Index: az, List: intrinsics.GetAZs{}},
			Tags:             named("/PrivateSubnet" + suffix),
		}
		if err := s.Add(subnetID, subnet); err != nil {
			return nil, err
		}
		if err := s.Add(rtID, &ec2.RouteTable{VpcId: n.VpcID(), Tags: named("/PrivateSubnet" + suffix)}); err != nil {
			return nil, err
		}
		if err := s.Add(subnetID+"RouteTableAssociation", &ec2.SubnetRouteTableAssociation{
			SubnetId:     intrinsics.Ref{LogicalName: subnetID},
			RouteTableId: intrinsics.Ref{LogicalName: rtID},
		}); err != nil {
			return nil, err
		}
		if len(natIDs) > 0 {
			if err := s.Add(subnetID+"DefaultRoute", &ec2.Route{
				RouteTableId:         intrinsics.Ref{LogicalName: rtID},
				DestinationCidrBlock: "0.0.0.0/0",
				NatGatewayId:         intrinsics.Ref{LogicalName: natIDs[az%len(natIDs)]},
			}); err != nil {
				return nil, err
			}
		}
		n.private = append(n.private, &Subnet{Name: subnetID, ID: intrinsics.Ref{LogicalName: subnetID}, Resource: subnet})
	}

	s.Logger().V(1).Info("network declared", "id", id, "azs", props.MaxAZs, "natGateways", natCount)
	return n, nil
}

func withDefaults(p Props) Props {
	if p.CIDR == "" {
		p.CIDR = DefaultCIDR
	}
	if p.MaxAZs <= 0 {
		p.MaxAZs = DefaultMaxAZs
	}
	if p.SubnetCidrMask == 0 {
		p.SubnetCidrMask = DefaultSubnetCidrMask
	}
	return p
}

// Attributes identifies an existing VPC.
type Attributes struct {
	VpcID            string
	PrivateSubnetIDs []string
	PublicSubnetIDs  []string
}

// Imported is a VPC defined outside the stack. Its subnets cannot be tagged.
type Imported struct {
	vpcID   string
	private []*Subnet
	public  []*Subnet
}

var _ Vpc = (*Imported)(nil)

// FromAttributes references an existing VPC by ID.
func FromAttributes(attrs Attributes) (*Imported, error) {
	if attrs.VpcID == "" {
		return nil, errors.New("vpc ID is required")
	}
	if len(attrs.PrivateSubnetIDs)+len(attrs.PublicSubnetIDs) == 0 {
		return nil, ErrNoSubnets
	}
	imported := &Imported{vpcID: attrs.VpcID}
	for _, id := range attrs.PrivateSubnetIDs {
		imported.private = append(imported.private, &Subnet{Name: id, ID: id})
	}
	for _, id := range attrs.PublicSubnetIDs {
		imported.public = append(imported.public, &Subnet{Name: id, ID: id})
	}
	return imported, nil
}

// VpcID returns the imported VPC ID.
func (i *Imported) VpcID() any { return i.vpcID }

// PrivateSubnets returns the imported private subnets.
func (i *Imported) PrivateSubnets() []*Subnet { return i.private }

// PublicSubnets returns the imported public subnets.
func (i *Imported) PublicSubnets() []*Subnet { return i.public }
