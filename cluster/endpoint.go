package cluster

import (
	"errors"
	"fmt"
	"net"
)

// ErrPrivateEndpointCIDRs is returned when public CIDRs are requested for a
// private-only endpoint.
var ErrPrivateEndpointCIDRs = errors.New("cannot restrict public access to an endpoint that is not publicly accessible")

// EndpointAccess controls how the Kubernetes API server endpoint is reached.
// The zero value is EndpointAccessPublicAndPrivate.
type EndpointAccess struct {
	public      bool
	private     bool
	publicCIDRs []string
}

var (
	// EndpointAccessPublic exposes the endpoint on the internet only.
	// Worker node traffic leaves the VPC to reach it.
	EndpointAccessPublic = EndpointAccess{public: true}
	// EndpointAccessPrivate reaches the endpoint from within the VPC only.
	EndpointAccessPrivate = EndpointAccess{private: true}
	// EndpointAccessPublicAndPrivate exposes the endpoint on the internet and
	// keeps worker node traffic inside the VPC.
	EndpointAccessPublicAndPrivate = EndpointAccess{public: true, private: true}
)

// OnlyFrom restricts public access to the given CIDR blocks.
func (e EndpointAccess) OnlyFrom(cidrs ...string) (EndpointAccess, error) {
	e = e.orDefault()
	if !e.public {
		return EndpointAccess{}, ErrPrivateEndpointCIDRs
	}
	for _, cidr := range cidrs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return EndpointAccess{}, fmt.Errorf("invalid public access CIDR %q: %w", cidr, err)
		}
	}
	e.publicCIDRs = append([]string(nil), cidrs...)
	return e, nil
}

// Public reports whether the endpoint is reachable from the internet.
func (e EndpointAccess) Public() bool { return e.orDefault().public }

// Private reports whether the endpoint is reachable from inside the VPC.
func (e EndpointAccess) Private() bool { return e.orDefault().private }

// PublicCIDRs returns the CIDR blocks allowed to reach the public endpoint.
// Empty means unrestricted.
func (e EndpointAccess) PublicCIDRs() []string { return e.publicCIDRs }

func (e EndpointAccess) orDefault() EndpointAccess {
	if !e.public && !e.private {
		return EndpointAccessPublicAndPrivate
	}
	return e
}

// ParseEndpointAccess maps "public", "private" and "public-and-private" to
// an EndpointAccess. An empty string selects the default.
func ParseEndpointAccess(s string) (EndpointAccess, error) {
	switch s {
	case "public":
		return EndpointAccessPublic, nil
	case "private":
		return EndpointAccessPrivate, nil
	case "", "public-and-private":
		return EndpointAccessPublicAndPrivate, nil
	default:
		return EndpointAccess{}, fmt.Errorf("unknown endpoint access %q", s)
	}
}
