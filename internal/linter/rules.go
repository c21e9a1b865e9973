// Rules:
//
//	WEK001: Public API endpoint reachable from any address
//	WEK002: Kubernetes secrets are not envelope-encrypted
//	WEK003: Control plane audit logging is disabled
//	WEK004: Node group placed in a single subnet
//	WEK005: Add-on version is not pinned
//	WEK006: Kubernetes version is past standard support
//	WEK007: Spot node group with a single instance type
//	WEK008: Private node groups without NAT egress

package linter

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/version"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/cluster"
	"github.com/lex00/wetwire-eks-go/internal/config"
)

// StandardSupportVersion is the oldest Kubernetes version in EKS standard
// support.
const StandardSupportVersion = "1.28"

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(cfg *config.Config) []wetwire.LintIssue
}

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		PublicEndpointOpen{},
		SecretsNotEncrypted{},
		AuditLoggingDisabled{},
		SingleSubnetNodegroup{},
		UnpinnedAddonVersion{},
		OutdatedVersion{},
		SpotSingleInstanceType{},
		PrivateNodesWithoutEgress{},
	}
}

func issue(r Rule, severity, path, format string, args ...any) wetwire.LintIssue {
	return wetwire.LintIssue{
		Path:     path,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Rule:     r.ID(),
	}
}

// PublicEndpointOpen flags a public endpoint without publicAccessCidrs or
// with 0.0.0.0/0 among them.
type PublicEndpointOpen struct{}

func (r PublicEndpointOpen) ID() string { return "WEK001" }
func (r PublicEndpointOpen) Description() string {
	return "Public API endpoint reachable from any address"
}

func (r PublicEndpointOpen) Check(cfg *config.Config) []wetwire.LintIssue {
	access, err := cluster.ParseEndpointAccess(cfg.Cluster.EndpointAccess)
	if err != nil || !access.Public() {
		return nil
	}
	if len(cfg.Cluster.PublicAccessCIDRs) == 0 {
		return []wetwire.LintIssue{issue(r, SeverityWarning, "cluster.endpointAccess",
			"public endpoint is open to 0.0.0.0/0; restrict it with publicAccessCidrs or use a private endpoint")}
	}
	for i, cidr := range cfg.Cluster.PublicAccessCIDRs {
		if cidr == "0.0.0.0/0" {
			return []wetwire.LintIssue{issue(r, SeverityWarning, fmt.Sprintf("cluster.publicAccessCidrs[%d]", i),
				"public endpoint is open to 0.0.0.0/0")}
		}
	}
	return nil
}

// SecretsNotEncrypted flags clusters without a secrets encryption key.
type SecretsNotEncrypted struct{}

func (r SecretsNotEncrypted) ID() string { return "WEK002" }
func (r SecretsNotEncrypted) Description() string {
	return "Kubernetes secrets are not envelope-encrypted"
}

func (r SecretsNotEncrypted) Check(cfg *config.Config) []wetwire.LintIssue {
	if cfg.Cluster.SecretsEncryptionKey != "" {
		return nil
	}
	return []wetwire.LintIssue{issue(r, SeverityWarning, "cluster.secretsEncryptionKey",
		"secrets are stored without KMS envelope encryption; set secretsEncryptionKey")}
}

// AuditLoggingDisabled flags clusters that do not ship audit logs.
type AuditLoggingDisabled struct{}

func (r AuditLoggingDisabled) ID() string { return "WEK003" }
func (r AuditLoggingDisabled) Description() string {
	return "Control plane audit logging is disabled"
}

func (r AuditLoggingDisabled) Check(cfg *config.Config) []wetwire.LintIssue {
	for _, l := range cfg.Cluster.Logging {
		if l == string(cluster.LogAudit) {
			return nil
		}
	}
	return []wetwire.LintIssue{issue(r, SeverityInfo, "cluster.logging",
		"control plane audit logs are not enabled")}
}

// SingleSubnetNodegroup flags node groups that end up in one availability
// zone.
type SingleSubnetNodegroup struct{}

func (r SingleSubnetNodegroup) ID() string { return "WEK004" }
func (r SingleSubnetNodegroup) Description() string {
	return "Node group placed in a single subnet"
}

func (r SingleSubnetNodegroup) Check(cfg *config.Config) []wetwire.LintIssue {
	var issues []wetwire.LintIssue
	for i, ng := range cfg.Nodegroups {
		placement := ng.Placement
		if placement == "" {
			placement = "private"
		}
		if subnetCount(cfg.Network, placement) == 1 {
			issues = append(issues, issue(r, SeverityWarning, fmt.Sprintf("nodegroups[%d]", i),
				"node group %s has a single %s subnet and no availability zone redundancy", ng.ID, placement))
		}
	}
	return issues
}

func subnetCount(n config.NetworkConfig, placement string) int {
	if !n.Imported() {
		if n.MaxAZs == 0 {
			return 2
		}
		return n.MaxAZs
	}
	private, public := len(n.PrivateSubnetIDs), len(n.PublicSubnetIDs)
	if placement == "public" {
		return public
	}
	// Private placement falls back to public subnets.
	if private == 0 {
		return public
	}
	return private
}

// UnpinnedAddonVersion flags add-ons that float to the default version.
type UnpinnedAddonVersion struct{}

func (r UnpinnedAddonVersion) ID() string { return "WEK005" }
func (r UnpinnedAddonVersion) Description() string {
	return "Add-on version is not pinned"
}

func (r UnpinnedAddonVersion) Check(cfg *config.Config) []wetwire.LintIssue {
	var issues []wetwire.LintIssue
	for i, addon := range cfg.Addons {
		if addon.Version == "" {
			issues = append(issues, issue(r, SeverityInfo, fmt.Sprintf("addons[%d].version", i),
				"add-on %s uses the default version for the cluster", addon.Name))
		}
	}
	return issues
}

// OutdatedVersion flags Kubernetes versions older than StandardSupportVersion.
type OutdatedVersion struct{}

func (r OutdatedVersion) ID() string { return "WEK006" }
func (r OutdatedVersion) Description() string {
	return "Kubernetes version is past standard support"
}

func (r OutdatedVersion) Check(cfg *config.Config) []wetwire.LintIssue {
	v := cfg.Cluster.Version
	if v == "" {
		v = cluster.DefaultVersion
	}
	parsed, err := version.ParseGeneric(v)
	if err != nil {
		return []wetwire.LintIssue{issue(r, SeverityError, "cluster.version", "cannot parse version %q", v)}
	}
	if parsed.LessThan(version.MustParseGeneric(StandardSupportVersion)) {
		return []wetwire.LintIssue{issue(r, SeverityWarning, "cluster.version",
			"Kubernetes %s is past standard support; upgrade to %s or later", v, StandardSupportVersion)}
	}
	return nil
}

// SpotSingleInstanceType flags spot node groups that cannot diversify.
type SpotSingleInstanceType struct{}

func (r SpotSingleInstanceType) ID() string { return "WEK007" }
func (r SpotSingleInstanceType) Description() string {
	return "Spot node group with a single instance type"
}

func (r SpotSingleInstanceType) Check(cfg *config.Config) []wetwire.LintIssue {
	var issues []wetwire.LintIssue
	for i, ng := range cfg.Nodegroups {
		if ng.CapacityType == cluster.CapacitySpot && len(ng.InstanceTypes) < 2 {
			issues = append(issues, issue(r, SeverityWarning, fmt.Sprintf("nodegroups[%d].instanceTypes", i),
				"spot node group %s should list several instance types", ng.ID))
		}
	}
	return issues
}

// PrivateNodesWithoutEgress flags private node groups, including the default
// capacity, in a created network without NAT gateways. Such nodes cannot
// pull images or join the cluster.
type PrivateNodesWithoutEgress struct{}

func (r PrivateNodesWithoutEgress) ID() string { return "WEK008" }
func (r PrivateNodesWithoutEgress) Description() string {
	return "Private node groups without NAT egress"
}

func (r PrivateNodesWithoutEgress) Check(cfg *config.Config) []wetwire.LintIssue {
	n := cfg.Network
	if n.Imported() || n.NatGateways == nil || *n.NatGateways > 0 {
		return nil
	}
	var issues []wetwire.LintIssue
	// The default node group always lands in private subnets.
	if dc := cfg.Cluster.DefaultCapacity; dc == nil || *dc > 0 {
		issues = append(issues, issue(r, SeverityError, "cluster.defaultCapacity",
			"the default node group is private but the network has no NAT gateways"))
	}
	for i, ng := range cfg.Nodegroups {
		if ng.Placement != "public" {
			issues = append(issues, issue(r, SeverityError, fmt.Sprintf("nodegroups[%d].placement", i),
				"node group %s is private but the network has no NAT gateways", ng.ID))
		}
	}
	return issues
}
