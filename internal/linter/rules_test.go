package linter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-eks-go/internal/config"
)

func intPtr(v int) *int { return &v }

// hardened passes every rule.
func hardened() *config.Config {
	return &config.Config{
		Stack:   config.StackConfig{Name: "platform"},
		Network: config.NetworkConfig{CIDR: "10.0.0.0/16", MaxAZs: 3},
		Cluster: config.ClusterConfig{
			Name:                 "platform",
			Version:              "1.30",
			EndpointAccess:       "public-and-private",
			PublicAccessCIDRs:    []string{"203.0.113.0/24"},
			SecretsEncryptionKey: "arn:aws:kms:eu-west-1:123456789012:key/abc",
			Logging:              []string{"api", "audit"},
			DefaultCapacity:      intPtr(0),
		},
		Nodegroups: []config.NodegroupConfig{{
			ID:            "General",
			InstanceTypes: []string{"m5.large"},
			Placement:     "private",
		}},
		Addons: []config.AddonConfig{{ID: "CoreDns", Name: "coredns", Version: "v1.11.1-eksbuild.4"}},
	}
}

func TestLint_Hardened(t *testing.T) {
	result := Lint(hardened(), Options{})
	assert.True(t, result.Success, "%v", result.Issues)
	assert.Empty(t, result.Issues)
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *config.Config)
		rule     string
		severity string
		path     string
	}{
		{
			name:     "open public endpoint",
			mutate:   func(c *config.Config) { c.Cluster.PublicAccessCIDRs = nil },
			rule:     "WEK001",
			severity: SeverityWarning,
			path:     "cluster.endpointAccess",
		},
		{
			name:     "explicit any cidr",
			mutate:   func(c *config.Config) { c.Cluster.PublicAccessCIDRs = []string{"10.0.0.0/8", "0.0.0.0/0"} },
			rule:     "WEK001",
			severity: SeverityWarning,
			path:     "cluster.publicAccessCidrs[1]",
		},
		{
			name:     "unencrypted secrets",
			mutate:   func(c *config.Config) { c.Cluster.SecretsEncryptionKey = "" },
			rule:     "WEK002",
			severity: SeverityWarning,
			path:     "cluster.secretsEncryptionKey",
		},
		{
			name:     "no audit logs",
			mutate:   func(c *config.Config) { c.Cluster.Logging = []string{"api"} },
			rule:     "WEK003",
			severity: SeverityInfo,
			path:     "cluster.logging",
		},
		{
			name:     "single az",
			mutate:   func(c *config.Config) { c.Network.MaxAZs = 1 },
			rule:     "WEK004",
			severity: SeverityWarning,
			path:     "nodegroups[0]",
		},
		{
			name: "single imported subnet",
			mutate: func(c *config.Config) {
				c.Network = config.NetworkConfig{VpcID: "vpc-1", PrivateSubnetIDs: []string{"subnet-a"}, PublicSubnetIDs: []string{"subnet-b", "subnet-c"}}
			},
			rule:     "WEK004",
			severity: SeverityWarning,
			path:     "nodegroups[0]",
		},
		{
			name:     "unpinned addon",
			mutate:   func(c *config.Config) { c.Addons[0].Version = "" },
			rule:     "WEK005",
			severity: SeverityInfo,
			path:     "addons[0].version",
		},
		{
			name:     "old version",
			mutate:   func(c *config.Config) { c.Cluster.Version = "1.26" },
			rule:     "WEK006",
			severity: SeverityWarning,
			path:     "cluster.version",
		},
		{
			name:     "unparseable version",
			mutate:   func(c *config.Config) { c.Cluster.Version = "latest" },
			rule:     "WEK006",
			severity: SeverityError,
			path:     "cluster.version",
		},
		{
			name:     "spot single type",
			mutate:   func(c *config.Config) { c.Nodegroups[0].CapacityType = "SPOT" },
			rule:     "WEK007",
			severity: SeverityWarning,
			path:     "nodegroups[0].instanceTypes",
		},
		{
			name:     "private nodes without nat",
			mutate:   func(c *config.Config) { c.Network.NatGateways = intPtr(0) },
			rule:     "WEK008",
			severity: SeverityError,
			path:     "nodegroups[0].placement",
		},
		{
			name: "default capacity without nat",
			mutate: func(c *config.Config) {
				c.Network.NatGateways = intPtr(0)
				c.Cluster.DefaultCapacity = nil
				c.Nodegroups[0].Placement = "public"
			},
			rule:     "WEK008",
			severity: SeverityError,
			path:     "cluster.defaultCapacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := hardened()
			tt.mutate(cfg)

			result := Lint(cfg, Options{})
			assert.False(t, result.Success)
			require.Len(t, result.Issues, 1, "%v", result.Issues)
			assert.Equal(t, tt.rule, result.Issues[0].Rule)
			assert.Equal(t, tt.severity, result.Issues[0].Severity)
			assert.Equal(t, tt.path, result.Issues[0].Path)
			assert.NotEmpty(t, result.Issues[0].Message)
		})
	}
}

func TestRules_NoFalsePositives(t *testing.T) {
	cfg := hardened()
	cfg.Cluster.EndpointAccess = "private"
	cfg.Cluster.PublicAccessCIDRs = nil
	cfg.Network.NatGateways = intPtr(0)
	cfg.Nodegroups[0].Placement = "public"
	cfg.Nodegroups[0].CapacityType = "SPOT"
	cfg.Nodegroups[0].InstanceTypes = []string{"m5.large", "m5a.large"}

	result := Lint(cfg, Options{})
	assert.Empty(t, result.Issues)
}

func TestRules_UnsetPlacementIsPrivate(t *testing.T) {
	cfg := hardened()
	cfg.Network = config.NetworkConfig{VpcID: "vpc-1", PrivateSubnetIDs: []string{"subnet-a"}, PublicSubnetIDs: []string{"subnet-b", "subnet-c"}}
	cfg.Nodegroups[0].Placement = ""

	issues := SingleSubnetNodegroup{}.Check(cfg)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "single private subnet")
}

func TestRules_DefaultCapacityWithNat(t *testing.T) {
	cfg := hardened()
	cfg.Cluster.DefaultCapacity = intPtr(3)
	cfg.Network.NatGateways = intPtr(1)
	assert.Empty(t, PrivateNodesWithoutEgress{}.Check(cfg))

	cfg.Cluster.DefaultCapacity = intPtr(0)
	cfg.Network.NatGateways = intPtr(0)
	cfg.Nodegroups[0].Placement = "public"
	assert.Empty(t, PrivateNodesWithoutEgress{}.Check(cfg))
}

func TestGetRules(t *testing.T) {
	assert.Len(t, getRules(Options{}), len(AllRules()))

	only := getRules(Options{EnabledRules: []string{"WEK002", "WEK005"}})
	require.Len(t, only, 2)
	assert.Equal(t, "WEK002", only[0].ID())

	skipped := getRules(Options{DisabledRules: []string{"WEK002"}})
	assert.Len(t, skipped, len(AllRules())-1)
	for _, r := range skipped {
		assert.NotEqual(t, "WEK002", r.ID())
	}
}

func TestAllRules_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range AllRules() {
		assert.False(t, seen[r.ID()], r.ID())
		assert.NotEmpty(t, r.Description())
		seen[r.ID()] = true
	}
}

func TestLint_SortedAndCounted(t *testing.T) {
	cfg := hardened()
	cfg.Cluster.SecretsEncryptionKey = ""
	cfg.Cluster.Version = "latest"
	cfg.Cluster.PublicAccessCIDRs = nil

	result := Lint(cfg, Options{})
	require.Len(t, result.Issues, 3)
	assert.Equal(t, "WEK001", result.Issues[0].Rule)
	assert.Equal(t, "WEK002", result.Issues[1].Rule)
	assert.Equal(t, "WEK006", result.Issues[2].Rule)
	assert.Equal(t, 1, result.Errors())
}

func TestLintFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster:\n  name: demo\n"), 0o644))

	result, err := LintFile(path, Options{EnabledRules: []string{"WEK002"}})
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "WEK002", result.Issues[0].Rule)

	_, err = LintFile(filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	assert.Error(t, err)
}
