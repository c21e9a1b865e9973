package eks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-eks-go"
)

// TestResourceTypes verifies the EKS resource types return correct CloudFormation types.
func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource wetwire.Resource
		expected string
	}{
		{"Cluster", Cluster{}, "AWS::EKS::Cluster"},
		{"Nodegroup", Nodegroup{}, "AWS::EKS::Nodegroup"},
		{"FargateProfile", FargateProfile{}, "AWS::EKS::FargateProfile"},
		{"Addon", Addon{}, "AWS::EKS::Addon"},
		{"AccessEntry", AccessEntry{}, "AWS::EKS::AccessEntry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

func TestClusterAttributes(t *testing.T) {
	attrs := Cluster{}.Attributes()
	assert.Contains(t, attrs, "Arn")
	assert.Contains(t, attrs, "Endpoint")
	assert.Contains(t, attrs, "CertificateAuthorityData")
	assert.Contains(t, attrs, "ClusterSecurityGroupId")
	assert.Contains(t, attrs, "OpenIdConnectIssuerUrl")
}

// TestClusterSerialization tests that a private-only endpoint keeps the explicit false.
func TestClusterSerialization(t *testing.T) {
	public, private := false, true
	cluster := Cluster{
		Name:    "demo",
		Version: "1.29",
		RoleArn: wetwire.AttrRef{Resource: "ClusterRole", Attribute: "Arn"},
		ResourcesVpcConfig: &Cluster_ResourcesVpcConfig{
			SubnetIds:             []any{"subnet-1", "subnet-2"},
			EndpointPublicAccess:  &public,
			EndpointPrivateAccess: &private,
		},
		KubernetesNetworkConfig: &Cluster_KubernetesNetworkConfig{IpFamily: "ipv6"},
		Logging: &Cluster_Logging{
			ClusterLogging: &Cluster_ClusterLogging{
				EnabledTypes: []Cluster_LoggingTypeConfig{{Type_: "api"}},
			},
		},
	}

	data, err := json.Marshal(cluster)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "demo", parsed["Name"])
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"ClusterRole", "Arn"}}, parsed["RoleArn"])

	vpc := parsed["ResourcesVpcConfig"].(map[string]any)
	assert.Equal(t, false, vpc["EndpointPublicAccess"])
	assert.Equal(t, true, vpc["EndpointPrivateAccess"])

	logging := parsed["Logging"].(map[string]any)["ClusterLogging"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"Type": "api"}}, logging["EnabledTypes"])
}

func TestNodegroupSerialization(t *testing.T) {
	zero, three, five := 0, 3, 5
	ng := Nodegroup{
		ClusterName: "demo",
		ScalingConfig: &Nodegroup_ScalingConfig{
			MinSize:     &zero,
			DesiredSize: &three,
			MaxSize:     &five,
		},
		Taints: []Nodegroup_Taint{{Key: "dedicated", Value: "gpu", Effect: "NO_SCHEDULE"}},
	}

	data, err := json.Marshal(ng)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"MinSize":0`)
	assert.Contains(t, string(data), `"Effect":"NO_SCHEDULE"`)
}

func TestAccessEntrySerialization(t *testing.T) {
	entry := AccessEntry{
		ClusterName:  "demo",
		PrincipalArn: "arn:aws:iam::123456789012:role/admin",
		Type_:        "STANDARD",
		AccessPolicies: []AccessEntry_AccessPolicy{{
			PolicyArn:   "arn:aws:eks::aws:cluster-access-policy/AmazonEKSClusterAdminPolicy",
			AccessScope: &AccessEntry_AccessScope{Type_: "cluster"},
		}},
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "STANDARD", parsed["Type"])
	policies := parsed["AccessPolicies"].([]any)
	require.Len(t, policies, 1)
	scope := policies[0].(map[string]any)["AccessScope"].(map[string]any)
	assert.Equal(t, "cluster", scope["Type"])
}
