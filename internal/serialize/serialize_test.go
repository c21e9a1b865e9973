package serialize

import (
	"testing"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScaling struct {
	MinSize     *int `json:"MinSize,omitempty"`
	MaxSize     *int `json:"MaxSize,omitempty"`
	DesiredSize *int `json:"DesiredSize,omitempty"`
}

type testTaint struct {
	Key    string `json:"Key,omitempty"`
	Effect string `json:"Effect,omitempty"`
}

type testNodegroup struct {
	ClusterName   any               `json:"ClusterName,omitempty"`
	NodeRole      any               `json:"NodeRole,omitempty"`
	Subnets       []any             `json:"Subnets,omitempty"`
	InstanceTypes []string          `json:"InstanceTypes,omitempty"`
	DiskSize      int               `json:"DiskSize,omitempty"`
	ScalingConfig *testScaling      `json:"ScalingConfig,omitempty"`
	Labels        map[string]string `json:"Labels,omitempty"`
	Taints        []testTaint       `json:"Taints,omitempty"`
	Type_         string            `json:"Type,omitempty"`
	Ignored       string            `json:"-"`
	internal      string
}

func intPtr(v int) *int { return &v }

func TestResource_Simple(t *testing.T) {
	ng := testNodegroup{ClusterName: "demo"}

	result, err := Resource(ng)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ClusterName": "demo"}, result)
}

func TestResource_OmitsZeroValues(t *testing.T) {
	ng := testNodegroup{
		ClusterName: "demo",
		Ignored:     "skip",
		internal:    "skip",
	}

	result, err := Resource(&ng)
	require.NoError(t, err)
	assert.NotContains(t, result, "DiskSize")
	assert.NotContains(t, result, "Subnets")
	assert.NotContains(t, result, "Ignored")
	assert.NotContains(t, result, "internal")
}

func TestResource_KeepsZeroThroughPointer(t *testing.T) {
	ng := testNodegroup{
		ScalingConfig: &testScaling{MinSize: intPtr(0), MaxSize: intPtr(3)},
	}

	result, err := Resource(ng)
	require.NoError(t, err)
	scaling := result["ScalingConfig"].(map[string]any)
	assert.Equal(t, int64(0), scaling["MinSize"])
	assert.Equal(t, int64(3), scaling["MaxSize"])
	assert.NotContains(t, scaling, "DesiredSize")
}

func TestResource_AttrRef(t *testing.T) {
	ng := testNodegroup{
		NodeRole: wetwire.AttrRef{Resource: "NodeRole", Attribute: "Arn"},
	}

	result, err := Resource(ng)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"NodeRole", "Arn"}}, result["NodeRole"])
}

func TestResource_SlicesAndMaps(t *testing.T) {
	ng := testNodegroup{
		Subnets:       []any{"subnet-a", map[string]any{"Ref": "PrivateSubnet1"}},
		InstanceTypes: []string{"m5.large"},
		Labels:        map[string]string{"role": "worker"},
		Taints:        []testTaint{{Key: "dedicated", Effect: "NO_SCHEDULE"}},
	}

	result, err := Resource(ng)
	require.NoError(t, err)
	assert.Equal(t, []any{"subnet-a", map[string]any{"Ref": "PrivateSubnet1"}}, result["Subnets"])
	assert.Equal(t, []any{"m5.large"}, result["InstanceTypes"])
	assert.Equal(t, map[string]any{"role": "worker"}, result["Labels"])
	assert.Equal(t, []any{map[string]any{"Key": "dedicated", "Effect": "NO_SCHEDULE"}}, result["Taints"])
}

func TestResource_TypeSuffix(t *testing.T) {
	result, err := Resource(testNodegroup{Type_: "STANDARD"})
	require.NoError(t, err)
	assert.Equal(t, "STANDARD", result["Type"])
}

func TestResource_NilAndNonStruct(t *testing.T) {
	var ng *testNodegroup
	result, err := Resource(ng)
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = Resource("not a struct")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestProperties_NormalizesNumbers(t *testing.T) {
	props, err := Properties(testNodegroup{
		DiskSize:      50,
		ScalingConfig: &testScaling{MinSize: intPtr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(50), props["DiskSize"])
	assert.Equal(t, map[string]any{"MinSize": float64(1)}, props["ScalingConfig"])
}

func TestProperties_RejectsNonStruct(t *testing.T) {
	_, err := Properties(42)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	out, err := Normalize(wetwire.AttrRef{Resource: "Cluster", Attribute: "Endpoint"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"Cluster", "Endpoint"}}, out)
}
