package wetwire_eks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrRef_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected string
	}{
		{
			name:     "role arn",
			ref:      AttrRef{Resource: "ClusterRole", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["ClusterRole","Arn"]}`,
		},
		{
			name:     "cluster endpoint",
			ref:      AttrRef{Resource: "Cluster", Attribute: "Endpoint"},
			expected: `{"Fn::GetAtt":["Cluster","Endpoint"]}`,
		},
		{
			name:     "certificate authority",
			ref:      AttrRef{Resource: "Cluster", Attribute: "CertificateAuthorityData"},
			expected: `{"Fn::GetAtt":["Cluster","CertificateAuthorityData"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ref)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestAttrRef_IsZero(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected bool
	}{
		{"empty", AttrRef{}, true},
		{"with resource", AttrRef{Resource: "ClusterRole"}, false},
		{"with attribute", AttrRef{Attribute: "Arn"}, false},
		{"fully populated", AttrRef{Resource: "ClusterRole", Attribute: "Arn"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.IsZero())
		})
	}
}

func TestTemplate_JSONShape(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"Cluster": {
				Type:       "AWS::EKS::Cluster",
				Properties: map[string]any{"Name": "demo"},
				DependsOn:  []string{"ClusterRole"},
			},
		},
		Outputs: map[string]Output{
			"ClusterArn": {
				Value:  AttrRef{Resource: "Cluster", Attribute: "Arn"},
				Export: &Export{Name: "demo-arn"},
			},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	assert.NotContains(t, parsed, "Parameters")
	assert.NotContains(t, parsed, "Description")

	resources := parsed["Resources"].(map[string]any)
	cluster := resources["Cluster"].(map[string]any)
	assert.Equal(t, "AWS::EKS::Cluster", cluster["Type"])
	assert.Equal(t, []any{"ClusterRole"}, cluster["DependsOn"])

	outputs := parsed["Outputs"].(map[string]any)
	arn := outputs["ClusterArn"].(map[string]any)
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"Cluster", "Arn"}}, arn["Value"])
	assert.Equal(t, map[string]any{"Name": "demo-arn"}, arn["Export"])
}

func TestDiffSummary_JSON(t *testing.T) {
	data, err := json.Marshal(DiffSummary{Added: 1, Total: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":1,"removed":0,"modified":0,"outputs":0,"total":1}`, string(data))
}

func TestSetTag(t *testing.T) {
	tags := []Tag{{Key: "Name", Value: "private-a"}}

	tags = SetTag(tags, "kubernetes.io/role/internal-elb", "1")
	require.Len(t, tags, 2)
	assert.Equal(t, Tag{Key: "kubernetes.io/role/internal-elb", Value: "1"}, tags[1])

	tags = SetTag(tags, "Name", "renamed")
	require.Len(t, tags, 2)
	assert.Equal(t, "renamed", tags[0].Value)
}

func TestTagsFromMap(t *testing.T) {
	assert.Nil(t, TagsFromMap(nil))

	tags := TagsFromMap(map[string]string{"team": "platform", "env": "prod"})
	assert.Equal(t, []Tag{
		{Key: "env", Value: "prod"},
		{Key: "team", Value: "platform"},
	}, tags)
}
