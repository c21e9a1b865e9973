package iam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-eks-go/intrinsics"
)

func TestResourceTypes(t *testing.T) {
	assert.Equal(t, "AWS::IAM::Role", Role{}.ResourceType())
	assert.Equal(t, "AWS::IAM::OIDCProvider", OIDCProvider{}.ResourceType())
}

func TestRoleSerialization(t *testing.T) {
	role := Role{
		AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy(intrinsics.ServicePrincipal{"eks.amazonaws.com"}),
		ManagedPolicyArns:        []any{intrinsics.ManagedPolicyArn("AmazonEKSClusterPolicy")},
	}

	data, err := json.Marshal(role)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.NotContains(t, parsed, "RoleName")

	doc := parsed["AssumeRolePolicyDocument"].(map[string]any)
	assert.Equal(t, "2012-10-17", doc["Version"])
	assert.Equal(t, []any{
		map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"},
	}, parsed["ManagedPolicyArns"])
}
