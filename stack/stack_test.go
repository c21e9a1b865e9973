package stack

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/eks"
	"github.com/lex00/wetwire-eks-go/resources/iam"
)

func TestStack_Add(t *testing.T) {
	s := New("demo", Props{})

	require.NoError(t, s.Add("ClusterRole", &iam.Role{}))
	require.NoError(t, s.Add("Cluster", &eks.Cluster{Name: "demo"}))

	assert.Equal(t, []string{"ClusterRole", "Cluster"}, s.Resources())

	res, ok := s.Lookup("Cluster")
	require.True(t, ok)
	assert.Equal(t, "AWS::EKS::Cluster", res.ResourceType())

	_, ok = s.Lookup("Missing")
	assert.False(t, ok)
}

func TestStack_Add_Errors(t *testing.T) {
	s := New("demo", Props{})
	require.NoError(t, s.Add("Cluster", &eks.Cluster{}))

	tests := []struct {
		name string
		id   string
		err  error
	}{
		{"duplicate", "Cluster", ErrDuplicateLogicalID},
		{"empty", "", ErrInvalidLogicalID},
		{"dash", "my-cluster", ErrInvalidLogicalID},
		{"too long", strings.Repeat("a", 256), ErrInvalidLogicalID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.id, &eks.Cluster{})
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestStack_Region(t *testing.T) {
	s := New("demo", Props{Region: "eu-west-1"})
	assert.Equal(t, "eu-west-1", s.Region())
	region, ok := s.ConcreteRegion()
	assert.True(t, ok)
	assert.Equal(t, "eu-west-1", region)

	s = New("demo", Props{})
	assert.Equal(t, intrinsics.AWS_REGION, s.Region())
	_, ok = s.ConcreteRegion()
	assert.False(t, ok)
}

func TestStack_Outputs(t *testing.T) {
	s := New("demo", Props{})
	require.NoError(t, s.Add("Cluster", &eks.Cluster{}))

	require.NoError(t, s.AddOutput("ClusterName", wetwire.Output{Value: intrinsics.Ref{LogicalName: "Cluster"}}))
	require.NoError(t, s.AddOutput("ConfigCommand", wetwire.Output{Value: "aws eks update-kubeconfig"}))

	err := s.AddOutput("ClusterName", wetwire.Output{Value: "x"})
	assert.True(t, errors.Is(err, ErrDuplicateLogicalID))

	assert.Equal(t, []string{"ClusterName", "ConfigCommand"}, s.Outputs())

	out, ok := s.Output("ConfigCommand")
	require.True(t, ok)
	assert.Equal(t, "aws eks update-kubeconfig", out.Value)
}

func TestStack_Warn(t *testing.T) {
	var logged []string
	logger := funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{})

	s := New("demo", Props{Logger: logger})
	s.Warn("Cluster", "could not tag subnet %s with %s", "subnet-123", "kubernetes.io/role/elb")

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Cluster", warnings[0].Scope)
	assert.Equal(t, "Cluster: could not tag subnet subnet-123 with kubernetes.io/role/elb", warnings[0].String())

	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], `"scope"="Cluster"`)
	assert.Contains(t, logged[0], "subnet-123")
}

func TestStack_Synth(t *testing.T) {
	s := New("demo", Props{Description: "EKS demo"})
	require.NoError(t, s.Add("ClusterRole", &iam.Role{}))
	require.NoError(t, s.Add("Cluster", &eks.Cluster{
		Name:    "demo",
		RoleArn: wetwire.AttrRef{Resource: "ClusterRole", Attribute: "Arn"},
	}))
	require.NoError(t, s.Add("Addon", &eks.Addon{
		ClusterName: intrinsics.Ref{LogicalName: "Cluster"},
		AddonName:   "coredns",
	}, DependsOn("ClusterRole")))
	require.NoError(t, s.AddOutput("ClusterArn", wetwire.Output{
		Value: wetwire.AttrRef{Resource: "Cluster", Attribute: "Arn"},
	}))

	tmpl, err := s.Synth()
	require.NoError(t, err)
	assert.Equal(t, "EKS demo", tmpl.Description)
	assert.Len(t, tmpl.Resources, 3)
	assert.Equal(t, []string{"ClusterRole"}, tmpl.Resources["Addon"].DependsOn)
	assert.Contains(t, tmpl.Outputs, "ClusterArn")
}

func TestStack_Synth_UnresolvedReference(t *testing.T) {
	s := New("demo", Props{})
	require.NoError(t, s.Add("Cluster", &eks.Cluster{
		RoleArn: wetwire.AttrRef{Resource: "Nope", Attribute: "Arn"},
	}))

	_, err := s.Synth()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo")
}

func TestStack_List(t *testing.T) {
	s := New("demo", Props{})
	require.NoError(t, s.Add("Cluster", &eks.Cluster{
		RoleArn: wetwire.AttrRef{Resource: "ClusterRole", Attribute: "Arn"},
	}))
	require.NoError(t, s.Add("ClusterRole", &iam.Role{}))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, wetwire.ListResource{Name: "ClusterRole", Type: "AWS::IAM::Role"}, list[0])
	assert.Equal(t, "Cluster", list[1].Name)
	assert.Equal(t, []string{"ClusterRole"}, list[1].DependsOn)
}
