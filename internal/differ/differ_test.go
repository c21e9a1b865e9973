package differ

import (
	"os"
	"path/filepath"
	"testing"

	wetwire "github.com/lex00/wetwire-eks-go"
)

func nodegroup(instanceType string, desired float64) wetwire.ResourceDef {
	return wetwire.ResourceDef{
		Type: "AWS::EKS::Nodegroup",
		Properties: map[string]any{
			"ClusterName":   map[string]any{"Ref": "Cluster"},
			"InstanceTypes": []any{instanceType},
			"ScalingConfig": map[string]any{"MinSize": 1.0, "DesiredSize": desired, "MaxSize": 4.0},
		},
	}
}

func TestCompare(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"ClusterGeneral": nodegroup("m5.large", 2),
			"ClusterBatch":   nodegroup("c5.large", 1),
		},
	}

	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"ClusterGeneral": nodegroup("m5.large", 3),
			"ClusterGpu":     nodegroup("g5.xlarge", 1),
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(result.Diff.Removed) != 1 {
		t.Errorf("Removed = %d, want 1", len(result.Diff.Removed))
	} else if result.Diff.Removed[0].Resource != "ClusterBatch" {
		t.Errorf("Removed[0].Resource = %s, want ClusterBatch", result.Diff.Removed[0].Resource)
	}

	if len(result.Diff.Added) != 1 {
		t.Errorf("Added = %d, want 1", len(result.Diff.Added))
	} else if result.Diff.Added[0].Type != "AWS::EKS::Nodegroup" {
		t.Errorf("Added[0].Type = %s, want AWS::EKS::Nodegroup", result.Diff.Added[0].Type)
	}

	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}
	changes := result.Diff.Modified[0].Changes
	if len(changes) != 1 || changes[0] != "ScalingConfig.DesiredSize modified" {
		t.Errorf("Changes = %v, want [ScalingConfig.DesiredSize modified]", changes)
	}

	if result.Summary.Total != 3 {
		t.Errorf("Summary.Total = %d, want 3", result.Summary.Total)
	}
}

func TestCompareIdentical(t *testing.T) {
	template := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"ClusterGeneral": nodegroup("m5.large", 2),
		},
	}

	result, err := Compare(template, template, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0 for identical templates", result.Summary.Total)
	}
}

func TestCompareNil(t *testing.T) {
	if _, err := Compare(nil, &wetwire.Template{}, Options{}); err == nil {
		t.Error("expected error for nil template")
	}
}

func TestCompareTypeChange(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Capacity": {Type: "AWS::EKS::Nodegroup"},
		},
	}
	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Capacity": {Type: "AWS::EKS::FargateProfile"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}
	want := "Type changed: AWS::EKS::Nodegroup → AWS::EKS::FargateProfile"
	if result.Diff.Modified[0].Changes[0] != want {
		t.Errorf("Changes[0] = %q, want %q", result.Diff.Modified[0].Changes[0], want)
	}
}

func TestCompareDependsOn(t *testing.T) {
	t1 := &wetwire.Template{Resources: map[string]wetwire.ResourceDef{
		"Route": {Type: "AWS::EC2::Route", DependsOn: []string{"A", "B"}},
	}}
	t2 := &wetwire.Template{Resources: map[string]wetwire.ResourceDef{
		"Route": {Type: "AWS::EC2::Route", DependsOn: []string{"B", "A"}},
	}}

	result, _ := Compare(t1, t2, Options{})
	if result.Summary.Total != 0 {
		t.Errorf("reordered DependsOn should not be a change, got %v", result.Diff.Modified)
	}

	t2.Resources["Route"] = wetwire.ResourceDef{Type: "AWS::EC2::Route", DependsOn: []string{"A"}}
	result, _ = Compare(t1, t2, Options{})
	if result.Summary.Modified != 1 {
		t.Errorf("Modified = %d, want 1", result.Summary.Modified)
	}
}

func TestCompareIgnoreOrder(t *testing.T) {
	t1 := &wetwire.Template{Resources: map[string]wetwire.ResourceDef{
		"Cluster": {Type: "AWS::EKS::Cluster", Properties: map[string]any{
			"ResourcesVpcConfig": map[string]any{"SubnetIds": []any{"subnet-a", "subnet-b"}},
		}},
	}}
	t2 := &wetwire.Template{Resources: map[string]wetwire.ResourceDef{
		"Cluster": {Type: "AWS::EKS::Cluster", Properties: map[string]any{
			"ResourcesVpcConfig": map[string]any{"SubnetIds": []any{"subnet-b", "subnet-a"}},
		}},
	}}

	strict, _ := Compare(t1, t2, Options{})
	if strict.Summary.Modified != 1 {
		t.Errorf("Modified = %d, want 1 without IgnoreOrder", strict.Summary.Modified)
	} else if got := strict.Diff.Modified[0].Changes[0]; got != "ResourcesVpcConfig.SubnetIds modified" {
		t.Errorf("change = %q", got)
	}

	relaxed, _ := Compare(t1, t2, Options{IgnoreOrder: true})
	if relaxed.Summary.Total != 0 {
		t.Errorf("Total = %d, want 0 with IgnoreOrder", relaxed.Summary.Total)
	}
}

func TestCompareOutputs(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{},
		Outputs: map[string]wetwire.Output{
			"ClusterConfigCommand": {Value: "aws eks update-kubeconfig --name a --region eu-west-1"},
			"ClusterArn":           {Value: wetwire.AttrRef{Resource: "Cluster", Attribute: "Arn"}},
			"Old":                  {Value: "x"},
		},
	}
	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{},
		Outputs: map[string]wetwire.Output{
			"ClusterConfigCommand": {Value: "aws eks update-kubeconfig --name b --region eu-west-1"},
			"ClusterArn":           {Value: map[string]any{"Fn::GetAtt": []any{"Cluster", "Arn"}}},
			"New":                  {Value: "y", Export: &wetwire.Export{Name: "y"}},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	// ClusterArn is equal once AttrRef is normalized.
	if len(result.Diff.Outputs) != 3 {
		t.Fatalf("Outputs = %v, want 3 entries", result.Diff.Outputs)
	}
	want := []string{"ClusterConfigCommand", "New", "Old"}
	for i, entry := range result.Diff.Outputs {
		if entry.Resource != want[i] {
			t.Errorf("Outputs[%d] = %s, want %s", i, entry.Resource, want[i])
		}
	}
	if result.Summary.Outputs != 3 || result.Summary.Total != 3 {
		t.Errorf("Summary = %+v", result.Summary)
	}
}

func TestCompareProperties(t *testing.T) {
	tests := []struct {
		name   string
		props1 map[string]any
		props2 map[string]any
		want   []string
	}{
		{
			name:   "identical",
			props1: map[string]any{"Version": "1.29"},
			props2: map[string]any{"Version": "1.29"},
		},
		{
			name:   "added property",
			props1: map[string]any{},
			props2: map[string]any{"Version": "1.29"},
			want:   []string{"Version added"},
		},
		{
			name:   "removed property",
			props1: map[string]any{"Version": "1.29"},
			props2: map[string]any{},
			want:   []string{"Version removed"},
		},
		{
			name:   "nested property",
			props1: map[string]any{"AccessConfig": map[string]any{"AuthenticationMode": "API"}},
			props2: map[string]any{"AccessConfig": map[string]any{"AuthenticationMode": "API_AND_CONFIG_MAP"}},
			want:   []string{"AccessConfig.AuthenticationMode modified"},
		},
		{
			name:   "intrinsic replaced",
			props1: map[string]any{"RoleArn": map[string]any{"Fn::GetAtt": []any{"ClusterRole", "Arn"}}},
			props2: map[string]any{"RoleArn": map[string]any{"Ref": "RoleParam"}},
			want:   []string{"RoleArn modified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := compareProperties("", tt.props1, tt.props2, Options{})
			if len(changes) != len(tt.want) {
				t.Fatalf("compareProperties() = %v, want %v", changes, tt.want)
			}
			for i := range changes {
				if changes[i] != tt.want[i] {
					t.Errorf("changes[%d] = %q, want %q", i, changes[i], tt.want[i])
				}
			}
		})
	}
}

func TestCompareFiles_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")

	jsonDoc := `{"AWSTemplateFormatVersion":"2010-09-09","Resources":{"Cluster":{"Type":"AWS::EKS::Nodegroup","Properties":{"DiskSize":20,"Subnets":[{"Ref":"Subnet1"}]}}}}`
	yamlDoc := `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Cluster:
    Type: AWS::EKS::Nodegroup
    Properties:
      DiskSize: 20
      Subnets:
        - Ref: Subnet1
`
	if err := os.WriteFile(jsonPath, []byte(jsonDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := CompareFiles(jsonPath, yamlPath, Options{})
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if result.Summary.Total != 0 {
		t.Errorf("JSON and YAML forms should be equal, got %+v", result.Diff)
	}

	if _, err := CompareFiles(filepath.Join(dir, "missing.json"), yamlPath, Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEqualStringSlices(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{nil, nil, true},
		{[]string{}, []string{}, true},
		{[]string{"a", "b"}, []string{"a", "b"}, true},
		{[]string{"a"}, []string{"b"}, false},
		{[]string{"a"}, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		got := equalStringSlices(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("equalStringSlices(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
