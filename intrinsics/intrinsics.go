// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the core intrinsic types from cloudformation-schema-go
// and adds the IAM and ARN helpers the EKS constructs need.
//
// Core intrinsic functions:
//
//	Ref{"Cluster"} → {"Ref": "Cluster"}
//	Sub{"${AWS::Region}-cluster"} → {"Fn::Sub": "${AWS::Region}-cluster"}
//	Join{"", []any{"a", "b"}} → {"Fn::Join": ["", ["a", "b"]]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_PARTITION, etc.
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// SubWithMap is Fn::Sub with a variable map.
	SubWithMap = intrinsics.SubWithMap

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// Split represents a CloudFormation Fn::Split intrinsic function.
	Split = intrinsics.Split

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Cidr represents a CloudFormation Fn::Cidr intrinsic function.
	Cidr = intrinsics.Cidr

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Base64 represents a CloudFormation Fn::Base64 intrinsic function.
	Base64 = intrinsics.Base64

	// If represents a CloudFormation Fn::If intrinsic function.
	If = intrinsics.If

	// Equals represents a CloudFormation Fn::Equals condition function.
	Equals = intrinsics.Equals
)

// ManagedPolicyArn returns the partition-aware ARN of an AWS managed policy.
//
//	ManagedPolicyArn("AmazonEKSClusterPolicy")
//	→ {"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"}
func ManagedPolicyArn(name string) Sub {
	return Sub{String: "arn:${AWS::Partition}:iam::aws:policy/" + name}
}

// EKSAccessPolicyArn returns the ARN of an EKS cluster access policy.
//
//	EKSAccessPolicyArn("AmazonEKSClusterAdminPolicy")
//	→ {"Fn::Sub": "arn:${AWS::Partition}:eks::aws:cluster-access-policy/AmazonEKSClusterAdminPolicy"}
func EKSAccessPolicyArn(name string) Sub {
	return Sub{String: "arn:${AWS::Partition}:eks::aws:cluster-access-policy/" + name}
}

// IsIntrinsic reports whether a serialized value is a CloudFormation intrinsic
// ({"Ref": ...} or a single "Fn::" key).
func IsIntrinsic(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	for key := range m {
		if key == "Ref" || len(key) > 4 && key[:4] == "Fn::" {
			return true
		}
	}
	return false
}
