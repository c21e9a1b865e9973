// Package iam contains CloudFormation resource types for AWS IAM.
package iam

import (
	wetwire "github.com/lex00/wetwire-eks-go"
)

// Role is AWS::IAM::Role.
type Role struct {
	RoleName                 any           `json:"RoleName,omitempty"`
	Description              string        `json:"Description,omitempty"`
	Path                     string        `json:"Path,omitempty"`
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument,omitempty"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	MaxSessionDuration       int           `json:"MaxSessionDuration,omitempty"`
	Tags                     []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::IAM::Role".
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// Attributes lists the GetAtt attributes of a role.
func (Role) Attributes() []string { return []string{"Arn", "RoleId"} }

// OIDCProvider is AWS::IAM::OIDCProvider.
// Ref on an OIDC provider returns its ARN.
type OIDCProvider struct {
	Url            any           `json:"Url,omitempty"`
	ClientIdList   []string      `json:"ClientIdList,omitempty"`
	ThumbprintList []string      `json:"ThumbprintList,omitempty"`
	Tags           []wetwire.Tag `json:"Tags,omitempty"`
}

// ResourceType returns "AWS::IAM::OIDCProvider".
func (OIDCProvider) ResourceType() string { return "AWS::IAM::OIDCProvider" }

// Attributes lists the GetAtt attributes of an OIDC provider.
func (OIDCProvider) Attributes() []string { return []string{"Arn"} }
