package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

// Pseudo parameters resolved by CloudFormation at deploy time. The cluster
// construct falls back to these when the stack has no concrete region.
var (
	// AWS_REGION resolves to the region the stack is deployed in. Used in the
	// kubeconfig and token command outputs.
	AWS_REGION = intrinsics.AWS_REGION

	// AWS_PARTITION resolves to aws, aws-cn or aws-us-gov.
	AWS_PARTITION = intrinsics.AWS_PARTITION

	AWS_URL_SUFFIX = intrinsics.AWS_URL_SUFFIX
	AWS_ACCOUNT_ID = intrinsics.AWS_ACCOUNT_ID
	AWS_STACK_NAME = intrinsics.AWS_STACK_NAME
	AWS_NO_VALUE   = intrinsics.AWS_NO_VALUE
)
