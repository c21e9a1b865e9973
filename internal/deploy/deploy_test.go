package deploy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloudFormation replays a sequence of stack states. A nil entry means
// the stack does not exist.
type fakeCloudFormation struct {
	states    []*types.Stack
	describes int

	createErr error
	updateErr error

	created *cloudformation.CreateStackInput
	updated *cloudformation.UpdateStackInput
}

func (f *fakeCloudFormation) DescribeStacks(_ context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	i := f.describes
	if i >= len(f.states) {
		i = len(f.states) - 1
	}
	f.describes++
	stack := f.states[i]
	if stack == nil {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: "Stack with id " + aws.ToString(in.StackName) + " does not exist",
		}
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{*stack}}, nil
}

func (f *fakeCloudFormation) CreateStack(_ context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &cloudformation.CreateStackOutput{StackId: aws.String("arn:stack/demo")}, nil
}

func (f *fakeCloudFormation) UpdateStack(_ context.Context, in *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.updated = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &cloudformation.UpdateStackOutput{StackId: aws.String("arn:stack/demo")}, nil
}

func stackIn(status types.StackStatus, outputs ...string) *types.Stack {
	s := &types.Stack{
		StackName:   aws.String("demo"),
		StackId:     aws.String("arn:stack/demo"),
		StackStatus: status,
	}
	for i := 0; i+1 < len(outputs); i += 2 {
		s.Outputs = append(s.Outputs, types.Output{
			OutputKey:   aws.String(outputs[i]),
			OutputValue: aws.String(outputs[i+1]),
		})
	}
	return s
}

func newTestDeployer(client API) *Deployer {
	return New(client, Options{PollInterval: time.Millisecond})
}

func TestDeploy_Create(t *testing.T) {
	fake := &fakeCloudFormation{states: []*types.Stack{
		nil,
		stackIn(types.StackStatusCreateInProgress),
		stackIn(types.StackStatusCreateComplete, "ClusterName", "demo", "ClusterEndpoint", "https://x.eks"),
	}}

	result, err := newTestDeployer(fake).Deploy(context.Background(), Request{
		StackName: "demo",
		Template:  []byte(`{"Resources":{}}`),
		Tags:      map[string]string{"team": "platform", "env": "dev"},
	})
	require.NoError(t, err)

	require.NotNil(t, fake.created)
	assert.Nil(t, fake.updated)
	assert.Equal(t, `{"Resources":{}}`, aws.ToString(fake.created.TemplateBody))
	assert.Contains(t, fake.created.Capabilities, types.CapabilityCapabilityNamedIam)
	require.Len(t, fake.created.Tags, 2)
	assert.Equal(t, "env", aws.ToString(fake.created.Tags[0].Key))

	assert.Equal(t, "CREATE_COMPLETE", result.Status)
	assert.False(t, result.NoChanges)
	assert.Equal(t, "https://x.eks", result.Outputs["ClusterEndpoint"])
	assert.Equal(t, 3, fake.describes)
}

func TestDeploy_Update(t *testing.T) {
	fake := &fakeCloudFormation{states: []*types.Stack{
		stackIn(types.StackStatusCreateComplete),
		stackIn(types.StackStatusUpdateInProgress),
		stackIn(types.StackStatusUpdateCompleteCleanupInProgress),
		stackIn(types.StackStatusUpdateComplete, "ClusterName", "demo"),
	}}

	result, err := newTestDeployer(fake).Deploy(context.Background(), Request{StackName: "demo", Template: []byte("{}")})
	require.NoError(t, err)
	assert.Nil(t, fake.created)
	require.NotNil(t, fake.updated)
	assert.Equal(t, "UPDATE_COMPLETE", result.Status)
	assert.Equal(t, "demo", result.Outputs["ClusterName"])
}

func TestDeploy_NoChanges(t *testing.T) {
	fake := &fakeCloudFormation{
		states: []*types.Stack{stackIn(types.StackStatusUpdateComplete, "ClusterName", "demo")},
		updateErr: &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: "No updates are to be performed.",
		},
	}

	result, err := newTestDeployer(fake).Deploy(context.Background(), Request{StackName: "demo", Template: []byte("{}")})
	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.Equal(t, "demo", result.Outputs["ClusterName"])
	assert.Equal(t, 1, fake.describes)
}

func TestDeploy_Failed(t *testing.T) {
	failed := stackIn(types.StackStatusRollbackComplete)
	failed.StackStatusReason = aws.String("Resource creation cancelled")
	fake := &fakeCloudFormation{states: []*types.Stack{
		nil,
		stackIn(types.StackStatusRollbackInProgress),
		failed,
	}}

	result, err := newTestDeployer(fake).Deploy(context.Background(), Request{StackName: "demo", Template: []byte("{}")})
	require.ErrorIs(t, err, ErrStackFailed)
	assert.Contains(t, err.Error(), "Resource creation cancelled")
	require.NotNil(t, result)
	assert.Equal(t, "ROLLBACK_COMPLETE", result.Status)
}

func TestDeploy_NotUpdatable(t *testing.T) {
	tests := []struct {
		name   string
		status types.StackStatus
	}{
		{"rolled back", types.StackStatusRollbackComplete},
		{"busy", types.StackStatusUpdateInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCloudFormation{states: []*types.Stack{stackIn(tt.status)}}
			_, err := newTestDeployer(fake).Deploy(context.Background(), Request{StackName: "demo", Template: []byte("{}")})
			require.ErrorIs(t, err, ErrStackNotUpdatable)
			assert.Nil(t, fake.updated)
		})
	}
}

func TestDeploy_Preconditions(t *testing.T) {
	d := newTestDeployer(&fakeCloudFormation{states: []*types.Stack{nil}})

	_, err := d.Deploy(context.Background(), Request{Template: []byte("{}")})
	assert.Error(t, err)

	big := []byte(strings.Repeat(" ", MaxTemplateBody+1))
	_, err = d.Deploy(context.Background(), Request{StackName: "demo", Template: big})
	assert.ErrorIs(t, err, ErrTemplateTooLarge)
}

func TestDeploy_CreateError(t *testing.T) {
	denied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "not allowed"}
	fake := &fakeCloudFormation{states: []*types.Stack{nil}, createErr: denied}

	_, err := newTestDeployer(fake).Deploy(context.Background(), Request{StackName: "demo", Template: []byte("{}")})
	require.Error(t, err)

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "AccessDenied", apiErr.ErrorCode())
}

func TestDeploy_ContextCancelled(t *testing.T) {
	fake := &fakeCloudFormation{states: []*types.Stack{nil, stackIn(types.StackStatusCreateInProgress)}}
	d := New(fake, Options{PollInterval: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Deploy(ctx, Request{StackName: "demo", Template: []byte("{}")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOutputs(t *testing.T) {
	fake := &fakeCloudFormation{states: []*types.Stack{stackIn(types.StackStatusCreateComplete, "ClusterArn", "arn:eks")}}
	outputs, err := newTestDeployer(fake).Outputs(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ClusterArn": "arn:eks"}, outputs)

	missing := &fakeCloudFormation{states: []*types.Stack{nil}}
	_, err = newTestDeployer(missing).Outputs(context.Background(), "demo")
	assert.Error(t, err)
}
