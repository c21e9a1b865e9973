// Package deploy creates or updates the CloudFormation stack for a
// synthesized template and waits for it to settle.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

// MaxTemplateBody is the largest template CloudFormation accepts inline.
const MaxTemplateBody = 51200

// DefaultPollInterval is the delay between DescribeStacks calls.
const DefaultPollInterval = 10 * time.Second

var (
	// ErrTemplateTooLarge is returned for templates above MaxTemplateBody.
	ErrTemplateTooLarge = errors.New("template exceeds the inline size limit")
	// ErrStackFailed is returned when the stack settles in a failed state.
	ErrStackFailed = errors.New("stack operation failed")
	// ErrStackNotUpdatable is returned for stacks that must be deleted first.
	ErrStackNotUpdatable = errors.New("stack cannot be updated")
)

// API is the subset of the CloudFormation client the deployer uses.
type API interface {
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
}

// Options configures a Deployer.
type Options struct {
	Logger       logr.Logger
	PollInterval time.Duration
}

// Deployer applies templates to CloudFormation.
type Deployer struct {
	client       API
	log          logr.Logger
	pollInterval time.Duration
}

// New returns a deployer using client.
func New(client API, opts Options) *Deployer {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Deployer{client: client, log: log.WithName("deploy"), pollInterval: interval}
}

// NewFromConfig loads the default AWS configuration (environment, shared
// config, instance role) and returns a deployer for region. An empty region
// uses the configured default.
func NewFromConfig(ctx context.Context, region string, opts Options) (*Deployer, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(cloudformation.NewFromConfig(cfg), opts), nil
}

// Request describes one deployment.
type Request struct {
	StackName string
	// Template is the template body, JSON or YAML.
	Template []byte
	Tags     map[string]string
}

// Result is the settled state of the stack.
type Result struct {
	StackName string
	StackID   string
	Status    string
	// NoChanges is set when the template matched the deployed stack.
	NoChanges bool
	Outputs   map[string]string
}

// Deploy creates the stack when it does not exist and updates it otherwise,
// then waits until the operation completes.
func (d *Deployer) Deploy(ctx context.Context, req Request) (*Result, error) {
	if req.StackName == "" {
		return nil, errors.New("stack name is required")
	}
	if len(req.Template) > MaxTemplateBody {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTemplateTooLarge, len(req.Template), MaxTemplateBody)
	}
	log := d.log.WithValues("stack", req.StackName)

	existing, err := d.describe(ctx, req.StackName)
	if err != nil {
		return nil, err
	}

	body := aws.String(string(req.Template))
	capabilities := []types.Capability{types.CapabilityCapabilityIam, types.CapabilityCapabilityNamedIam}
	tags := stackTags(req.Tags)

	if existing == nil {
		log.Info("creating stack")
		if _, err := d.client.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(req.StackName),
			TemplateBody: body,
			Capabilities: capabilities,
			Tags:         tags,
		}); err != nil {
			return nil, fmt.Errorf("failed to create stack %s: %w", req.StackName, err)
		}
		return d.wait(ctx, req.StackName)
	}

	if existing.StackStatus == types.StackStatusRollbackComplete {
		return nil, fmt.Errorf("%w: %s is in %s and must be deleted", ErrStackNotUpdatable, req.StackName, existing.StackStatus)
	}
	if inProgress(existing.StackStatus) {
		return nil, fmt.Errorf("%w: %s is in %s", ErrStackNotUpdatable, req.StackName, existing.StackStatus)
	}

	log.Info("updating stack", "status", string(existing.StackStatus))
	if _, err := d.client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(req.StackName),
		TemplateBody: body,
		Capabilities: capabilities,
		Tags:         tags,
	}); err != nil {
		if isNoUpdates(err) {
			log.Info("stack is up to date")
			result := resultFromStack(existing)
			result.NoChanges = true
			return result, nil
		}
		return nil, fmt.Errorf("failed to update stack %s: %w", req.StackName, err)
	}
	return d.wait(ctx, req.StackName)
}

// Outputs returns the outputs of a deployed stack.
func (d *Deployer) Outputs(ctx context.Context, stackName string) (map[string]string, error) {
	stack, err := d.describe(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if stack == nil {
		return nil, fmt.Errorf("stack %s does not exist", stackName)
	}
	return resultFromStack(stack).Outputs, nil
}

// describe returns nil when the stack does not exist.
func (d *Deployer) describe(ctx context.Context, stackName string) (*types.Stack, error) {
	out, err := d.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, nil
	}
	return &out.Stacks[0], nil
}

func (d *Deployer) wait(ctx context.Context, stackName string) (*Result, error) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		stack, err := d.describe(ctx, stackName)
		if err != nil {
			return nil, err
		}
		if stack == nil {
			return nil, fmt.Errorf("%w: %s disappeared", ErrStackFailed, stackName)
		}

		status := stack.StackStatus
		if !inProgress(status) {
			result := resultFromStack(stack)
			if status != types.StackStatusCreateComplete && status != types.StackStatusUpdateComplete {
				return result, fmt.Errorf("%w: %s is %s: %s", ErrStackFailed, stackName, status, aws.ToString(stack.StackStatusReason))
			}
			d.log.Info("stack settled", "stack", stackName, "status", string(status))
			return result, nil
		}
		d.log.V(1).Info("waiting for stack", "stack", stackName, "status", string(status))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func inProgress(status types.StackStatus) bool {
	return strings.HasSuffix(string(status), "_IN_PROGRESS")
}

func resultFromStack(stack *types.Stack) *Result {
	result := &Result{
		StackName: aws.ToString(stack.StackName),
		StackID:   aws.ToString(stack.StackId),
		Status:    string(stack.StackStatus),
		Outputs:   make(map[string]string, len(stack.Outputs)),
	}
	for _, o := range stack.Outputs {
		result.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return result
}

func stackTags(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

// isNotFound reports the ValidationError CloudFormation returns for a
// missing stack.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return false
}

// isNoUpdates reports the ValidationError returned when the template and
// parameters match the deployed stack.
func isNoUpdates(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
	}
	return false
}
