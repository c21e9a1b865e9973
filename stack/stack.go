// Package stack is the construct scope that resources are registered on
// before synthesis into a CloudFormation template.
package stack

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-logr/logr"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/template"
	"github.com/lex00/wetwire-eks-go/intrinsics"
)

var (
	// ErrDuplicateLogicalID is returned when a logical ID is registered twice.
	ErrDuplicateLogicalID = errors.New("duplicate logical ID")
	// ErrInvalidLogicalID is returned for logical IDs that are empty, not
	// alphanumeric, or longer than 255 characters.
	ErrInvalidLogicalID = errors.New("invalid logical ID")
)

var logicalIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,255}$`)

// Props configures a stack.
type Props struct {
	// Description is written to the template.
	Description string
	// Region pins the deployment region. When empty, region-dependent
	// values resolve through the AWS::Region pseudo parameter.
	Region string
	// Logger receives construction diagnostics. Defaults to logr.Discard().
	Logger logr.Logger
}

// Warning is an annotation recorded while constructing resources.
type Warning struct {
	Scope   string
	Message string
}

func (w Warning) String() string {
	return w.Scope + ": " + w.Message
}

type entry struct {
	id        string
	resource  wetwire.Resource
	dependsOn []string
}

// Stack collects resources, outputs and warnings for one template.
type Stack struct {
	name  string
	props Props
	log   logr.Logger

	entries     []entry
	index       map[string]int
	outputs     map[string]wetwire.Output
	outputOrder []string
	warnings    []Warning
}

// Option customizes a resource registration.
type Option func(*entry)

// DependsOn adds explicit dependencies on other logical IDs.
func DependsOn(ids ...string) Option {
	return func(e *entry) {
		e.dependsOn = append(e.dependsOn, ids...)
	}
}

// New creates an empty stack.
func New(name string, props Props) *Stack {
	log := props.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Stack{
		name:    name,
		props:   props,
		log:     log.WithValues("stack", name),
		index:   make(map[string]int),
		outputs: make(map[string]wetwire.Output),
	}
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Logger returns the stack logger.
func (s *Stack) Logger() logr.Logger { return s.log }

// Region returns the concrete region when one was configured, otherwise a
// Ref to AWS::Region.
func (s *Stack) Region() any {
	if s.props.Region != "" {
		return s.props.Region
	}
	return intrinsics.AWS_REGION
}

// ConcreteRegion returns the configured region and whether one was set.
func (s *Stack) ConcreteRegion() (string, bool) {
	return s.props.Region, s.props.Region != ""
}

// Add registers a resource under a logical ID.
func (s *Stack) Add(logicalID string, resource wetwire.Resource, opts ...Option) error {
	if !logicalIDPattern.MatchString(logicalID) {
		return fmt.Errorf("%w: %q", ErrInvalidLogicalID, logicalID)
	}
	if _, exists := s.index[logicalID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLogicalID, logicalID)
	}

	e := entry{id: logicalID, resource: resource}
	for _, opt := range opts {
		opt(&e)
	}

	s.index[logicalID] = len(s.entries)
	s.entries = append(s.entries, e)
	s.log.V(1).Info("resource added", "logicalID", logicalID, "type", resource.ResourceType())
	return nil
}

// Lookup returns the resource registered under a logical ID.
func (s *Stack) Lookup(logicalID string) (wetwire.Resource, bool) {
	i, ok := s.index[logicalID]
	if !ok {
		return nil, false
	}
	return s.entries[i].resource, true
}

// Resources returns the logical IDs in registration order.
func (s *Stack) Resources() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.id
	}
	return ids
}

// AddOutput registers a template output.
func (s *Stack) AddOutput(logicalID string, out wetwire.Output) error {
	if !logicalIDPattern.MatchString(logicalID) {
		return fmt.Errorf("%w: output %q", ErrInvalidLogicalID, logicalID)
	}
	if _, exists := s.outputs[logicalID]; exists {
		return fmt.Errorf("%w: output %s", ErrDuplicateLogicalID, logicalID)
	}
	s.outputs[logicalID] = out
	s.outputOrder = append(s.outputOrder, logicalID)
	return nil
}

// Outputs returns the output names in registration order.
func (s *Stack) Outputs() []string {
	return append([]string(nil), s.outputOrder...)
}

// Output returns a registered output.
func (s *Stack) Output(logicalID string) (wetwire.Output, bool) {
	out, ok := s.outputs[logicalID]
	return out, ok
}

// Warn records a warning against a construct scope and logs it.
func (s *Stack) Warn(scope, format string, args ...any) {
	w := Warning{Scope: scope, Message: fmt.Sprintf(format, args...)}
	s.warnings = append(s.warnings, w)
	s.log.Info("warning", "scope", w.Scope, "message", w.Message)
}

// Warnings returns the recorded warnings in order.
func (s *Stack) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

func (s *Stack) builder() (*template.Builder, error) {
	b := template.NewBuilder(s.props.Description)
	for _, e := range s.entries {
		if err := b.Add(template.Entry{LogicalID: e.id, Resource: e.resource, DependsOn: e.dependsOn}); err != nil {
			return nil, err
		}
	}
	for _, name := range s.outputOrder {
		b.AddOutput(name, s.outputs[name])
	}
	return b, nil
}

// Synth builds the CloudFormation template.
func (s *Stack) Synth() (*wetwire.Template, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	tmpl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("synthesizing stack %s: %w", s.name, err)
	}
	s.log.V(1).Info("synthesized", "resources", len(tmpl.Resources), "outputs", len(tmpl.Outputs))
	return tmpl, nil
}

// List returns the resources in dependency order with their dependencies.
func (s *Stack) List() ([]wetwire.ListResource, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	order, err := b.Order()
	if err != nil {
		return nil, fmt.Errorf("ordering stack %s: %w", s.name, err)
	}

	list := make([]wetwire.ListResource, 0, len(order))
	for _, id := range order {
		deps, err := b.Dependencies(id)
		if err != nil {
			return nil, err
		}
		res, _ := s.Lookup(id)
		list = append(list, wetwire.ListResource{
			Name:      id,
			Type:      res.ResourceType(),
			DependsOn: deps,
		})
	}
	return list, nil
}
