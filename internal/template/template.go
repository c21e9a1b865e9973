// Package template builds CloudFormation templates from the resources
// registered on a stack.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/serialize"
)

// FormatVersion is the only template format version CloudFormation accepts.
const FormatVersion = "2010-09-09"

var (
	// ErrDuplicateResource is returned when a logical ID is added twice.
	ErrDuplicateResource = errors.New("duplicate logical ID")
	// ErrUnresolvedReference is returned when a Ref, GetAtt, Sub or DependsOn
	// names a resource that is not part of the template.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrCircularDependency is returned when resources depend on each other.
	ErrCircularDependency = errors.New("circular dependency detected")
)

// Entry is a resource registered for synthesis.
type Entry struct {
	LogicalID string
	Resource  wetwire.Resource
	// DependsOn lists explicit dependencies written to the template.
	DependsOn []string
}

// Builder constructs CloudFormation templates from registered entries.
type Builder struct {
	description string
	entries     map[string]Entry
	outputs     map[string]wetwire.Output

	props map[string]map[string]any
	deps  map[string][]string
}

// NewBuilder creates an empty template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		entries:     make(map[string]Entry),
		outputs:     make(map[string]wetwire.Output),
	}
}

// Add registers a resource entry.
func (b *Builder) Add(e Entry) error {
	if _, exists := b.entries[e.LogicalID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, e.LogicalID)
	}
	b.entries[e.LogicalID] = e
	b.props = nil
	return nil
}

// AddOutput registers a template output. A later output with the same name
// replaces the earlier one.
func (b *Builder) AddOutput(name string, out wetwire.Output) {
	b.outputs[name] = out
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*wetwire.Template, error) {
	if err := b.resolve(); err != nil {
		return nil, err
	}

	// Get resources in dependency order
	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	template := &wetwire.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]wetwire.ResourceDef, len(order)),
	}

	for _, name := range order {
		entry := b.entries[name]
		var dependsOn []string
		if len(entry.DependsOn) > 0 {
			dependsOn = append([]string(nil), entry.DependsOn...)
			sort.Strings(dependsOn)
		}
		template.Resources[name] = wetwire.ResourceDef{
			Type:       entry.Resource.ResourceType(),
			Properties: b.props[name],
			DependsOn:  dependsOn,
		}
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]wetwire.Output, len(b.outputs))
		for name, out := range b.outputs {
			serialized, err := b.serializeOutput(name, out)
			if err != nil {
				return nil, err
			}
			template.Outputs[name] = serialized
		}
	}

	return template, nil
}

// Order returns the logical IDs in dependency order.
func (b *Builder) Order() ([]string, error) {
	if err := b.resolve(); err != nil {
		return nil, err
	}
	return b.topologicalSort()
}

// Dependencies returns the resolved dependencies of a resource, both
// implicit (Ref, GetAtt, Sub) and explicit (DependsOn).
func (b *Builder) Dependencies(name string) ([]string, error) {
	if err := b.resolve(); err != nil {
		return nil, err
	}
	return b.deps[name], nil
}

// resolve serializes every entry and computes its dependency set.
func (b *Builder) resolve() error {
	if b.props != nil {
		return nil
	}

	props := make(map[string]map[string]any, len(b.entries))
	deps := make(map[string][]string, len(b.entries))

	for _, name := range b.names() {
		entry := b.entries[name]
		p, err := serialize.Properties(entry.Resource)
		if err != nil {
			return fmt.Errorf("serializing %s: %w", name, err)
		}
		props[name] = p

		seen := make(map[string]bool)
		var list []string
		add := func(dep string) error {
			if _, ok := b.entries[dep]; !ok {
				return fmt.Errorf("%w: %s references %s", ErrUnresolvedReference, name, dep)
			}
			if dep == name || seen[dep] {
				return nil
			}
			seen[dep] = true
			list = append(list, dep)
			return nil
		}

		for _, dep := range CollectRefs(p) {
			if err := add(dep); err != nil {
				return err
			}
		}
		for _, dep := range entry.DependsOn {
			if err := add(dep); err != nil {
				return err
			}
		}
		sort.Strings(list)
		deps[name] = list
	}

	b.props = props
	b.deps = deps
	return nil
}

func (b *Builder) serializeOutput(name string, out wetwire.Output) (wetwire.Output, error) {
	value, err := serialize.Normalize(out.Value)
	if err != nil {
		return wetwire.Output{}, fmt.Errorf("serializing output %s: %w", name, err)
	}
	for _, dep := range CollectRefs(value) {
		if _, ok := b.entries[dep]; !ok {
			return wetwire.Output{}, fmt.Errorf("%w: output %s references %s", ErrUnresolvedReference, name, dep)
		}
	}

	result := wetwire.Output{Description: out.Description, Value: value}
	if out.Export != nil {
		exportName, err := serialize.Normalize(out.Export.Name)
		if err != nil {
			return wetwire.Output{}, fmt.Errorf("serializing output %s export: %w", name, err)
		}
		result.Export = &wetwire.Export{Name: exportName}
	}
	return result, nil
}

func (b *Builder) names() []string {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	// Build adjacency list
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.entries {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, deps := range b.deps {
		for _, dep := range deps {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // Deterministic order

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.entries) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.deps[node] {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, name := range b.names() {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(cycle, " -> "))
	}
	return ErrCircularDependency
}

var subVariable = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

// CollectRefs walks a serialized value and returns the logical IDs named by
// Ref, Fn::GetAtt and Fn::Sub. Pseudo parameters are skipped.
func CollectRefs(v any) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(name string) {
		if name == "" || strings.HasPrefix(name, "AWS::") || seen[name] {
			return
		}
		seen[name] = true
		refs = append(refs, name)
	}

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if len(val) == 1 {
				if ref, ok := val["Ref"].(string); ok {
					add(ref)
					return
				}
				if getAtt, ok := val["Fn::GetAtt"]; ok {
					add(getAttTarget(getAtt))
					return
				}
				if sub, ok := val["Fn::Sub"]; ok {
					walkSub(sub, add, walk)
					return
				}
			}
			for _, key := range sortedKeys(val) {
				walk(val[key])
			}
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		}
	}
	walk(v)
	return refs
}

// CollectGetAtts returns the logical IDs referenced through Fn::GetAtt.
func CollectGetAtts(v any) []string {
	seen := make(map[string]bool)
	var targets []string

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if getAtt, ok := val["Fn::GetAtt"]; ok && len(val) == 1 {
				if name := getAttTarget(getAtt); name != "" && !seen[name] {
					seen[name] = true
					targets = append(targets, name)
				}
				return
			}
			for _, key := range sortedKeys(val) {
				walk(val[key])
			}
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		}
	}
	walk(v)
	return targets
}

func getAttTarget(v any) string {
	switch val := v.(type) {
	case []any:
		if len(val) > 0 {
			s, _ := val[0].(string)
			return s
		}
	case string:
		name, _, _ := strings.Cut(val, ".")
		return name
	}
	return ""
}

// walkSub handles both the string and [string, variables] forms of Fn::Sub.
// Variables declared in the map shadow resource names.
func walkSub(sub any, add func(string), walk func(any)) {
	var format string
	local := make(map[string]bool)

	switch val := sub.(type) {
	case string:
		format = val
	case []any:
		if len(val) > 0 {
			format, _ = val[0].(string)
		}
		if len(val) > 1 {
			if vars, ok := val[1].(map[string]any); ok {
				for _, key := range sortedKeys(vars) {
					local[key] = true
					walk(vars[key])
				}
			}
		}
	}

	for _, m := range subVariable.FindAllStringSubmatch(format, -1) {
		name, _, _ := strings.Cut(m[1], ".")
		if !local[name] {
			add(name)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToJSON serializes the template to JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
