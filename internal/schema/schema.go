// Package schema provides offline CloudFormation schema validation.
// It validates the EKS, IAM and EC2 resources this module emits against
// the subset of the CloudFormation registry schemas they use.
package schema

import (
	"fmt"
	"sort"
	"strings"

	wetwire "github.com/lex00/wetwire-eks-go"
)

// Options configures schema validation.
type Options struct {
	// Strict reports unknown properties as warnings.
	Strict bool
}

// Result contains schema validation results.
type Result struct {
	Valid    bool
	Errors   []wetwire.SchemaError
	Warnings []wetwire.SchemaError
}

// ValidateTemplate validates a CloudFormation template against known schemas.
func ValidateTemplate(template *wetwire.Template, opts Options) (*Result, error) {
	if template == nil {
		return nil, fmt.Errorf("template is nil")
	}
	result := &Result{Valid: true}

	names := make([]string, 0, len(template.Resources))
	for name := range template.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		errs, warnings := validateResource(name, template.Resources[name], opts)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
		result.Errors = append(result.Errors, validateGetAtts(name, template.Resources[name].Properties, template)...)
	}

	outputNames := make([]string, 0, len(template.Outputs))
	for name := range template.Outputs {
		outputNames = append(outputNames, name)
	}
	sort.Strings(outputNames)
	for _, name := range outputNames {
		result.Errors = append(result.Errors, validateGetAtts("Outputs."+name, template.Outputs[name].Value, template)...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result, nil
}

// Lookup returns the schema for a resource type.
func Lookup(resourceType string) (ResourceSchema, bool) {
	s, ok := resourceSchemas[resourceType]
	return s, ok
}

// validateResource validates a single resource.
func validateResource(name string, resource wetwire.ResourceDef, opts Options) ([]wetwire.SchemaError, []wetwire.SchemaError) {
	var errs, warnings []wetwire.SchemaError

	if !isValidResourceType(resource.Type) {
		errs = append(errs, wetwire.SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("invalid resource type format: %s", resource.Type),
		})
	}

	schema, ok := resourceSchemas[resource.Type]
	if !ok {
		// Unknown resource type - this is a warning, not an error
		warnings = append(warnings, wetwire.SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("unknown resource type: %s (schema not available for validation)", resource.Type),
		})
		return errs, warnings
	}

	e, w := validateObject(name, "", resource.Properties, schema.Properties, opts)
	return append(errs, e...), append(warnings, w...)
}

// validateObject checks required and known properties of an object value.
func validateObject(resource, prefix string, value map[string]any, props map[string]PropertySchema, opts Options) ([]wetwire.SchemaError, []wetwire.SchemaError) {
	var errs, warnings []wetwire.SchemaError

	for _, propName := range sortedPropertyNames(props) {
		if !props[propName].Required {
			continue
		}
		if _, exists := value[propName]; !exists {
			errs = append(errs, wetwire.SchemaError{
				Resource: resource,
				Property: prefix + propName,
				Message:  fmt.Sprintf("missing required property: %s", prefix+propName),
			})
		}
	}

	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, propName := range keys {
		propSchema, ok := props[propName]
		if !ok {
			if opts.Strict {
				warnings = append(warnings, wetwire.SchemaError{
					Resource: resource,
					Property: prefix + propName,
					Message:  fmt.Sprintf("unknown property: %s", prefix+propName),
				})
			}
			continue
		}
		e, w := validateProperty(resource, prefix+propName, value[propName], propSchema, opts)
		errs = append(errs, e...)
		warnings = append(warnings, w...)
	}

	return errs, warnings
}

// isValidResourceType checks if a resource type has valid format.
func isValidResourceType(resourceType string) bool {
	// CloudFormation resource types follow pattern: AWS::Service::Resource or Custom::*
	if strings.HasPrefix(resourceType, "Custom::") {
		return true
	}
	parts := strings.Split(resourceType, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == "AWS"
}

// validateProperty validates a property value against its schema.
func validateProperty(resource, property string, value any, schema PropertySchema, opts Options) ([]wetwire.SchemaError, []wetwire.SchemaError) {
	if isIntrinsic(value) {
		return nil, nil
	}

	if !isValidType(value, schema.Type) {
		return []wetwire.SchemaError{{
			Resource: resource,
			Property: property,
			Message:  fmt.Sprintf("expected type %s", schema.Type),
		}}, nil
	}

	var errs, warnings []wetwire.SchemaError

	if len(schema.AllowedValues) > 0 {
		if strVal, ok := value.(string); ok && !contains(schema.AllowedValues, strVal) {
			errs = append(errs, wetwire.SchemaError{
				Resource: resource,
				Property: property,
				Message:  fmt.Sprintf("value %q not in allowed values: %v", strVal, schema.AllowedValues),
			})
		}
	}

	switch v := value.(type) {
	case map[string]any:
		if schema.Type == "Object" && len(schema.Properties) > 0 {
			e, w := validateObject(resource, property+".", v, schema.Properties, opts)
			errs = append(errs, e...)
			warnings = append(warnings, w...)
		}
	case []any:
		if schema.MaxItems > 0 && len(v) > schema.MaxItems {
			errs = append(errs, wetwire.SchemaError{
				Resource: resource,
				Property: property,
				Message:  fmt.Sprintf("at most %d items allowed, got %d", schema.MaxItems, len(v)),
			})
		}
		if schema.Items != nil {
			for i, item := range v {
				e, w := validateProperty(resource, fmt.Sprintf("%s[%d]", property, i), item, *schema.Items, opts)
				errs = append(errs, e...)
				warnings = append(warnings, w...)
			}
		}
	}

	return errs, warnings
}

// validateGetAtts checks that every Fn::GetAtt names an attribute the
// target resource type exposes.
func validateGetAtts(scope string, value any, template *wetwire.Template) []wetwire.SchemaError {
	var errs []wetwire.SchemaError

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if getAtt, ok := val["Fn::GetAtt"].([]any); ok && len(val) == 1 && len(getAtt) == 2 {
				target, _ := getAtt[0].(string)
				attr, _ := getAtt[1].(string)
				res, exists := template.Resources[target]
				if !exists {
					return
				}
				if schema, known := resourceSchemas[res.Type]; known && !contains(schema.Attributes, attr) {
					errs = append(errs, wetwire.SchemaError{
						Resource: scope,
						Property: "Fn::GetAtt",
						Message:  fmt.Sprintf("%s (%s) has no attribute %s", target, res.Type, attr),
					})
				}
				return
			}
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		case []any:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(value)

	return errs
}

// isIntrinsic reports whether a value is a CloudFormation intrinsic function.
func isIntrinsic(value any) bool {
	m, ok := value.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	for key := range m {
		if strings.HasPrefix(key, "Fn::") || key == "Ref" {
			return true
		}
	}
	return false
}

// isValidType checks if a value matches the expected type.
func isValidType(value any, expectedType string) bool {
	switch expectedType {
	case "String":
		_, ok := value.(string)
		return ok
	case "Integer":
		switch value.(type) {
		case int, int32, int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "List":
		_, ok := value.([]any)
		return ok
	case "Map", "Object":
		_, ok := value.(map[string]any)
		return ok
	case "Json":
		return true // Accept any value as JSON
	default:
		return true // Unknown type - accept
	}
}

func contains(values []string, v string) bool {
	for _, allowed := range values {
		if v == allowed {
			return true
		}
	}
	return false
}

func sortedPropertyNames(props map[string]PropertySchema) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResourceSchema defines the schema for a resource type.
type ResourceSchema struct {
	Type       string
	Properties map[string]PropertySchema
	// Attributes lists the names accepted by Fn::GetAtt.
	Attributes []string
}

// PropertySchema defines the schema for a property.
type PropertySchema struct {
	Type          string
	Required      bool
	AllowedValues []string
	// Properties describes the fields of an Object property.
	Properties map[string]PropertySchema
	// Items describes the elements of a List property.
	Items    *PropertySchema
	MaxItems int
}
