// Package registry holds the static catalog of callable operations. Each
// entry binds a unique name, a typed argument schema, and a handler. The
// catalog is built once at process start and is read-only afterwards, so
// dispatch needs no locking.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
)

// FieldType enumerates the argument types a descriptor can declare.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
)

// Field describes one argument in a descriptor's ordered schema.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string
	Enum        []string    // Allowed values for string fields, empty means unconstrained
	Default     interface{} // Applied when the argument is absent and not required
}

// Descriptor is the immutable catalog entry for one operation.
type Descriptor struct {
	Name        string
	Description string
	Args        []Field
	Path        string // Target path template, e.g. /projects/{project_id}/issues
	Method      string // GET, POST, PUT or DELETE
	Paginated   bool
}

// Handler executes one invocation with validated arguments and resolved
// credentials, returning either a success payload or a normalized error.
type Handler func(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error)

type entry struct {
	descriptor Descriptor
	handler    Handler
}

// Registry is the name-to-operation catalog.
type Registry struct {
	entries map[string]entry
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an operation to the catalog. Registration happens only at
// startup; a duplicate name is a fatal configuration error surfaced to the
// caller rather than silently overwritten.
func (r *Registry) Register(d Descriptor, h Handler) error {
	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("operation %q registered twice", d.Name)
	}
	if h == nil {
		return fmt.Errorf("operation %q has no handler", d.Name)
	}
	r.entries[d.Name] = entry{descriptor: d, handler: h}
	r.order = append(r.order, d.Name)
	return nil
}

// Descriptors returns the catalog entries in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].descriptor)
	}
	return out
}

// Dispatch validates the arguments against the named operation's schema and
// invokes its handler. Validation failures never reach the network.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, apperr.New(apperr.KindUnknownOperation, "unknown operation %q", name)
	}

	validated, err := validateArgs(e.descriptor, args)
	if err != nil {
		return nil, err
	}
	return e.handler(ctx, validated, creds)
}

// validateArgs checks args field-by-field against the schema and returns a
// copy with defaults applied. Unknown fields, missing required fields, type
// mismatches and enum violations all fail with a validation error naming
// the offending field.
func validateArgs(d Descriptor, args map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]Field, len(d.Args))
	for _, f := range d.Args {
		fields[f.Name] = f
	}

	for name := range args {
		if _, ok := fields[name]; !ok {
			return nil, apperr.New(apperr.KindValidation, "unknown argument %q for operation %q", name, d.Name)
		}
	}

	validated := make(map[string]interface{}, len(d.Args))
	for _, f := range d.Args {
		value, present := args[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, apperr.New(apperr.KindValidation, "missing required argument %q for operation %q", f.Name, d.Name)
			}
			if f.Default != nil {
				validated[f.Name] = f.Default
			}
			continue
		}

		coerced, err := coerce(f, value)
		if err != nil {
			return nil, err
		}
		validated[f.Name] = coerced
	}
	return validated, nil
}

func coerce(f Field, value interface{}) (interface{}, error) {
	switch f.Type {
	case FieldString:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(f, value)
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, apperr.New(apperr.KindValidation, "argument %q must be one of %v, got %q", f.Name, f.Enum, s)
		}
		return s, nil

	case FieldInteger:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			// JSON numbers decode as float64; accept only integral values.
			if v != float64(int64(v)) {
				return nil, typeMismatch(f, value)
			}
			return int64(v), nil
		case json.Number:
			i, err := v.Int64()
			if err != nil {
				return nil, typeMismatch(f, value)
			}
			return i, nil
		default:
			return nil, typeMismatch(f, value)
		}

	case FieldNumber:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			n, err := v.Float64()
			if err != nil {
				return nil, typeMismatch(f, value)
			}
			return n, nil
		default:
			return nil, typeMismatch(f, value)
		}

	case FieldBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(f, value)
		}
		return b, nil

	default:
		return nil, apperr.New(apperr.KindValidation, "argument %q has unsupported schema type %q", f.Name, f.Type)
	}
}

func typeMismatch(f Field, value interface{}) *apperr.Error {
	return apperr.New(apperr.KindValidation, "argument %q must be a %s, got %T", f.Name, f.Type, value)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
