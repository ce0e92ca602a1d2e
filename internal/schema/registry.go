package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Mode distinguishes a real, registered validator from the permissive stub
// used when no schema is known for an entity type.
type Mode int

const (
	// ModeStub means no schema is registered; validation only checks that the
	// payload is a JSON object within size bounds.
	ModeStub Mode = iota
	// ModeReal means a registered schema (required fields, optional CEL
	// constraint) is enforced.
	ModeReal
)

// String returns "stub" or "real".
func (m Mode) String() string {
	if m == ModeReal {
		return "real"
	}
	return "stub"
}

// Def declares a payload schema for one entity type.
type Def struct {
	EntityType      string
	RequiredFields  []string
	Constraint      string
	MaxPayloadBytes int
}

// ValidationError reports a payload rejected before any write was attempted.
type ValidationError struct {
	EntityType string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: invalid payload for %q: %s", e.EntityType, e.Reason)
}

type compiled struct {
	def  Def
	prog cel.Program
}

// Registry validates write payloads per entity type. Unregistered entity
// types pass a permissive stub check unless the registry was built with
// requireRegistered, in which case they are rejected.
type Registry struct {
	mu                sync.RWMutex
	schemas           map[string]*compiled
	requireRegistered bool
	defaultMaxBytes   int
}

// NewRegistry returns an empty Registry. defaultMaxBytes bounds payloads of
// unregistered entity types; zero disables the bound.
func NewRegistry(requireRegistered bool, defaultMaxBytes int) *Registry {
	return &Registry{
		schemas:           make(map[string]*compiled),
		requireRegistered: requireRegistered,
		defaultMaxBytes:   defaultMaxBytes,
	}
}

// Register compiles and installs a schema definition, replacing any previous
// schema for the same entity type.
func (r *Registry) Register(def Def) error {
	if strings.TrimSpace(def.EntityType) == "" {
		return fmt.Errorf("schema: entity type is required")
	}
	c := &compiled{def: def}
	if expr := strings.TrimSpace(def.Constraint); expr != "" {
		env, err := cel.NewEnv(
			cel.Variable("json", cel.DynType),
			cel.Variable("entity_type", cel.StringType),
			cel.Variable("size", cel.IntType),
		)
		if err != nil {
			return err
		}
		ast, iss := env.Parse(expr)
		if iss != nil && iss.Err() != nil {
			return fmt.Errorf("schema: constraint for %q: %w", def.EntityType, iss.Err())
		}
		checked, iss2 := env.Check(ast)
		if iss2 != nil && iss2.Err() != nil {
			return fmt.Errorf("schema: constraint for %q: %w", def.EntityType, iss2.Err())
		}
		prog, err := env.Program(checked)
		if err != nil {
			return err
		}
		c.prog = prog
	}
	r.mu.Lock()
	r.schemas[def.EntityType] = c
	r.mu.Unlock()
	return nil
}

// Mode reports whether the entity type has a registered schema.
func (r *Registry) Mode(entityType string) Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.schemas[entityType]; ok {
		return ModeReal
	}
	return ModeStub
}

// List returns the entity types with registered schemas.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		out = append(out, k)
	}
	return out
}

// Validate checks payload against the schema for entityType. It returns a
// *ValidationError for rejected payloads; nothing has been written when it
// fails.
func (r *Registry) Validate(entityType string, payload []byte) error {
	r.mu.RLock()
	c, registered := r.schemas[entityType]
	r.mu.RUnlock()

	if !registered && r.requireRegistered {
		return &ValidationError{EntityType: entityType, Reason: "no schema registered"}
	}

	maxBytes := r.defaultMaxBytes
	if registered && c.def.MaxPayloadBytes > 0 {
		maxBytes = c.def.MaxPayloadBytes
	}
	if maxBytes > 0 && len(payload) > maxBytes {
		return &ValidationError{EntityType: entityType, Reason: fmt.Sprintf("payload exceeds %d bytes", maxBytes)}
	}

	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return &ValidationError{EntityType: entityType, Reason: "payload is not a JSON object"}
	}
	if !registered {
		return nil
	}

	for _, f := range c.def.RequiredFields {
		if _, ok := obj[f]; !ok {
			return &ValidationError{EntityType: entityType, Reason: fmt.Sprintf("missing required field %q", f)}
		}
	}

	if c.prog != nil {
		out, _, err := c.prog.Eval(map[string]any{
			"json":        obj,
			"entity_type": entityType,
			"size":        int64(len(payload)),
		})
		if err != nil {
			return &ValidationError{EntityType: entityType, Reason: "constraint evaluation failed: " + err.Error()}
		}
		ok, isBool := out.Value().(bool)
		if !isBool || !ok {
			return &ValidationError{EntityType: entityType, Reason: "constraint not satisfied"}
		}
	}
	return nil
}
