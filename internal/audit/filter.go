package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program evaluated against audit entries when
// tailing the log. When disabled, Match always returns true.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr into a Filter. An empty expression yields a
// disabled filter that matches everything.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("seq", cel.IntType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("entity_type", cel.StringType),
		cel.Variable("tenant", cel.StringType),
		cel.Variable("business_key", cel.StringType),
		cel.Variable("actor", cel.StringType),
		cel.Variable("new_seq", cel.IntType),
		// Parsed payload for field-level filtering
		cel.Variable("json", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the compiled expression against an entry. When disabled,
// returns true. Evaluation errors count as non-matches.
func (f Filter) Match(e Entry) bool {
	if !f.enabled {
		return true
	}
	var jsonObj any
	_ = json.Unmarshal(e.Event.Payload, &jsonObj)
	out, _, err := f.prog.Eval(map[string]any{
		"seq":          int64(e.Seq),
		"ts_ms":        e.Event.TimestampMs,
		"entity_type":  e.Event.EntityType,
		"tenant":       e.Event.TenantID,
		"business_key": e.Event.BusinessKey,
		"actor":        e.Event.Actor,
		"new_seq":      int64(e.Event.NewSeq),
		"json":         jsonObj,
		"now_ms":       time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
