package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/richinex/repowiki/internal/logging"
)

// registeredTool pairs a Descriptor with its compiled JSON Schema, so the
// same schema document backs both argument validation and provider
// serialization without drift.
type registeredTool struct {
	descriptor Descriptor
	compiled   *jsonschema.Schema
}

// Registry holds the fixed set of tools available to one agent run and
// dispatches calls by name.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]registeredTool
	tc    *ToolContext
}

// NewRegistry creates an empty registry bound to the given tool context.
func NewRegistry(tc *ToolContext) *Registry {
	return &Registry{tools: make(map[string]registeredTool), tc: tc}
}

// Register compiles the descriptor's schema and adds it to the registry.
// Returns an error if the name is already registered or the schema does not
// compile.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("tools: %q already registered", d.Name)
	}

	// Descriptor.Schema is a Go map[string]any literal, so its numeric
	// keywords ("minimum", "maximum", ...) arrive as Go int. v6 expects the
	// float64/json.Number shapes encoding/json produces, so round-trip the
	// schema through JSON before compiling it, mirroring goa-ai's
	// validatePayloadAgainstSchema.
	schemaBytes, err := json.Marshal(d.Schema)
	if err != nil {
		return fmt.Errorf("tools: marshal schema for %q: %w", d.Name, err)
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return fmt.Errorf("tools: unmarshal schema for %q: %w", d.Name, err)
	}

	compiler := jsonschema.NewCompiler()
	resource := "tool://" + d.Name
	if err := compiler.AddResource(resource, schemaDoc); err != nil {
		return fmt.Errorf("tools: add schema resource for %q: %w", d.Name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("tools: compile schema for %q: %w", d.Name, err)
	}

	r.tools[d.Name] = registeredTool{descriptor: d, compiled: compiled}
	r.order = append(r.order, d.Name)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ToolSchema is the shape a provider's function-calling API expects.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolSchemas returns every registered tool's schema in a shape suitable for
// the provider's function-calling format.
func (r *Registry) ToolSchemas() []ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		rt := r.tools[name]
		out = append(out, ToolSchema{
			Name:        rt.descriptor.Name,
			Description: rt.descriptor.Description,
			Parameters:  rt.descriptor.Schema,
		})
	}
	return out
}

// Description renders every registered tool as a one-line-each list for the
// agent's system prompt.
func (r *Registry) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		rt := r.tools[name]
		fmt.Fprintf(&b, "- %s: %s\n", rt.descriptor.Name, rt.descriptor.Description)
	}
	return b.String()
}

// ExecuteCall deserializes argumentsSerialized (already JSON), validates it
// against the tool's schema, and invokes the handler. Unknown tool names,
// invalid arguments, and handler panics are all converted to
// ToolResult{Success:false} — none of them escape as an error, per the tool
// dispatch contract.
func (r *Registry) ExecuteCall(ctx context.Context, name string, argumentsSerialized string) (result ToolResult) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	names := make([]string, len(r.order))
	copy(names, r.order)
	r.mu.RUnlock()

	if !ok {
		logging.Warn("unknown tool requested", map[string]any{"tool": name})
		return Fail("unknown tool %q; known tools: %s", name, strings.Join(names, ", "))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("tool handler panicked", map[string]any{"tool": name, "recover": fmt.Sprint(rec)})
			result = Fail("tool %q panicked: %v", name, rec)
		}
	}()

	var args map[string]any
	if strings.TrimSpace(argumentsSerialized) == "" {
		args = map[string]any{}
	} else if err := json.Unmarshal([]byte(argumentsSerialized), &args); err != nil {
		logging.Warn("invalid tool arguments", map[string]any{"tool": name, "error": err.Error()})
		return Fail("invalid arguments for %q: %v", name, err)
	}

	if err := rt.compiled.Validate(args); err != nil {
		logging.Warn("tool argument validation failed", map[string]any{"tool": name, "error": err.Error()})
		return Fail("Validation failed for %q: %v", name, err)
	}

	return rt.descriptor.Handler(ctx, args, r.tc)
}
