package tools

import (
	"context"
	"fmt"
	"sync"
)

// UnknownToolError is returned when the model names a tool that is not registered.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// Registry manages the collection of available tools for an agent.
// Tools are listed in registration order so prompts render deterministically.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a tool to the registry, panicking if registration fails.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Lookup retrieves a tool by exact name, or an *UnknownToolError.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}
	known := make([]string, len(r.order))
	copy(known, r.order)
	return nil, &UnknownToolError{Name: name, Known: known}
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Run executes a tool and always yields observation text: returned errors
// and panics inside the tool are converted to an error description.
func Run(ctx context.Context, tool Tool, input string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Failuref("tool %q failed: %v", tool.Name(), rec).String()
		}
	}()

	result, err := tool.Execute(ctx, input)
	if err != nil {
		return Failuref("tool %q failed: %v", tool.Name(), err).String()
	}
	return result.String()
}
