package toolcall

import "github.com/custodia-labs/docindex/internal/core/ports/driving"

// Definition is a function-calling tool definition.
type Definition struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function describes a callable tool.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the JSON schema object of a tool's arguments.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property describes a single argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Define converts tool specs into function-calling definitions.
func Define(specs []driving.ToolSpec) []Definition {
	defs := make([]Definition, len(specs))
	for i, spec := range specs {
		params := Parameters{
			Type:       "object",
			Properties: make(map[string]Property, len(spec.Params)),
			Required:   []string{},
		}
		for _, p := range spec.Params {
			params.Properties[p.Name] = Property{
				Type:        p.Type,
				Description: p.Description,
				Default:     p.Default,
			}
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}
		defs[i] = Definition{
			Type: "function",
			Function: Function{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		}
	}
	return defs
}
