package vision

import "google.golang.org/genai"

// Schema is a provider-neutral description of a structured response.
type Schema struct {
	Name       string
	Type       string
	Properties map[string]*Schema
	Items      *Schema
	Required   []string
}

const (
	typeObject = "object"
	typeArray  = "array"
	typeString = "string"
)

var pairSchema = &Schema{
	Name: "credit_pairs",
	Type: typeObject,
	Properties: map[string]*Schema{
		"entries": {
			Type: typeArray,
			Items: &Schema{
				Type: typeObject,
				Properties: map[string]*Schema{
					"key":    {Type: typeString},
					"values": {Type: typeArray, Items: &Schema{Type: typeString}},
				},
				Required: []string{"key", "values"},
			},
		},
	},
	Required: []string{"entries"},
}

var titleSchema = &Schema{
	Name:       "title",
	Type:       typeObject,
	Properties: map[string]*Schema{"title": {Type: typeString}},
	Required:   []string{"title"},
}

// Genai converts s to the Gen AI SDK schema type.
func (s *Schema) Genai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Required: append([]string(nil), s.Required...)}
	switch s.Type {
	case typeObject:
		out.Type = genai.TypeObject
	case typeArray:
		out.Type = genai.TypeArray
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.Genai()
		}
	}
	out.Items = s.Items.Genai()
	return out
}

// JSONSchema converts s to a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Required) > 0 {
		out["required"] = append([]string(nil), s.Required...)
	}
	return out
}
