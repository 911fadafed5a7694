// Package vision turns model backends into the OCR, refinement, and search
// services the identification loop consumes.
//
// Service owns the prompts, response schemas, and response parsing. A
// Backend only moves a Call to a provider and returns the text it answered
// with; Gemini and OpenRouter adapters are provided.
package vision
