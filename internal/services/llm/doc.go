// Package llm provides an OpenRouter chat completions client.
//
// RollCall uses it as an alternative vision backend: frames are sent as
// inline image data URLs, credits OCR and title refinement request JSON
// output via a json_schema response format.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a Request (optional image, schema, token cap).
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: tolerate code fences and prose around JSON payloads.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Context cancellation aborts retries immediately.
package llm
