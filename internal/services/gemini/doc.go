// Package gemini wraps the Google Gen AI SDK for the requests RollCall
// makes: schema-constrained JSON generation over an optional inline image,
// and plain-text generation with the Google Search tool attached.
//
// All requests run with deterministic sampling (temperature 0, top-p 1,
// top-k 1). Rate limits and server errors are retried with exponential
// backoff.
package gemini
