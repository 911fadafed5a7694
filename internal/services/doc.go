// Package services defines shared utilities consumed by the per-file workflow
// and the external integrations beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, media file names, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper so per-file failures can
//     be classified consistently in logs and run history.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform.
package services
