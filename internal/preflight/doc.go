// Package preflight provides readiness checks for the binaries, directories,
// and model credentials RollCall depends on.
//
// The run command calls RunAll before touching any video and refuses to
// start when a required check fails. The doctor command prints every result,
// and can additionally ask the model provider to confirm the API key.
package preflight
