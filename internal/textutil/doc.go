// Package textutil provides small text helpers shared across packages.
//
// The primary use cases are:
//   - Collapsing runs of whitespace in OCR output
//   - Sanitizing resolved titles for safe use as file names
package textutil
