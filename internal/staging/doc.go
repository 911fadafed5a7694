// Package staging manages the scratch directories frames are extracted
// into.
//
// Each directory run owns one Area named run-<uuid> under the configured
// staging root. The area is emptied before every media file and removed
// when the run ends. CleanStale reclaims areas left behind by runs that
// crashed or were killed.
package staging
