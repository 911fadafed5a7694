// Package organizer renames identified media files in place.
//
// A Renamer turns a resolved title into "<title><ext>" next to the source
// file. Titles are sanitized for the file system, existing files are never
// overwritten, and moves across devices fall back to a verified copy
// followed by removal of the source. In dry-run mode the planned rename is
// returned without touching the file system.
package organizer
