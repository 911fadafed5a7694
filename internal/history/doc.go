// Package history records directory runs and their per-file outcomes in a
// SQLite database so past renames can be reviewed with `rollcall history`.
//
// The database lives at <state_dir>/history.db. A schema version mismatch
// is reported as ErrSchemaMismatch; delete the file to start over.
package history
