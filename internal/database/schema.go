package database

import _ "embed"

// Schema is the full catalogue schema as produced by running every migration.
// Tests apply it directly instead of migrating.
//
//go:embed sqlc/schema.sql
var Schema string
