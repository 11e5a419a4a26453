// Package migrations embeds the PostgreSQL schema migrations.
//
// Files are named NNNNNN_name.up.sql / NNNNNN_name.down.sql and applied in
// lexical order.
package migrations

import "embed"

// FS holds every migration file.
//
//go:embed *.sql
var FS embed.FS
