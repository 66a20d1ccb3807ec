// Package migrations embeds the SQLite schema for the submission ledger.
package migrations

import "embed"

// FS contains embedded SQLite migrations for the submission ledger.
//
//go:embed *.sql
var FS embed.FS
