// Package migrations embeds the goose migrations for the SQLite backing store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
