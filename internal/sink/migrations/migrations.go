// Package migrations embeds the goose migrations of the SQL chunk store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
