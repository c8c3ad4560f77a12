// Package migrations embeds the goose SQL migrations applied to every tenant
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
