// Package migrations embeds the goose SQL migrations for the profile store
// and username registry schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
