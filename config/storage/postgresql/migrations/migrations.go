package migrations

import "embed"

// MigrationsFS embeds the schema of the runs store
//
//go:embed *.sql
var MigrationsFS embed.FS
