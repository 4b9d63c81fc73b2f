// Package migrations embeds the versioned PostgreSQL schema so that the
// server and the migrate CLI can apply it without a source checkout.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
