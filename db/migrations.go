// Package db bundles the SQL schema applied at startup and in tests.
package db

import "embed"

// Migrations holds the *.up.sql files, applied in lexical order.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS
