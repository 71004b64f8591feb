// Package migrations holds the numbered SQL migrations for the local store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
