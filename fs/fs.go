// Package appfs exposes files that ship with the app binaries.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
