// Package handlers implements the HTTP endpoints. All state arrives through
// Deps so handlers carry no package-level globals.
package handlers

import (
	"relaylog/pkg/store"
)

// Deps bundles the components handlers operate on.
type Deps struct {
	Live      *store.Live
	Archive   *store.Archive
	Admin     *store.Admin
	Compactor *store.Compactor
}
