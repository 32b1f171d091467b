// Package web embeds the static single-page UI.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
