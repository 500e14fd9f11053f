// Package ui provides the embedded HTML templates for the reel pages.
package ui

import (
	"embed"
	"html/template"
)

//go:embed reel.html error.html
var files embed.FS

// Templates holds the parsed page templates, keyed by file name.
var Templates = template.Must(template.ParseFS(files, "*.html"))
