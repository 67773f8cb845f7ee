package data

import (
	"embed"
)

//go:embed templates/*.html
var TemplatesFS embed.FS

// Templates exposes the embedded PDF document templates.
func Templates() embed.FS {
	return TemplatesFS
}
