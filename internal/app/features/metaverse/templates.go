// internal/app/features/metaverse/templates.go
package metaverse

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "metaverse",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
