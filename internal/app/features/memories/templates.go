// internal/app/features/memories/templates.go
package memories

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "memories",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
