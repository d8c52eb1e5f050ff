// Package resources holds template partials shared by every feature page
// (flash notices, the announcement banner strip).
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var sharedFS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers the shared partial set. Called from both
// Startup and test mains; only the first call registers.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}
