// Package web embeds the static landing page served from the Go binary.
//
// Usage in the API server:
//
//	r.Handle("/*", http.FileServer(http.FS(web.StaticFS())))
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}
