// Package ui holds the HTML and feed templates compiled into the binary.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed html
var files embed.FS

// Templates returns the embedded template directory.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "html")
	if err != nil {
		panic(err)
	}
	return sub
}
