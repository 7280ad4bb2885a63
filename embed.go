package entrymeta

import (
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/eringen/entrymeta/icons"
)

// EmbeddedAssets contains assets shipped with the module: the term icon
// table (icons.yaml) and the icon sprite (sprite.svg).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// loadIcons reads the icon table from path, or the embedded one when path is
// empty.
func loadIcons(path string) (*icons.Set, error) {
	var r io.ReadCloser
	var err error
	if path == "" {
		r, err = EmbeddedAssets.Open("embedded/icons.yaml")
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("entrymeta: open icons: %w", err)
	}
	defer r.Close()
	return icons.Load(r)
}
