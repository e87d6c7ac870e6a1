// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export writes the current collection to w as "yaml" or "json". The
// snapshot includes server-owned fields, so an export taken while online
// round-trips through ReplaceAll without loss.
func (s *Store) Export(w io.Writer, format string) error {
	articles := s.Articles()

	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(articles)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
