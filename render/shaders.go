package render

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed shaders/*.fs
var shaderFS embed.FS

// loadShaderSources returns the embedded fragment shader sources keyed by
// program name (file name without extension).
func loadShaderSources() (map[string]string, error) {
	entries, err := shaderFS.ReadDir("shaders")
	if err != nil {
		return nil, fmt.Errorf("reading embedded shaders: %w", err)
	}
	sources := make(map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		data, err := shaderFS.ReadFile("shaders/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading shader %s: %w", e.Name(), err)
		}
		sources[name] = string(data)
	}
	return sources, nil
}
