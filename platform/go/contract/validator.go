// Package contract validates admin API payloads against the embedded JSON
// Schemas before any domain logic runs.
package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed wallpaper.schema.json
var wallpaperSchemaJSON []byte

var (
	compileOnce      sync.Once
	wallpaperSchema  *jsonschema.Schema
	wallpaperCompile error
)

func compiledWallpaperSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("wallpaper.schema.json", bytes.NewReader(wallpaperSchemaJSON)); err != nil {
			wallpaperCompile = fmt.Errorf("register wallpaper schema: %w", err)
			return
		}
		wallpaperSchema, wallpaperCompile = compiler.Compile("wallpaper.schema.json")
	})
	return wallpaperSchema, wallpaperCompile
}

// ValidateWallpaperPayload ensures a create/update body matches the wallpaper
// contract. The returned error message is safe to surface to API clients.
func ValidateWallpaperPayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is required")
	}

	schema, err := compiledWallpaperSchema()
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
