// Package config loads an optional TOML configuration file carrying page
// size/margin presets and compiler defaults, grounded on the TOML
// decoding pattern used throughout the corpus's own manifest readers.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/quillforge/docpdf/internal/geometry"
)

// PageDefaults holds a named page size/margin preset a document can be
// compiled against when the source package doesn't specify its own
// section properties.
type PageDefaults struct {
	Size    string  `toml:"size"`    // one of geometry's known page-size names
	MarginT float64 `toml:"margin_top"`
	MarginR float64 `toml:"margin_right"`
	MarginB float64 `toml:"margin_bottom"`
	MarginL float64 `toml:"margin_left"`
}

// CompilerDefaults mirrors the PDF Compiler options a config file can
// override so a CLI invocation doesn't need every flag spelled out.
type CompilerDefaults struct {
	ArlingtonCompatible bool    `toml:"arlington_compatible"`
	WatermarkOpacity    float64 `toml:"watermark_opacity"`
}

// Config is the root of a docpdf TOML configuration file.
type Config struct {
	Page     PageDefaults     `toml:"page"`
	Compiler CompilerDefaults `toml:"compiler"`
}

// Load reads and decodes a TOML file at path. A missing file is not an
// error — callers should fall back to Default() — but a malformed one is.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Page.Size == "" {
		cfg.Page.Size = "LETTER"
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is
// supplied: US Letter with 1-inch margins, non-strict compiler output.
func Default() Config {
	return Config{
		Page: PageDefaults{Size: "LETTER", MarginT: 72, MarginR: 72, MarginB: 72, MarginL: 72},
	}
}

// PageSize resolves the configured page size name to points, falling
// back to A4 for an unrecognized name (geometry.PageDimensions' own
// fallback).
func (c Config) PageSize() geometry.Size {
	return geometry.PageDimensions(c.Page.Size, false)
}

// Margins resolves the configured margins to a geometry.Margins value.
func (c Config) Margins() geometry.Margins {
	return geometry.Margins{Top: c.Page.MarginT, Right: c.Page.MarginR, Bottom: c.Page.MarginB, Left: c.Page.MarginL}
}
