package dataset

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// Dataset formats
const (
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

//go:embed vanilla.yaml
var vanillaDataset []byte

// NewVanillaProvider returns the built-in base-game subset
func NewVanillaProvider() catalog.DataProvider {
	p, _ := NewYAMLProviderFromReader(bytes.NewReader(vanillaDataset))
	p.path = "builtin:vanilla.yaml"
	return p
}

// NewProvider picks a provider for path. An empty path selects the built-in
// dataset; an empty format is detected from the file extension.
func NewProvider(path, format, blacklistFile string) (catalog.DataProvider, error) {
	if path == "" {
		return WithBlacklist(NewVanillaProvider(), blacklistFile), nil
	}

	if format == "" {
		format = FormatFromPath(path)
	}

	var provider catalog.DataProvider
	switch format {
	case FormatYAML:
		provider = NewYAMLProvider(path)
	case FormatRaw:
		provider = NewRawDumpProvider(path)
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
	return WithBlacklist(provider, blacklistFile), nil
}

// FormatFromPath maps .yaml/.yml to the YAML format and everything else to a raw dump
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatRaw
	}
}
