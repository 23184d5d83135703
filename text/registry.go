package text

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// DefaultFamily is the name of the built-in Go Regular face.
const DefaultFamily = "Go"

// Font is a parsed font registered under a family name.
//
// The sfnt and go-text views share the same data. Both are read-only after
// parsing and safe for concurrent use; per-call state (sfnt buffers,
// go-text faces) is created by the caller.
type Font struct {
	name   string
	sfnt   *sfnt.Font
	shaped *font.Font
}

// Name returns the family name the font is registered under.
func (f *Font) Name() string { return f.name }

// UnitsPerEm returns the design units of the font.
func (f *Font) UnitsPerEm() int { return int(f.sfnt.UnitsPerEm()) }

func parseFont(name string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty data", ErrInvalidFont, name)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, name, err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, name, err)
	}
	return &Font{name: name, sfnt: sf, shaped: face.Font}, nil
}

var registry = struct {
	mu    sync.RWMutex
	fonts map[string]*Font
}{fonts: make(map[string]*Font)}

func init() {
	f, err := parseFont(DefaultFamily, goregular.TTF)
	if err != nil {
		panic(err)
	}
	registry.fonts[DefaultFamily] = f
}

// Load reads a TrueType or OpenType file and registers it under the file
// name without its extension. It returns that name.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("text: load %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := LoadData(name, data); err != nil {
		return "", err
	}
	return name, nil
}

// LoadData parses font data and registers it under name, replacing a
// previous font of the same name. The built-in family cannot be replaced.
func LoadData(name string, data []byte) error {
	if name == DefaultFamily {
		return ErrBuiltinFont
	}
	f, err := parseFont(name, data)
	if err != nil {
		slogger().Warn("text: font rejected", "name", name, "err", err)
		return err
	}
	registry.mu.Lock()
	old := registry.fonts[name]
	registry.fonts[name] = f
	registry.mu.Unlock()
	if old != nil {
		old.forget()
	}
	slogger().Debug("text: font loaded", "name", name, "bytes", len(data))
	return nil
}

// Unload removes a font from the registry. Runs already laid out with it
// stay valid.
func Unload(name string) error {
	if name == DefaultFamily {
		return ErrBuiltinFont
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	f, ok := registry.fonts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFontNotFound, name)
	}
	delete(registry.fonts, name)
	f.forget()
	return nil
}

// Lookup returns the font registered under name.
func Lookup(name string) (*Font, error) {
	registry.mu.RLock()
	f, ok := registry.fonts[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFontNotFound, name)
	}
	return f, nil
}

// Families returns the registered family names in sorted order.
func Families() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return slices.Sorted(maps.Keys(registry.fonts))
}
