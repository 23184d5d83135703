package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrFontNotFound is returned when no font is registered under a name.
	ErrFontNotFound = errors.New("text: font not found")

	// ErrInvalidFont is returned when font data cannot be parsed.
	ErrInvalidFont = errors.New("text: invalid font data")

	// ErrBuiltinFont is returned when unloading the built-in family.
	ErrBuiltinFont = errors.New("text: built-in font cannot be unloaded")
)
