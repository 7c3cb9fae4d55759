package render

import "unicode/utf8"

// TextMeasurer reports the rendered width of field text.
type TextMeasurer interface {
	Width(text string) float64
}

// Monospace estimates text width from a fixed advance per rune. It is the
// default when no font metrics are available.
type Monospace struct {
	CharWidth float64
}

// Width implements TextMeasurer.
func (m Monospace) Width(text string) float64 {
	return m.CharWidth * float64(utf8.RuneCountInString(text))
}
