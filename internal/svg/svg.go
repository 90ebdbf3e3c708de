// Package svg generates the visual primitives for the local backend. Every
// renderer is a pure function from resolved parameters to an SVG document,
// so identical parameters always yield byte-identical output — the property
// the content-addressed asset cache depends on.
package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Render draws one visual primitive. Colors must already be resolved to
// bare hex values; numeric parameters are validated here.
func Render(kind string, params map[string]string) (string, error) {
	switch kind {
	case "swatch":
		return renderSwatch(params)
	case "bar":
		return renderBar(params)
	case "donut":
		return renderDonut(params)
	case "gauge":
		return renderGauge(params)
	case "rating":
		return renderRating(params)
	case "badge":
		return renderBadge(params)
	case "glyph":
		return renderGlyph(params)
	}
	return "", fmt.Errorf("no renderer for kind %q", kind)
}

// Known reports whether a kind has a local renderer.
func Known(kind string) bool {
	switch kind {
	case "swatch", "bar", "donut", "gauge", "rating", "badge", "glyph":
		return true
	}
	return false
}

func renderSwatch(params map[string]string) (string, error) {
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 16 16">`+
			`<rect width="16" height="16" rx="3" fill="#%s"/></svg>`,
		color), nil
}

func renderBar(params map[string]string) (string, error) {
	value, max, err := valueMax(params)
	if err != nil {
		return "", err
	}
	width, err := intParam(params, "width", 120)
	if err != nil {
		return "", err
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	fill := float64(width) * ratio(value, max)
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="12" viewBox="0 0 %d 12">`+
			`<rect width="%d" height="12" rx="6" fill="#e5e7eb"/>`+
			`<rect width="%s" height="12" rx="6" fill="#%s"/></svg>`,
		width, width, width, f2(fill), color), nil
}

func renderDonut(params map[string]string) (string, error) {
	value, max, err := valueMax(params)
	if err != nil {
		return "", err
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	const r = 15.5
	circumference := 2 * math.Pi * r
	filled := circumference * ratio(value, max)
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="40" height="40" viewBox="0 0 40 40">`+
			`<circle cx="20" cy="20" r="%s" fill="none" stroke="#e5e7eb" stroke-width="6"/>`+
			`<circle cx="20" cy="20" r="%s" fill="none" stroke="#%s" stroke-width="6"`+
			` stroke-dasharray="%s %s" stroke-linecap="round" transform="rotate(-90 20 20)"/></svg>`,
		f2(r), f2(r), color, f2(filled), f2(circumference-filled)), nil
}

func renderGauge(params map[string]string) (string, error) {
	value, max, err := valueMax(params)
	if err != nil {
		return "", err
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	// Semicircular dial, needle angle swept from 180° (empty) to 0° (full).
	angle := math.Pi * (1 - ratio(value, max))
	nx := 30 + 22*math.Cos(angle)
	ny := 30 - 22*math.Sin(angle)
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="60" height="36" viewBox="0 0 60 36">`+
			`<path d="M 5 30 A 25 25 0 0 1 55 30" fill="none" stroke="#e5e7eb" stroke-width="6" stroke-linecap="round"/>`+
			`<line x1="30" y1="30" x2="%s" y2="%s" stroke="#%s" stroke-width="3" stroke-linecap="round"/>`+
			`<circle cx="30" cy="30" r="3" fill="#%s"/></svg>`,
		f2(nx), f2(ny), color, color), nil
}

func renderRating(params map[string]string) (string, error) {
	value, max, err := valueMax(params)
	if err != nil {
		return "", err
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	stars := int(max)
	if stars < 1 || stars > 10 {
		return "", fmt.Errorf("rating max %s out of range 1-10", params["max"])
	}
	full := int(math.Round(clamp(value, 0, max)))

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="16" viewBox="0 0 %d 16">`,
		stars*16, stars*16)
	for i := 0; i < stars; i++ {
		fill := "#d1d5db"
		if i < full {
			fill = "#" + color
		}
		fmt.Fprintf(&b,
			`<path transform="translate(%d 0)" fill="%s" d="M8 1.5l2 4.1 4.5.6-3.2 3.2.7 4.5L8 11.8l-4 2.1.7-4.5L1.5 6.2 6 5.6z"/>`,
			i*16, fill)
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func renderBadge(params map[string]string) (string, error) {
	label := params["label"]
	message := params["message"]
	if message == "" {
		return "", fmt.Errorf("badge requires a message parameter")
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	labelW := textWidth(label)
	messageW := textWidth(message)
	total := labelW + messageW
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="20" viewBox="0 0 %d 20">`+
			`<rect width="%d" height="20" rx="3" fill="#555"/>`+
			`<rect x="%d" width="%d" height="20" rx="3" fill="#%s"/>`+
			`<rect x="%d" width="3" height="20" fill="#%s"/>`+
			`<text x="%d" y="14" fill="#fff" font-family="Verdana,sans-serif" font-size="11" text-anchor="middle">%s</text>`+
			`<text x="%d" y="14" fill="#fff" font-family="Verdana,sans-serif" font-size="11" text-anchor="middle">%s</text></svg>`,
		total, total,
		total,
		labelW, messageW, color,
		labelW, color,
		labelW/2, escapeText(label),
		labelW+messageW/2, escapeText(message)), nil
}

func renderGlyph(params map[string]string) (string, error) {
	char := params["char"]
	if char == "" {
		return "", fmt.Errorf("glyph requires a char parameter")
	}
	color, err := hexParam(params, "color")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="18" height="18" viewBox="0 0 18 18">`+
			`<circle cx="9" cy="9" r="9" fill="#%s"/>`+
			`<text x="9" y="13" fill="#fff" font-family="Verdana,sans-serif" font-size="11" text-anchor="middle">%s</text></svg>`,
		color, escapeText(char)), nil
}

func valueMax(params map[string]string) (float64, float64, error) {
	value, err := floatParam(params, "value")
	if err != nil {
		return 0, 0, err
	}
	max, err := floatParam(params, "max")
	if err != nil {
		return 0, 0, err
	}
	if max <= 0 {
		return 0, 0, fmt.Errorf("max must be positive, got %s", params["max"])
	}
	return value, max, nil
}

func floatParam(params map[string]string, key string) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing %s parameter", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number", key, raw)
	}
	return v, nil
}

func intParam(params map[string]string, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s=%q is not a positive integer", key, raw)
	}
	return v, nil
}

func hexParam(params map[string]string, key string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return "", fmt.Errorf("missing %s parameter", key)
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", fmt.Errorf("%s=%q is not a hex color", key, raw)
		}
	}
	return strings.ToLower(raw), nil
}

func ratio(value, max float64) float64 {
	return clamp(value, 0, max) / max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// f2 formats floats with fixed precision so output is reproducible.
func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// textWidth approximates rendered width for the badge layout. Exact
// metrics do not matter, determinism does.
func textWidth(s string) int {
	n := len([]rune(s))
	if n == 0 {
		return 10
	}
	return n*7 + 10
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
