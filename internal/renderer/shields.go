package renderer

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/svg"
	"github.com/mdfx-dev/mdfx/internal/types"
)

const shieldsBase = "https://img.shields.io/badge/"

// imageTargets emit Markdown image references; the package-registry
// targets fall back to plain text because their readme renderers strip or
// block remote images.
func imageTarget(target types.Target) bool {
	return target == types.TargetGitHub || target == types.TargetGitLab
}

func (r *Renderer) renderGlyph(b *strings.Builder, node *types.GlyphNode, target types.Target) error {
	def, ok := r.reg.Glyph(node.ID)
	if !ok {
		return mdfxerrors.UnknownID(mdfxerrors.CodeUnknownGlyph, "glyph", node.ID, node.Offset)
	}

	switch {
	case imageTarget(target):
		hex, ok := r.reg.Color(def.Color)
		if !ok {
			return mdfxerrors.InvalidShieldParams("glyph", "unknown color "+def.Color, node.Offset)
		}
		fmt.Fprintf(b, "![%s](%s)", def.ID, shieldsStaticURL(def.Label, def.Char, hex))
		return nil

	case target == types.TargetLocal:
		hex, ok := r.reg.Color(def.Color)
		if !ok {
			return mdfxerrors.InvalidShieldParams("glyph", "unknown color "+def.Color, node.Offset)
		}
		return r.emitAsset(b, def.ID, "glyph", map[string]string{"char": def.Char, "color": hex})

	default: // npm, pypi
		b.WriteString(def.Char)
		return nil
	}
}

func (r *Renderer) renderShield(b *strings.Builder, node *types.ShieldNode, target types.Target) error {
	params, err := r.resolveShieldParams(node)
	if err != nil {
		return err
	}

	switch {
	case imageTarget(target):
		label, message, err := shieldFace(node.Kind, params, node.Offset)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "![%s](%s)", node.Kind, shieldsStaticURL(label, message, params["color"]))
		return nil

	case target == types.TargetLocal:
		if !svg.Known(node.Kind) {
			return mdfxerrors.UnsupportedTargetFeature("shields:"+node.Kind, string(target), node.Offset)
		}
		return r.emitAsset(b, node.Kind, node.Kind, params)

	default:
		text, err := shieldFallback(node.Kind, params, node.Offset)
		if err != nil {
			return err
		}
		b.WriteString(text)
		return nil
	}
}

// resolveShieldParams copies the raw params with palette colors resolved
// to hex, so hashing and rendering downstream see canonical values.
func (r *Renderer) resolveShieldParams(node *types.ShieldNode) (map[string]string, error) {
	params := make(map[string]string, len(node.Params))
	for k, v := range node.Params {
		params[k] = v
	}
	if name, ok := params["color"]; ok {
		hex, found := r.reg.Color(name)
		if !found {
			return nil, mdfxerrors.InvalidShieldParams(node.Kind, "unknown color "+name, node.Offset)
		}
		params["color"] = hex
	} else {
		params["color"] = "7c3aed"
	}
	return params, nil
}

// emitAsset delegates to the asset cache and writes the image reference.
// The reference is emitted before any error is returned, so a failed write
// leaves the document pointing at the intended path; renderNodes demotes
// the asset error to a diagnostic. Text output outranks a decorative image.
func (r *Renderer) emitAsset(b *strings.Builder, alt, kind string, params map[string]string) error {
	if r.cache == nil {
		return mdfxerrors.UnsupportedTargetFeature("shields:"+kind, string(types.TargetLocal), -1)
	}
	relative, err := r.cache.GetOrCreate(kind, params)
	fmt.Fprintf(b, "![%s](%s/%s)", alt, r.assetsPrefix, relative)
	return err
}

// shieldFace derives the shields.io label/message pair for one kind.
func shieldFace(kind string, params map[string]string, offset int) (string, string, error) {
	switch kind {
	case "badge":
		if params["message"] == "" {
			return "", "", mdfxerrors.InvalidShieldParams(kind, "message is required", offset)
		}
		return params["label"], params["message"], nil
	case "swatch":
		return "", "  ", nil
	case "bar", "donut", "gauge":
		value, max, err := shieldValueMax(kind, params, offset)
		if err != nil {
			return "", "", err
		}
		if kind == "bar" {
			return params["label"], fmt.Sprintf("%s/%s", trimNumber(value), trimNumber(max)), nil
		}
		return params["label"], fmt.Sprintf("%d%%", percent(value, max)), nil
	case "rating":
		value, max, err := shieldValueMax(kind, params, offset)
		if err != nil {
			return "", "", err
		}
		return params["label"], ratingStars(value, max), nil
	}
	return "", "", mdfxerrors.UnsupportedTargetFeature("shields:"+kind, "shields", offset)
}

// shieldFallback is the plaintext rendition for npm/pypi.
func shieldFallback(kind string, params map[string]string, offset int) (string, error) {
	switch kind {
	case "badge":
		if params["message"] == "" {
			return "", mdfxerrors.InvalidShieldParams(kind, "message is required", offset)
		}
		if params["label"] != "" {
			return fmt.Sprintf("[%s: %s]", params["label"], params["message"]), nil
		}
		return fmt.Sprintf("[%s]", params["message"]), nil
	case "swatch":
		return "■", nil
	case "bar":
		value, max, err := shieldValueMax(kind, params, offset)
		if err != nil {
			return "", err
		}
		filled := int(math.Round(10 * clamp(value, 0, max) / max))
		return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled), nil
	case "donut", "gauge":
		value, max, err := shieldValueMax(kind, params, offset)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d%%", percent(value, max)), nil
	case "rating":
		value, max, err := shieldValueMax(kind, params, offset)
		if err != nil {
			return "", err
		}
		return ratingStars(value, max), nil
	}
	return "", mdfxerrors.UnsupportedTargetFeature("shields:"+kind, "text", offset)
}

func shieldValueMax(kind string, params map[string]string, offset int) (float64, float64, error) {
	value, err := strconv.ParseFloat(params["value"], 64)
	if err != nil {
		return 0, 0, mdfxerrors.InvalidShieldParams(kind, "value must be a number", offset)
	}
	max, err := strconv.ParseFloat(params["max"], 64)
	if err != nil || max <= 0 {
		return 0, 0, mdfxerrors.InvalidShieldParams(kind, "max must be a positive number", offset)
	}
	return value, max, nil
}

func percent(value, max float64) int {
	return int(math.Round(100 * clamp(value, 0, max) / max))
}

func ratingStars(value, max float64) string {
	total := int(math.Round(max))
	if total < 1 {
		total = 1
	}
	if total > 10 {
		total = 10
	}
	full := int(math.Round(clamp(value, 0, float64(total))))
	return strings.Repeat("★", full) + strings.Repeat("☆", total-full)
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

func trimNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// shieldsStaticURL builds a shields.io static badge URL. Shields requires
// doubling literal dashes and underscores before standard escaping.
func shieldsStaticURL(label, message, colorHex string) string {
	segment := shieldsEscape(message) + "-" + colorHex
	if label != "" {
		segment = shieldsEscape(label) + "-" + segment
	} else {
		segment = "-" + segment
	}
	return shieldsBase + segment
}

func shieldsEscape(s string) string {
	replacer := strings.NewReplacer("-", "--", "_", "__")
	return url.PathEscape(replacer.Replace(s))
}
