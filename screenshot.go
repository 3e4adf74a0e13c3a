package blitcast

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Capture writes what the controller currently shows (surface plus cursor)
// as a PNG in dir and returns the file path. The name combines the source
// key, the controller ID and the label.
func (c *Controller) Capture(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blitcast: capture: mkdir %s: %w", dir, err)
	}
	id := c.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s_%s.png", sanitizeLabel(c.Name), id, sanitizeLabel(label))
	path := filepath.Join(dir, name)
	if err := WritePNG(path, c.Snapshot()); err != nil {
		return "", fmt.Errorf("blitcast: capture: %w", err)
	}
	return path, nil
}

// WritePNG encodes an image to a PNG file at the given path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
