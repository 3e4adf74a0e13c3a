package blitcast

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v2"
)

// Manifest describes a page of animations:
//
//	root: docs/
//	renderer: auto
//	background: "#1a1a26"
//	paths:
//	  data: js/{src}.json
//	  image: animations/{src}.png
//	bundles: [js/animations.json]
//	animations:
//	  - src: inspect-element
//	    speed: "1.5"
//	    repeatdelay: "3"
type Manifest struct {
	Root       string              `yaml:"root"`
	Renderer   string              `yaml:"renderer"`
	Background string              `yaml:"background"`
	Paths      Paths               `yaml:"paths"`
	Bundles    []string            `yaml:"bundles"`
	Animations []map[string]string `yaml:"animations"`
}

// LoadManifest decodes a YAML manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("blitcast: parse manifest: %w", err)
	}
	if _, err := ParseRendererKind(m.Renderer); err != nil {
		return nil, fmt.Errorf("blitcast: parse manifest: %w", err)
	}
	if _, _, err := m.BackgroundColor(); err != nil {
		return nil, fmt.Errorf("blitcast: parse manifest: %w", err)
	}
	return &m, nil
}

// RendererKind returns the parsed renderer selection.
func (m *Manifest) RendererKind() RendererKind {
	k, _ := ParseRendererKind(m.Renderer)
	return k
}

// BackgroundColor parses the viewer background. ok is false when the
// manifest leaves it unset.
func (m *Manifest) BackgroundColor() (c color.RGBA, ok bool, err error) {
	if m.Background == "" {
		return color.RGBA{}, false, nil
	}
	cf, err := colorful.Hex(m.Background)
	if err != nil {
		return color.RGBA{}, false, fmt.Errorf("background %q: %w", m.Background, err)
	}
	r, g, b := cf.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, true, nil
}

// Page builds fresh placeholders from the animation entries.
func (m *Manifest) Page() *Page {
	page := &Page{Placeholders: make([]*Placeholder, 0, len(m.Animations))}
	for _, attrs := range m.Animations {
		copied := make(map[string]string, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		page.Placeholders = append(page.Placeholders, NewPlaceholder(copied))
	}
	return page
}

// LoadBundles fetches every bundle and merges it into store, so those
// animations resolve without a per-placeholder fetch. A bundle that fails to
// load is reported in the returned error; the others are still merged.
func (m *Manifest) LoadBundles(ctx context.Context, f Fetcher, store *DataStore) error {
	var errs []error
	for _, name := range m.Bundles {
		data, err := f.Fetch(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := store.MergeJSON(data); err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", name, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("blitcast: load bundles: %w", errors.Join(errs...))
}
