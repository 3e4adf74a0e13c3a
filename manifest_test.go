package blitcast

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
)

const pageManifest = `
root: docs/
renderer: node
paths:
  data: js/{src}.json
bundles:
  - js/animations.json
  - js/missing.json
animations:
  - src: inspect-element
    speed: "1.5"
  - src: typing
    repeatdelay: "3"
`

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(pageManifest))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Root != "docs/" {
		t.Errorf("Root = %q, want docs/", m.Root)
	}
	if m.RendererKind() != RendererNode {
		t.Errorf("RendererKind = %v, want node", m.RendererKind())
	}
	if got := m.Paths.DataPath("typing"); got != "js/typing.json" {
		t.Errorf("DataPath = %q, want js/typing.json", got)
	}
	if got := m.Paths.ImagePath("typing"); got != "animations/typing.png" {
		t.Errorf("ImagePath = %q, want the default", got)
	}
	if len(m.Animations) != 2 || m.Animations[0]["speed"] != "1.5" {
		t.Errorf("Animations = %v", m.Animations)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	if _, err := LoadManifest(strings.NewReader("renderer: webgl\n")); err == nil {
		t.Error("unknown renderer should be rejected")
	}
	if _, err := LoadManifest(strings.NewReader("animations: [\n")); err == nil {
		t.Error("invalid YAML should be rejected")
	}
}

func TestManifestPageCopiesAttrs(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(pageManifest))
	if err != nil {
		t.Fatal(err)
	}
	page := m.Page()
	if len(page.Placeholders) != 2 {
		t.Fatalf("Placeholders = %d, want 2", len(page.Placeholders))
	}
	page.Placeholders[0].Attrs[AttrSpeed] = "9"
	if m.Animations[0]["speed"] != "1.5" {
		t.Error("Page should copy attributes")
	}
	if page.Find("typing") == nil {
		t.Error("Find(typing) = nil")
	}
}

func TestManifestLoadBundles(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(pageManifest))
	if err != nil {
		t.Fatal(err)
	}
	f := newFakeFetcher()
	f.files["js/animations.json"] = []byte(demoBundle)
	store := NewDataStore()

	err = m.LoadBundles(context.Background(), f, store)
	if err == nil || !strings.Contains(err.Error(), "js/missing.json") {
		t.Errorf("err = %v, want the missing bundle reported", err)
	}
	if _, ok := store.Lookup("demo"); !ok {
		t.Error("the good bundle should still be merged")
	}
}

func TestManifestLoadBundlesMalformed(t *testing.T) {
	m := &Manifest{Bundles: []string{"b.json"}}
	f := newFakeFetcher()
	f.files["b.json"] = []byte(`{"x": {"width": 0}}`)
	err := m.LoadBundles(context.Background(), f, NewDataStore())
	if !errors.Is(err, ErrMalformedTimeline) {
		t.Errorf("err = %v, want ErrMalformedTimeline", err)
	}
}

func TestManifestBackgroundColor(t *testing.T) {
	m, err := LoadManifest(strings.NewReader("background: \"#1a1a26\"\n"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	c, ok, err := m.BackgroundColor()
	if err != nil || !ok {
		t.Fatalf("BackgroundColor = %v, %v, %v", c, ok, err)
	}
	if c != (color.RGBA{R: 0x1a, G: 0x1a, B: 0x26, A: 255}) {
		t.Errorf("BackgroundColor = %v, want #1a1a26", c)
	}

	if _, ok, _ := (&Manifest{}).BackgroundColor(); ok {
		t.Error("unset background should report ok = false")
	}
	if _, err := LoadManifest(strings.NewReader("background: teal\n")); err == nil {
		t.Error("invalid background should be rejected")
	}
}
