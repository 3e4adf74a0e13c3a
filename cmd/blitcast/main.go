// Command blitcast plays the animations of a page manifest in a window, or
// runs a script against them headlessly and writes PNG captures.
//
//	blitcast -manifest docs/page.yaml
//	blitcast -manifest docs/page.yaml -script smoke.json -out captures/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/blitcast"
)

func main() {
	manifestPath := flag.String("manifest", "page.yaml", "YAML page manifest.")
	root := flag.String("root", "", "Resource root directory or URL (overrides the manifest).")
	renderer := flag.String("renderer", "", "Renderer: auto, pixel or node (overrides the manifest).")
	scriptPath := flag.String("script", "", "JSON script to run headlessly instead of opening a window.")
	outDir := flag.String("out", "captures", "Directory for script screenshots.")
	title := flag.String("title", "blitcast", "Window title.")
	showFPS := flag.Bool("fps", false, "Show FPS and TPS in the window.")
	debug := flag.Bool("debug", false, "Log playback details.")
	flag.Parse()

	blitcast.SetDebug(*debug)

	m, err := readManifest(*manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	kind := m.RendererKind()
	if *renderer != "" {
		if kind, err = blitcast.ParseRendererKind(*renderer); err != nil {
			log.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := blitcast.NewClock()
	fetcher := blitcast.NewFetcher(resolveRoot(*manifestPath, m.Root, *root))
	store := blitcast.NewDataStore()
	if err := m.LoadBundles(ctx, fetcher, store); err != nil {
		log.Printf("blitcast: %v", err)
	}

	reg := blitcast.NewRegistry(blitcast.RegistryConfig{
		Store:     store,
		Fetcher:   fetcher,
		Scheduler: clock,
		Paths:     m.Paths,
		Renderer:  kind,
		Context:   ctx,
	})
	defer reg.Close()

	page := m.Page()
	reg.PrepareAll(page)
	// Resolve data and atlases before the first tick.
	clock.Flush()
	log.Printf("blitcast: %d of %d animations ready", len(page.Controllers()), len(page.Placeholders))

	if *scriptPath != "" {
		if err := runScript(*scriptPath, clock, page, *outDir); err != nil {
			log.Fatal(err)
		}
		return
	}

	v := blitcast.NewViewer(page, clock)
	if bg, ok, _ := m.BackgroundColor(); ok {
		v.ClearColor = bg
	}
	if err := blitcast.RunViewer(v, blitcast.RunConfig{Title: *title, ShowFPS: *showFPS}); err != nil {
		log.Fatal(err)
	}
}

func readManifest(path string) (*blitcast.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return blitcast.LoadManifest(f)
}

// resolveRoot picks the flag over the manifest and anchors relative
// directories at the manifest's location.
func resolveRoot(manifestPath, fromManifest, fromFlag string) string {
	if fromFlag != "" {
		return fromFlag
	}
	if strings.HasPrefix(fromManifest, "http://") || strings.HasPrefix(fromManifest, "https://") {
		return fromManifest
	}
	if filepath.IsAbs(fromManifest) {
		return fromManifest
	}
	return filepath.Join(filepath.Dir(manifestPath), fromManifest)
}

func runScript(path string, clock *blitcast.Clock, page *blitcast.Page, outDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	script, err := blitcast.LoadScript(data)
	if err != nil {
		return err
	}
	shots, err := script.Run(clock, page, outDir)
	for _, s := range shots {
		fmt.Println(s)
	}
	return err
}
