package blitcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// --- JSON structure types ---

type jsonFrame struct {
	Delay *float64    `json:"delay"`
	Blit  [][]float64 `json:"blit"`
}

type jsonRecord struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Meta     []string    `json:"meta"`
	Timeline []jsonFrame `json:"timeline"`
}

// ParseTimeline decodes a single animation record:
//
//	{"width": 600, "height": 400, "meta": ["x,y", ...],
//	 "timeline": [{"delay": 100, "blit": [[sx, sy, w, h, dx, dy], ...]}, ...]}
//
// Every malformed field is reported here, once, wrapped in
// ErrMalformedTimeline. Playback never revalidates.
func ParseTimeline(data []byte) (*Timeline, error) {
	var rec jsonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTimeline, err)
	}
	return rec.timeline()
}

// ParseBundle decodes a JSON object of keyed animation records, the format
// of a companion data resource. Malformed records are skipped and reported
// through the joined error; valid records are still returned.
func ParseBundle(data []byte) (map[string]*Timeline, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: bundle: %v", ErrMalformedTimeline, err)
	}

	// Sorted so the joined error is stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]*Timeline, len(raw))
	var errs []error
	for _, k := range keys {
		tl, err := ParseTimeline(raw[k])
		if err != nil {
			errs = append(errs, fmt.Errorf("record %q: %w", k, err))
			continue
		}
		out[k] = tl
	}
	return out, errors.Join(errs...)
}

func (rec *jsonRecord) timeline() (*Timeline, error) {
	if rec.Width <= 0 || rec.Height <= 0 {
		return nil, fmt.Errorf("%w: viewport %dx%d", ErrMalformedTimeline, rec.Width, rec.Height)
	}
	if len(rec.Timeline) == 0 {
		return nil, fmt.Errorf("%w: empty timeline", ErrMalformedTimeline)
	}

	tl := &Timeline{
		Width:  rec.Width,
		Height: rec.Height,
		Frames: make([]Frame, len(rec.Timeline)),
	}
	for i, jf := range rec.Timeline {
		f, err := jf.frame()
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrMalformedTimeline, i, err)
		}
		tl.Frames[i] = f
	}

	if len(rec.Meta) > 0 {
		tl.Cursor = make([]Vec2, len(rec.Meta))
		for i, m := range rec.Meta {
			p, err := parsePosition(m)
			if err != nil {
				return nil, fmt.Errorf("%w: meta %d: %v", ErrMalformedTimeline, i, err)
			}
			tl.Cursor[i] = p
		}
	}
	return tl, nil
}

func (jf jsonFrame) frame() (Frame, error) {
	if jf.Delay == nil {
		return Frame{}, errors.New("missing delay")
	}
	d := *jf.Delay
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return Frame{}, fmt.Errorf("delay %v", d)
	}
	f := Frame{Delay: d}
	if len(jf.Blit) > 0 {
		f.Blits = make([]BlitOp, len(jf.Blit))
	}
	for i, b := range jf.Blit {
		op, err := blitFromArray(b)
		if err != nil {
			return Frame{}, fmt.Errorf("blit %d: %v", i, err)
		}
		f.Blits[i] = op
	}
	return f, nil
}

// blitFromArray converts [srcX, srcY, w, h, dstX, dstY].
func blitFromArray(b []float64) (BlitOp, error) {
	if len(b) != 6 {
		return BlitOp{}, fmt.Errorf("want 6 values, got %d", len(b))
	}
	var v [6]int
	for i, f := range b {
		if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return BlitOp{}, fmt.Errorf("value %d is %v, want a non-negative integer", i, f)
		}
		v[i] = int(f)
	}
	return BlitOp{SrcX: v[0], SrcY: v[1], Width: v[2], Height: v[3], DstX: v[4], DstY: v[5]}, nil
}

// parsePosition parses an "x,y" cursor entry.
func parsePosition(s string) (Vec2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Vec2{}, fmt.Errorf("position %q: want \"x,y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Vec2{}, fmt.Errorf("position %q: %v", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Vec2{}, fmt.Errorf("position %q: %v", s, err)
	}
	return Vec2{X: x, Y: y}, nil
}
