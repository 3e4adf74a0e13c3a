package blitcast

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"
)

// Vec2 is a 2D position in viewport pixel space.
type Vec2 struct {
	X, Y float64
}

// BlitOp copies a Width×Height rectangle at (SrcX, SrcY) in the atlas to
// (DstX, DstY) in the viewport. Scale is always 1:1.
type BlitOp struct {
	SrcX, SrcY    int
	Width, Height int
	DstX, DstY    int
}

// SrcRect returns the source rectangle in atlas space.
func (b BlitOp) SrcRect() image.Rectangle {
	return image.Rect(b.SrcX, b.SrcY, b.SrcX+b.Width, b.SrcY+b.Height)
}

// DstRect returns the destination rectangle in viewport space.
func (b BlitOp) DstRect() image.Rectangle {
	return image.Rect(b.DstX, b.DstY, b.DstX+b.Width, b.DstY+b.Height)
}

// Frame is one timeline entry. Blits paint in list order; later blits
// overwrite earlier ones.
type Frame struct {
	Delay float64 // milliseconds, as recorded
	Blits []BlitOp
}

// Timeline is a non-empty ordered list of frames plus the viewport size and
// optional per-frame cursor positions.
type Timeline struct {
	Width  int
	Height int
	Frames []Frame
	Cursor []Vec2 // may be shorter than Frames
}

// NumFrames returns the number of frames in the timeline.
func (t *Timeline) NumFrames() int {
	return len(t.Frames)
}

// RunTime returns the recorded duration of one loop, excluding the last
// frame's delay (which is replaced by the repeat delay during playback).
func (t *Timeline) RunTime(cfg Config) time.Duration {
	var total time.Duration
	for i := 0; i < len(t.Frames)-1; i++ {
		total += cfg.frameDelay(t.Frames[i])
	}
	return total
}

// Default playback options.
const (
	DefaultTimescale   = 1.0
	DefaultRepeatDelay = 1.0
)

// Config holds per-animation playback options.
type Config struct {
	// Timescale divides every recorded frame delay. Must be > 0.
	Timescale float64
	// RepeatDelay is the pause in seconds after the last frame before looping
	// back to frame 0. Must be >= 0; zero loops immediately.
	RepeatDelay float64
}

// DefaultConfig returns the default playback options (timescale 1, one
// second repeat delay).
func DefaultConfig() Config {
	return Config{Timescale: DefaultTimescale, RepeatDelay: DefaultRepeatDelay}
}

// Validate reports whether the options are usable.
func (c Config) Validate() error {
	if !(c.Timescale > 0) || math.IsInf(c.Timescale, 0) {
		return fmt.Errorf("blitcast: timescale must be > 0, got %v", c.Timescale)
	}
	if !(c.RepeatDelay >= 0) || math.IsInf(c.RepeatDelay, 0) {
		return fmt.Errorf("blitcast: repeat delay must be >= 0, got %v", c.RepeatDelay)
	}
	return nil
}

// frameDelay converts a recorded frame delay to a scheduling delay.
func (c Config) frameDelay(f Frame) time.Duration {
	return secondsToDuration(f.Delay / (1000 * c.Timescale))
}

// repeatDelay returns the loop pause as a scheduling delay.
func (c Config) repeatDelay() time.Duration {
	return secondsToDuration(c.RepeatDelay)
}

// secondsToDuration rounds to millisecond precision.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}

// Errors reported while preparing animations. Each is wrapped with context;
// test with errors.Is.
var (
	ErrMissingSource     = errors.New("blitcast: placeholder has no src")
	ErrDataNotFound      = errors.New("blitcast: animation data not found")
	ErrMalformedTimeline = errors.New("blitcast: malformed timeline")
	ErrAtlasBounds       = errors.New("blitcast: blit outside atlas")
	ErrAtlasLoad         = errors.New("blitcast: atlas load failed")
	ErrResponseTooLarge  = errors.New("blitcast: response too large")
)
