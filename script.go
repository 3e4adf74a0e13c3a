package blitcast

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Target string  `json:"target,omitempty"` // source key; empty means every controller
	Label  string  `json:"label,omitempty"`
	MS     float64 `json:"ms,omitempty"`
}

// scriptFile is the top-level JSON structure for a script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script is a headless sequence of playback actions and captures:
//
//	{"steps": [
//	  {"action": "load"},
//	  {"action": "wait", "ms": 1500},
//	  {"action": "pause", "target": "inspect-element"},
//	  {"action": "screenshot", "label": "paused"},
//	  {"action": "resume"}
//	]}
//
// Actions: load (wait for pending fetches), wait, next (advance to the
// earliest scheduled step), pause, resume, restart, stop, screenshot.
type Script struct {
	steps []scriptStep
}

// LoadScript parses and validates a JSON script.
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "load", "next", "pause", "resume", "restart", "stop", "screenshot":
		case "wait":
			if st.MS < 0 {
				return nil, fmt.Errorf("parse script: step %d: negative wait", i)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Len returns the number of steps.
func (s *Script) Len() int {
	return len(s.steps)
}

// Run executes the script against the page's controllers, advancing clock
// for waits. Screenshots are written to dir; their paths are returned in
// order.
func (s *Script) Run(clock *Clock, page *Page, dir string) ([]string, error) {
	var shots []string
	for _, st := range s.steps {
		switch st.Action {
		case "load":
			clock.Flush()
		case "wait":
			clock.Advance(time.Duration(st.MS * float64(time.Millisecond)))
		case "next":
			if at, ok := clock.NextDeadline(); ok {
				clock.Advance(at - clock.Now())
			}
		case "screenshot":
			for _, c := range targets(page, st.Target) {
				path, err := c.Capture(dir, st.Label)
				if err != nil {
					return shots, err
				}
				shots = append(shots, path)
			}
		default:
			for _, c := range targets(page, st.Target) {
				switch st.Action {
				case "pause":
					c.Pause()
				case "resume":
					c.Resume()
				case "restart":
					c.Start()
				case "stop":
					c.Stop()
				}
			}
		}
	}
	return shots, nil
}

func targets(page *Page, src string) []*Controller {
	all := page.Controllers()
	if src == "" {
		return all
	}
	var out []*Controller
	for _, c := range all {
		if c.Name == src {
			out = append(out, c)
		}
	}
	return out
}
