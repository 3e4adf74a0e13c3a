package blitcast

import (
	"fmt"
	"log"
	"os"
)

// globalDebug enables verbose logging and extra sanity checks. blitcast is
// single-threaded, so a plain bool is enough.
var globalDebug bool

// SetDebug enables or disables debug mode. When enabled, every loop restart
// and renderer pool growth is logged, and suspicious surface sizes are
// reported on stderr.
func SetDebug(enabled bool) {
	globalDebug = enabled
}

// Debug reports whether debug mode is enabled.
func Debug() bool {
	return globalDebug
}

// debugf logs only in debug mode.
func debugf(format string, args ...any) {
	if !globalDebug {
		return
	}
	log.Printf("blitcast: "+format, args...)
}

// debugMaxChildCount is the number of attached elements above which a surface
// is reported; recorded captures rarely need more than a few hundred.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[blitcast] warning: surface %q has %d elements (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}

// Stats holds per-controller playback counters.
type Stats struct {
	Steps  uint64 // frames stepped
	Cycles uint64 // completed loops
	Blits  uint64 // blits handed to the renderer
}

// String formats the counters for logs.
func (s Stats) String() string {
	return fmt.Sprintf("steps: %d | cycles: %d | blits: %d", s.Steps, s.Cycles, s.Blits)
}
