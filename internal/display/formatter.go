// Package display renders frames for a terminal or log consumer.
package display

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"serialterm/internal/model"
)

const clockLayout = "15:04:05.000"

// Config controls how frames are rendered
type Config struct {
	Format     model.Format // representation to show: ascii, hex or both
	Timestamps bool         // prefix each frame with its wall-clock time
	ShowTiming bool         // include the inter-frame delay in the prefix
	Filter     string       // regex; frames whose ASCII form does not match are hidden
}

// Formatter renders frames according to a fixed configuration. An invalid
// filter expression is reported once at construction and then ignored, so a
// typo never hides traffic.
type Formatter struct {
	cfg    Config
	filter *regexp.Regexp
}

// New compiles the configuration into a formatter
func New(cfg Config, logger *zap.Logger) *Formatter {
	f := &Formatter{cfg: cfg}
	if cfg.Filter != "" {
		re, err := regexp.Compile(cfg.Filter)
		if err != nil {
			logger.Warn("Invalid display filter, showing all frames",
				zap.String("filter", cfg.Filter), zap.Error(err))
		} else {
			f.filter = re
		}
	}
	return f
}

// Render returns the display line for frame and whether it should be shown
// at all. Hidden frames still flow through capture and the bus; filtering
// is a display concern only.
func (f *Formatter) Render(frame *model.Frame) (string, bool) {
	if f.filter != nil && !f.filter.MatchString(frame.ASCII) {
		return "", false
	}

	var sb strings.Builder
	if f.cfg.Timestamps {
		sb.WriteByte('[')
		sb.WriteString(frame.Timestamp.Format(clockLayout))
		if f.cfg.ShowTiming {
			sb.WriteByte(' ')
			sb.WriteString(formatDelay(frame.InterFrameDelay))
		}
		sb.WriteString("] ")
	} else if f.cfg.ShowTiming {
		sb.WriteString(formatDelay(frame.InterFrameDelay))
		sb.WriteByte(' ')
	}

	if frame.Direction == model.DirectionOut {
		sb.WriteString("TX: ")
	}

	switch f.cfg.Format {
	case model.FormatHex:
		sb.WriteString(frame.Hex)
	case model.FormatBoth:
		sb.WriteString(frame.ASCII)
		sb.WriteString("  [")
		sb.WriteString(frame.Hex)
		sb.WriteByte(']')
	default:
		sb.WriteString(frame.ASCII)
	}
	return sb.String(), true
}

// formatDelay renders an inter-frame delay as "+12.3ms", switching to
// seconds above one second.
func formatDelay(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("+%.3fs", d.Seconds())
	}
	return fmt.Sprintf("+%.1fms", float64(d)/float64(time.Millisecond))
}
