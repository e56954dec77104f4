package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

const (
	// AnimationMargin is how far a frame blit reaches past the
	// destination entry, it covers the extruded border.
	AnimationMargin = 2

	// DefaultFrameDuration applies when neither the frame nor the
	// extractor name a duration.
	DefaultFrameDuration = 100 * time.Millisecond
)

// FrameSpec is one line of an animation descriptor.
// A zero Duration means the animation default.
type FrameSpec struct {
	Name     string
	Duration time.Duration
}

// ParseDescriptor decodes an animation descriptor: a JSON array of
// [name] or [name, durationMillis] arrays.
func ParseDescriptor(data []byte) ([]FrameSpec, error) {
	var lines []json.RawMessage
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}

	specs := make([]FrameSpec, 0, len(lines))
	for i, line := range lines {
		var fields []json.RawMessage
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, fmt.Errorf("%w: frame %d is not an array", ErrMalformedDescriptor, i)
		}
		if len(fields) < 1 || len(fields) > 2 {
			return nil, fmt.Errorf("%w: frame %d has %d fields", ErrMalformedDescriptor, i, len(fields))
		}

		var spec FrameSpec
		if err := json.Unmarshal(fields[0], &spec.Name); err != nil || spec.Name == "" {
			return nil, fmt.Errorf("%w: frame %d has no name", ErrMalformedDescriptor, i)
		}
		if len(fields) == 2 && string(fields[1]) != "null" {
			var millis float64
			if err := json.Unmarshal(fields[1], &millis); err != nil {
				return nil, fmt.Errorf("%w: frame %d duration: %v", ErrMalformedDescriptor, i, err)
			}
			if millis < 0 || math.IsInf(millis, 0) {
				return nil, fmt.Errorf("%w: frame %d has duration %v", ErrMalformedDescriptor, i, millis)
			}
			spec.Duration = time.Duration(millis * float64(time.Millisecond))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Frame is one step of a TextureAnimation. Source is in the source
// atlas with y measured from the bottom row, Dest is in the destination
// atlas with y measured from the top.
type Frame struct {
	Name     string
	Source   image.Rectangle
	Dest     image.Rectangle
	Duration time.Duration
}

// TextureAnimation plays frames from a private source atlas into an
// entry of a shared destination atlas. Playback itself belongs to the
// animator driving it; Advance only keeps the book.
type TextureAnimation struct {
	Entry           string
	Source          *Atlas
	Dest            *Atlas
	Frames          []Frame
	DefaultDuration time.Duration
	Current         int
	Timer           time.Duration
}

// FrameDuration returns how long frame i is shown.
func (t *TextureAnimation) FrameDuration(i int) time.Duration {
	if d := t.Frames[i].Duration; d > 0 {
		return d
	}
	if t.DefaultDuration > 0 {
		return t.DefaultDuration
	}
	return DefaultFrameDuration
}

// CurrentFrame returns the frame being shown.
func (t *TextureAnimation) CurrentFrame() Frame {
	return t.Frames[t.Current]
}

// Advance moves the timer forward by dt and steps through as many
// frames as elapsed. It reports whether the current frame changed.
func (t *TextureAnimation) Advance(dt time.Duration) bool {
	if len(t.Frames) == 0 || dt <= 0 {
		return false
	}
	start := t.Current
	t.Timer += dt
	for {
		d := t.FrameDuration(t.Current)
		if t.Timer < d {
			break
		}
		t.Timer -= d
		t.Current = (t.Current + 1) % len(t.Frames)
	}
	return t.Current != start
}

// Prepare uploads the source atlas. The destination belongs to the
// atlas asset and is prepared with it.
func (t *TextureAnimation) Prepare(up gfx.Uploader, opts gfx.TextureOptions) error {
	return t.Source.Prepare(up, opts)
}

// Release frees the source atlas texture.
func (t *TextureAnimation) Release(up gfx.Uploader) {
	t.Source.Release(up)
}

// Extractor turns animated atlas entries into TextureAnimations.
type Extractor struct {
	Packer          Packer
	DefaultDuration time.Duration
	Log             logrus.FieldLogger
}

func (x Extractor) log() logrus.FieldLogger {
	if x.Log == nil {
		return logrus.StandardLogger()
	}
	return x.Log
}

// Extract builds the animation of entry in dest. frames holds the frame
// images by name and is consumed. With no specs the base image is the
// only frame. Declared frames without an image are logged and skipped.
func (x Extractor) Extract(entry string, dest *Atlas, base *raw.Image, frames map[string]*raw.Image, specs []FrameSpec) (*TextureAnimation, error) {
	px, ok := dest.Pixels(entry)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntry, entry)
	}
	destRect := px.Inset(-AnimationMargin).Intersect(dest.Canvas.Bounds())

	if len(specs) == 0 {
		if base == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoFrames, entry)
		}
		specs = []FrameSpec{{Name: entry}}
		frames = map[string]*raw.Image{entry: base}
	}

	builder := NewBuilder(x.Packer)
	builder.Log = x.log()
	used := make([]FrameSpec, 0, len(specs))
	for _, spec := range specs {
		img, ok := frames[spec.Name]
		if !ok || img == nil {
			x.log().WithFields(logrus.Fields{
				"entry": entry,
				"frame": spec.Name,
			}).Warn("animation frame not found, skipping")
			continue
		}
		if !builder.Has(spec.Name) {
			builder.Add(spec.Name, img)
		}
		used = append(used, spec)
	}
	if len(used) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, entry)
	}

	source, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("atlas: animation %s: %w", entry, err)
	}

	height := source.Canvas.Height
	anim := &TextureAnimation{
		Entry:           entry,
		Source:          source,
		Dest:            dest,
		Frames:          make([]Frame, len(used)),
		DefaultDuration: x.DefaultDuration,
	}
	for i, spec := range used {
		sp, _ := source.Pixels(spec.Name)
		anim.Frames[i] = Frame{
			Name:     spec.Name,
			Source:   image.Rect(sp.Min.X, height-sp.Max.Y, sp.Max.X, height-sp.Min.Y),
			Dest:     destRect,
			Duration: spec.Duration,
		}
	}
	return anim, nil
}
