package loaders_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/loaders"
)

// wavFile returns a mono 16 bit PCM file holding a sine tone.
func wavFile(rate, samples int) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(36+2*samples))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint32(rate))
	binary.Write(&b, le, uint32(2*rate))
	binary.Write(&b, le, uint16(2))
	binary.Write(&b, le, uint16(16))
	b.WriteString("data")
	binary.Write(&b, le, uint32(2*samples))
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * 440 * float64(i) / float64(rate))
		binary.Write(&b, le, int16(v*math.MaxInt16/2))
	}
	return b.Bytes()
}

func TestSoundLoader(t *testing.T) {
	c := qt.New(t)

	e := newEnv(c, map[string][]byte{
		"sounds/step_0.wav": wavFile(8000, 800),
		"sounds/step_1.wav": wavFile(16000, 1600),
		"sounds/step_3.wav": wavFile(8000, 800),
	})
	e.queue.Enqueue(asset.KindSound, "sounds/step", "step", nil)
	e.queue.Enqueue(asset.KindSound, "sounds/step_1.wav", "single", loaders.SoundConfig{SampleRate: 16000})
	c.Assert(e.load(), qt.IsNil)

	sound, ok := asset.Lookup[*loaders.Sound](e.store, asset.KindSound, "step")
	c.Assert(ok, qt.IsTrue)
	c.Assert(sound.Variants, qt.HasLen, 2)
	c.Assert(sound.Format.SampleRate, qt.Equals, beep.SampleRate(8000))
	c.Assert(sound.Format.NumChannels, qt.Equals, 1)
	c.Assert(sound.Variants[0].Len(), qt.Equals, 800)
	c.Assert(sound.Duration(0), qt.Equals, 100*time.Millisecond)

	// the 16kHz variant is brought down to the rate of the first
	resampled := sound.Variants[1].Len()
	c.Assert(resampled > 700 && resampled < 820, qt.IsTrue, qt.Commentf("resampled to %d samples", resampled))

	samples := make([][2]float64, 10)
	n, ok := sound.Variant(0).Stream(samples)
	c.Assert(ok, qt.IsTrue)
	c.Assert(n, qt.Equals, 10)

	single, ok := asset.Lookup[*loaders.Sound](e.store, asset.KindSound, "single")
	c.Assert(ok, qt.IsTrue)
	c.Assert(single.Variants, qt.HasLen, 1)
	c.Assert(single.Variants[0].Len(), qt.Equals, 1600)
}

func TestSoundLoaderErrors(t *testing.T) {
	c := qt.New(t)

	e := newEnv(c, map[string][]byte{
		"sounds/noise_0.wav": []byte("RIFF but not really"),
	})

	e.queue.Enqueue(asset.KindSound, "sounds/none", "none", nil)
	err := e.load()
	c.Assert(errors.Is(err, asset.ErrResourceNotFound), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `.*sounds/none_0.*`)

	e.queue.Enqueue(asset.KindSound, "sounds/noise", "noise", nil)
	c.Assert(e.load(), qt.ErrorMatches, `.*decoding sounds/noise_0.wav.*`)
}
