package loaders

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
)

// ResampleQuality is handed to beep.Resample when variants differ in
// sample rate.
const ResampleQuality = 4

// SoundConfig sets the sample rate all variants are brought to. Zero
// keeps the rate of the first variant.
type SoundConfig struct {
	SampleRate beep.SampleRate
}

// Sound is a set of decoded variants of one sound effect, played at
// random to avoid repetition.
type Sound struct {
	Variants []*beep.Buffer
	Format   beep.Format
}

// Variant returns a streamer over the i-th variant.
func (s *Sound) Variant(i int) beep.StreamSeeker {
	b := s.Variants[i]
	return b.Streamer(0, b.Len())
}

// Duration returns the length of the i-th variant.
func (s *Sound) Duration(i int) time.Duration {
	return s.Format.SampleRate.D(s.Variants[i].Len())
}

// SoundLoader reads the variants "<path>_<i>.wav" or "<path>_<i>.ogg".
// A path with an extension is loaded as the only variant.
type SoundLoader struct {
	Log logrus.FieldLogger
}

func (l *SoundLoader) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

// Load implements asset.Loader.
func (l *SoundLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	cfg, err := configOf(req, SoundConfig{})
	if err != nil {
		return asset.Commit{}, err
	}

	var files []string
	switch strings.ToLower(path.Ext(req.Path)) {
	case ".wav", ".ogg":
		files = []string{req.Path}
	default:
		if files, err = probePages(r, req.Path, ".wav", ".ogg"); err != nil {
			return asset.Commit{}, err
		}
	}

	sound := &Sound{Format: beep.Format{SampleRate: cfg.SampleRate}}
	for _, file := range files {
		data, err := r.ReadFile(file)
		if err != nil {
			return asset.Commit{}, err
		}
		stream, format, err := decodeSound(file, data)
		if err != nil {
			return asset.Commit{}, fmt.Errorf("decoding %s: %w", file, err)
		}

		if sound.Format.SampleRate == 0 {
			sound.Format.SampleRate = format.SampleRate
		}
		if sound.Format.NumChannels == 0 {
			sound.Format.NumChannels = format.NumChannels
			sound.Format.Precision = format.Precision
		}

		buf := beep.NewBuffer(sound.Format)
		if format.SampleRate != sound.Format.SampleRate {
			l.log().WithFields(logrus.Fields{
				"file": file,
				"from": int(format.SampleRate),
				"to":   int(sound.Format.SampleRate),
			}).Debug("resampling sound variant")
			buf.Append(beep.Resample(ResampleQuality, format.SampleRate, sound.Format.SampleRate, stream))
		} else {
			buf.Append(stream)
		}
		if err := stream.Err(); err != nil {
			stream.Close()
			return asset.Commit{}, fmt.Errorf("decoding %s: %w", file, err)
		}
		stream.Close()
		sound.Variants = append(sound.Variants, buf)
	}
	return asset.Keep(asset.KindSound, req.Alias, sound), nil
}

func decodeSound(file string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if strings.EqualFold(path.Ext(file), ".ogg") {
		return vorbis.Decode(ioutil.NopCloser(bytes.NewReader(data)))
	}
	return wav.Decode(bytes.NewReader(data))
}
