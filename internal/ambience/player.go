// Package ambience plays an optional looping soundtrack and reports its
// loudness so the scene can pulse its glow along with it.
package ambience

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

const (
	ringSize        = 8192
	windowSize      = 2048
	smoothingFactor = 0.6
)

// ErrUnsupported is returned for files that are not wav, mp3 or flac.
var ErrUnsupported = errors.New("unsupported file type")

// Extensions lists the patterns the player can decode, for file dialogs.
var Extensions = []string{"*.wav", "*.mp3", "*.flac"}

// Decode picks a decoder by file extension.
func Decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Player loops one track at a time through the system speaker.
type Player struct {
	logger *zap.Logger

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *Tap
	env      Envelope

	initDone bool
	paused   bool
}

func NewPlayer(logger *zap.Logger) *Player {
	return &Player{
		logger: logger,
		env:    Envelope{Smoothing: smoothingFactor},
	}
}

// Load stops the current track and starts looping path.
func (p *Player) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}
	streamer, format, err := Decode(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	// streamer -> loop -> tap -> ctrl
	t := NewTap(beep.Loop(-1, streamer), ringSize)
	ctrl := &beep.Ctrl{Streamer: t}

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !p.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.initDone = true
	case p.format.SampleRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	p.closeCurrent()

	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = ctrl
	p.tap = t
	p.paused = false

	speaker.Play(ctrl)
	p.logger.Info("Soundtrack loaded",
		zap.String("path", path),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Duration("length", format.SampleRate.D(streamer.Len())))
	return nil
}

// Playing reports whether a track is loaded.
func (p *Player) Playing() bool { return p.ctrl != nil }

// TogglePause pauses or resumes playback.
func (p *Player) TogglePause() {
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	speaker.Unlock()
}

// Level samples the tap and returns the smoothed loudness in [0, 1]. It
// decays to zero while paused or with nothing loaded.
func (p *Player) Level() float64 {
	if p.tap == nil || p.paused {
		return p.env.Update(make([][2]float64, 1))
	}
	return p.env.Update(p.tap.Snapshot(windowSize))
}

// Close stops playback and releases the file.
func (p *Player) Close() {
	if p.initDone {
		speaker.Clear()
	}
	p.closeCurrent()
	p.ctrl = nil
	p.tap = nil
}

func (p *Player) closeCurrent() {
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		_ = p.file.Close()
		p.file = nil
	}
}
