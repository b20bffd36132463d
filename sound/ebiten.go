package sound

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"
)

const SampleRate = 44100

type decodeFunc func(sampleRate int, src io.Reader) (io.Reader, error)

var decoders = map[string]decodeFunc{
	".wav": func(rate int, src io.Reader) (io.Reader, error) { return wav.DecodeWithSampleRate(rate, src) },
	".mp3": func(rate int, src io.Reader) (io.Reader, error) { return mp3.DecodeWithSampleRate(rate, src) },
	".ogg": func(rate int, src io.Reader) (io.Reader, error) { return vorbis.DecodeWithSampleRate(rate, src) },
}

func decoderFor(path string) (decodeFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if d, ok := decoders[ext]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unsupported sound format %q", ext)
}

// EbitenBackend plays each sound on its own player and goroutine. Players
// are closed when they finish.
type EbitenBackend struct {
	ctx    *audio.Context
	logger *zap.Logger
	poll   time.Duration
}

func NewEbitenBackend(logger *zap.Logger) *EbitenBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(SampleRate)
	}
	return &EbitenBackend{ctx: ctx, logger: logger, poll: 50 * time.Millisecond}
}

func (b *EbitenBackend) Play(source string, volume float64) error {
	decode, err := decoderFor(source)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read sound: %w", err)
	}
	stream, err := decode(b.ctx.SampleRate(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode sound %q: %w", source, err)
	}
	player, err := b.ctx.NewPlayer(stream)
	if err != nil {
		return fmt.Errorf("sound player for %q: %w", source, err)
	}
	player.SetVolume(volume)
	player.Play()

	go func() {
		for player.IsPlaying() {
			time.Sleep(b.poll)
		}
		if err := player.Close(); err != nil {
			b.logger.Warn("failed to close sound player", zap.String("source", source), zap.Error(err))
		}
	}()
	return nil
}
