package systems

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sampleRate = 44100

// Global audio context - ebiten allows only one per process
var (
	globalAudioContext *audio.Context
	audioInitOnce      sync.Once
)

func initGlobalAudio() {
	audioInitOnce.Do(func() {
		globalAudioContext = audio.NewContext(sampleRate)
	})
}

type toneSpec struct {
	freq     float64
	duration time.Duration
}

// Every cue is a short synthesized tone; the course ships no sound files.
var tones = map[netconfig.Sound]toneSpec{
	netconfig.SoundJump:       {440, 60 * time.Millisecond},
	netconfig.SoundHook:       {330, 90 * time.Millisecond},
	netconfig.SoundLaser:      {880, 80 * time.Millisecond},
	netconfig.SoundBreak:      {160, 120 * time.Millisecond},
	netconfig.SoundDeath:      {110, 300 * time.Millisecond},
	netconfig.SoundWin:        {660, 400 * time.Millisecond},
	netconfig.SoundStart:      {520, 250 * time.Millisecond},
	netconfig.SoundTimeout:    {200, 400 * time.Millisecond},
	netconfig.SoundTimerAlert: {1000, 50 * time.Millisecond},
	netconfig.SoundPickup:     {760, 100 * time.Millisecond},
}

// SynthAudio plays audio cues as generated tones.
type SynthAudio struct {
	volume float64
	cache  map[netconfig.Sound][]byte
	music  bool

	log zerolog.Logger
}

func NewSynthAudio(volume float64) *SynthAudio {
	initGlobalAudio()
	return &SynthAudio{
		volume: volume,
		cache:  make(map[netconfig.Sound][]byte),
		log:    log.With().Str("component", "audio").Logger(),
	}
}

// MusicPlaying reports whether the match music cue is active.
func (a *SynthAudio) MusicPlaying() bool { return a.music }

func (a *SynthAudio) Play(sound netconfig.Sound) {
	switch sound {
	case netconfig.SoundMusicStart:
		a.music = true
		return
	case netconfig.SoundMusicStop:
		a.music = false
		return
	}

	spec, ok := tones[sound]
	if !ok || a.volume <= 0 {
		return
	}
	pcm, ok := a.cache[sound]
	if !ok {
		pcm = tone(spec.freq, spec.duration, sampleRate)
		a.cache[sound] = pcm
	}

	p := globalAudioContext.NewPlayerFromBytes(pcm)
	p.SetVolume(a.volume)
	p.Play()
	a.log.Debug().Int("sound", int(sound)).Msg("cue")
}

// tone renders a sine wave as 16-bit little-endian stereo PCM with a linear
// fade out so cues do not click.
func tone(freq float64, d time.Duration, rate int) []byte {
	n := int(int64(rate) * int64(d) / int64(time.Second))
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		fade := 1 - float64(i)/float64(n)
		v := int16(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)) * fade * math.MaxInt16 * 0.5)
		binary.LittleEndian.PutUint16(buf[4*i:], uint16(v))
		binary.LittleEndian.PutUint16(buf[4*i+2:], uint16(v))
	}
	return buf
}
