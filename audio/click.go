package audio

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"markestedt/hyperspace/engine"
)

const (
	sampleRate = 44100
	clickFreq  = 1800.0
	clickDur   = 0.012
	clickVol   = 0.25
	clickDecay = 400.0
)

// Clicker plays a short tick when the engine enters hyper mode. The
// playback device is opened once and kept running so a click starts with
// no device setup latency.
type Clicker struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	tick     []byte

	// read by the audio callback
	playing atomic.Pointer[[]byte]
	pos     atomic.Uint32
}

// NewClicker creates a clicker with a pre-initialized playback device
func NewClicker() (*Clicker, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	c := &Clicker{
		malgoCtx: ctx,
		tick:     generateTick(sampleRate, clickFreq, clickDur, clickVol, clickDecay),
	}

	if err := c.initDevice(); err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return c, nil
}

func (c *Clicker) initDevice() error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = sampleRate
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(c.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: c.onData,
	})
	if err != nil {
		return err
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return err
	}

	c.device = device
	return nil
}

// onData fills the output buffer from the current click, or with silence
func (c *Clicker) onData(pOutput, _ []byte, frameCount uint32) {
	samples := c.playing.Load()
	if n := fillFrom(samples, &c.pos, pOutput[:frameCount*2]); n == 0 && samples != nil {
		// leave a click started meanwhile alone
		c.playing.CompareAndSwap(samples, nil)
	}
}

// fillFrom copies the unplayed part of samples into out, advancing pos, and
// zero-fills the rest. It returns the number of sample bytes copied.
func fillFrom(samples *[]byte, pos *atomic.Uint32, out []byte) int {
	n := 0
	if samples != nil {
		p := pos.Load()
		if int(p) < len(*samples) {
			n = copy(out, (*samples)[p:])
			pos.Store(p + uint32(n))
		}
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return n
}

// Click starts the tick, restarting it if one is already playing. It never
// blocks.
func (c *Clicker) Click() {
	tick := c.tick
	c.pos.Store(0)
	c.playing.Store(&tick)
}

func (c *Clicker) OnTransition(from, to engine.State) {
	if to == engine.HyperMode {
		c.Click()
	}
}

func (c *Clicker) OnAction(a engine.Action) {}

// Close releases audio resources
func (c *Clicker) Close() error {
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.malgoCtx != nil {
		c.malgoCtx.Uninit()
		c.malgoCtx.Free()
		c.malgoCtx = nil
	}
	return nil
}

// generateTick renders a decaying sine as little-endian 16-bit mono PCM
func generateTick(sampleRate int, freq, duration, volume, decay float64) []byte {
	n := int(float64(sampleRate) * duration)
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		sample := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		buf[i*2] = byte(sample)
		buf[i*2+1] = byte(sample >> 8)
	}
	return buf
}
