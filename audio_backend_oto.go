// audio_backend_oto.go - oto v3 audio output implementation

/*
audio_backend_oto.go - AI sample sink backed by oto

Implements AudioOutput (ai.go) as an oto.Player fed by a byte ring
buffer: QueueSamples appends big-endian 16-bit stereo PCM drained from
RDRAM by the AI DMA engine, and oto's callback-driven Read pulls from
the ring on its own goroutine. Grounded on the teacher's OtoPlayer in
audio_backend_oto.go (atomic/mutex split between the hot Read path and
setup/control). Libraries: github.com/ebitengine/oto/v3.
*/

package main

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoAudioOutput queues PCM byte buffers and serves them to oto's
// player goroutine through a simple bounded ring.
type OtoAudioOutput struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	ring   []byte
	maxRing int
}

// NewOtoAudioOutput opens an oto context at the AI's configured sample
// rate (stereo, 16-bit signed PCM matches the N64's native AI format).
func NewOtoAudioOutput(sampleRate int) (*OtoAudioOutput, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	out := &OtoAudioOutput{ctx: ctx, maxRing: 1 << 20}
	out.player = ctx.NewPlayer(out)
	out.player.Play()
	return out, nil
}

// QueueSamples implements AudioOutput: append drained AI DMA bytes to
// the ring, dropping the oldest data if the consumer falls behind
// rather than blocking the emulated machine's cycle loop.
func (o *OtoAudioOutput) QueueSamples(pcm []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ring = append(o.ring, pcm...)
	if excess := len(o.ring) - o.maxRing; excess > 0 {
		o.ring = o.ring[excess:]
	}
}

// Read implements io.Reader for oto.Player: N64 source data is
// big-endian but oto.FormatSignedInt16LE wants little-endian samples,
// so each 16-bit sample pair is byte-swapped on the way out.
func (o *OtoAudioOutput) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(p)
	if n > len(o.ring) {
		n = len(o.ring)
	}
	for i := 0; i+1 < n; i += 2 {
		p[i], p[i+1] = o.ring[i+1], o.ring[i]
	}
	o.ring = o.ring[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (o *OtoAudioOutput) Close() error {
	o.player.Close()
	return nil
}
