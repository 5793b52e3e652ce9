// audio_backend_headless.go - no-op AudioOutput for tests and CI

package main

import "sync"

// HeadlessAudioOutput discards queued PCM but tracks byte totals so
// tests can assert AI drained buffers without needing a sound device.
type HeadlessAudioOutput struct {
	mu          sync.Mutex
	bytesQueued uint64
}

func NewHeadlessAudioOutput() *HeadlessAudioOutput {
	return &HeadlessAudioOutput{}
}

func (h *HeadlessAudioOutput) QueueSamples(pcm []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bytesQueued += uint64(len(pcm))
}

func (h *HeadlessAudioOutput) BytesQueued() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bytesQueued
}
