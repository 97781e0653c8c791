// Package speech provides the two audio adapters the interview flow uses:
// a Transcriber that captures one spoken answer from the microphone and a
// Speaker that reads text aloud. Both are best-effort; every failure is
// non-fatal and the caller keeps the ability to fall back to typed input.
package speech

import (
	"context"

	"github.com/gordonklaus/portaudio"
)

// Transcriber captures a single spoken answer. An empty string signals
// failure (no audio detected, unrecognized speech, service unavailable,
// device error); the caller re-prompts.
type Transcriber interface {
	CaptureSpokenAnswer(ctx context.Context) string
}

// Speaker renders text as audio. Speak blocks until playback completes.
type Speaker interface {
	Speak(ctx context.Context, text string)
	Close() error
}

// Init initializes the process-wide audio host. Call once at startup before
// constructing a Recognizer or PiperSpeaker.
func Init() error {
	return portaudio.Initialize()
}

// Terminate releases the process-wide audio host.
func Terminate() {
	_ = portaudio.Terminate()
}

// NoopSpeaker is the Speaker used after speech-output initialization fails:
// the failure is reported once and every Speak call is silently a no-op.
type NoopSpeaker struct{}

// Speak does nothing.
func (NoopSpeaker) Speak(context.Context, string) {}

// Close does nothing.
func (NoopSpeaker) Close() error { return nil }
