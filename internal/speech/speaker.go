package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"
	"golang.org/x/sync/errgroup"
)

// Defaults for a local Piper TTS server speaking the Wyoming protocol.
const (
	DefaultPiperEndpoint = "127.0.0.1:10200"
	DefaultPiperVoice    = "en_US-lessac-medium"

	speakTimeout = 60 * time.Second
)

// audioChunk is one run of PCM from the synthesizer, tagged with its format.
type audioChunk struct {
	rate     int
	channels int
	pcm      []byte
}

// PiperSpeaker renders text through a Piper neural TTS server and plays the
// result on the default output device. The speaker is process-wide: it is
// constructed once at startup, and construction probes the server so a dead
// endpoint is reported immediately rather than on first use.
type PiperSpeaker struct {
	endpoint string
	voice    string
}

// NewPiperSpeaker probes endpoint and returns a speaker bound to it.
// Empty endpoint or voice fall back to the defaults.
func NewPiperSpeaker(endpoint, voice string) (*PiperSpeaker, error) {
	if endpoint == "" {
		endpoint = DefaultPiperEndpoint
	}
	if voice == "" {
		voice = DefaultPiperVoice
	}

	conn, err := net.DialTimeout("tcp", endpoint, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to reach TTS server at %s: %w", endpoint, err)
	}
	_ = conn.Close()

	return &PiperSpeaker{endpoint: endpoint, voice: voice}, nil
}

// Speak synthesizes text and blocks until playback completes. It is
// fire-and-forget: any mid-call failure simply ends playback early.
func (p *PiperSpeaker) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", p.endpoint)
	if err != nil {
		return
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(speakTimeout))
	}

	// Producer streams synthesized chunks off the wire while the consumer
	// plays them, so long passages start sounding before synthesis finishes.
	chunks := make(chan audioChunk, 16)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(chunks)
		return streamSynthesis(gctx, conn, text, p.voice, chunks)
	})
	g.Go(func() error {
		return playChunks(chunks)
	})
	_ = g.Wait()
}

// Close is a no-op; connections are per-call.
func (p *PiperSpeaker) Close() error { return nil }

// streamSynthesis sends one synthesize event and forwards the resulting
// audio-chunk payloads, tagged with the format announced by audio-start.
// Sends honor ctx so a failed consumer cannot strand the producer on a full
// channel.
func streamSynthesis(ctx context.Context, conn io.ReadWriter, text, voice string, out chan<- audioChunk) error {
	err := writeEvent(conn, wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text": text,
			"voice": map[string]any{
				"name": voice,
			},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("sending synthesize event: %w", err)
	}

	rate, channels := 22050, 1
	for {
		evt, payload, err := readEvent(conn)
		if err != nil {
			return fmt.Errorf("reading event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if r, ok := evt.Data["rate"].(float64); ok {
				rate = int(r)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
		case "audio-chunk":
			if len(payload) > 0 {
				select {
				case out <- audioChunk{rate: rate, channels: channels, pcm: payload}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case "audio-stop":
			return nil
		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return fmt.Errorf("tts server error: %s", msg)
		}
	}
}

// playChunks drains synthesized audio into the default output device. The
// stream is opened lazily from the first chunk's format.
func playChunks(chunks <-chan audioChunk) error {
	var (
		stream *portaudio.Stream
		out    []int16
	)
	defer func() {
		if stream != nil {
			_ = stream.Stop()
			_ = stream.Close()
		}
	}()

	for chunk := range chunks {
		if stream == nil {
			out = make([]int16, chunkFrames)
			s, err := portaudio.OpenDefaultStream(0, chunk.channels, float64(chunk.rate), len(out), out)
			if err != nil {
				return fmt.Errorf("open output stream: %w", err)
			}
			if err := s.Start(); err != nil {
				_ = s.Close()
				return fmt.Errorf("start output stream: %w", err)
			}
			stream = s
		}

		samples := pcmSamples(chunk.pcm)
		for len(samples) > 0 {
			n := copy(out, samples)
			samples = samples[n:]
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if err := stream.Write(); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
		}
	}
	return nil
}

// pcmSamples converts 16-bit little-endian PCM to samples.
func pcmSamples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}
