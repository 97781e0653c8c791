package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/gordonklaus/portaudio"
	"golang.org/x/sync/errgroup"
)

// Capture parameters. The calibration window, start timeout, and utterance
// cap are fixed; there is no per-call tuning.
const (
	sampleRate  = 16000
	chunkFrames = 1600 // 100 ms per chunk

	ambientWindow = 500 * time.Millisecond
	startTimeout  = 15 * time.Second
	maxUtterance  = 45 * time.Second
	endSilence    = 700 * time.Millisecond

	// energyFloor keeps the trigger threshold sane in very quiet rooms.
	energyFloor = 150.0
)

// Recognizer captures microphone audio and transcribes it with Google Cloud
// Speech-to-Text. Authentication uses Application Default Credentials.
type Recognizer struct {
	client *speech.Client
	warn   func(msg string)
}

// NewRecognizer creates a Recognizer. warn receives user-facing messages for
// the non-fatal failure modes; nil disables reporting.
func NewRecognizer(ctx context.Context, warn func(msg string)) (*Recognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	if warn == nil {
		warn = func(string) {}
	}
	return &Recognizer{client: client, warn: warn}, nil
}

// Close releases the speech client connection.
func (r *Recognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// CaptureSpokenAnswer blocks on the microphone, waits for speech, records one
// utterance, and transcribes it. It returns the recognized text, or an empty
// string on any failure after reporting the cause through warn.
func (r *Recognizer) CaptureSpokenAnswer(ctx context.Context) string {
	var pcm []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pcm, err = recordUtterance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		r.warn(fmt.Sprintf("Microphone error: %v", err))
		return ""
	}
	if len(pcm) == 0 {
		r.warn("No speech detected.")
		return ""
	}

	text, err := r.recognize(ctx, pcm)
	if err != nil {
		r.warn(fmt.Sprintf("Speech recognition service unavailable: %v", err))
		return ""
	}
	if text == "" {
		r.warn("Could not understand your response.")
		return ""
	}
	return text
}

// recognize performs one synchronous batch recognition over LINEAR16 PCM.
func (r *Recognizer) recognize(ctx context.Context, pcm []byte) (string, error) {
	resp, err := r.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: sampleRate,
			LanguageCode:    "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// recordUtterance opens the default input device and returns one utterance as
// 16-bit little-endian PCM. It calibrates against ambient noise, waits up to
// startTimeout for speech to begin, then records until endSilence of quiet or
// the maxUtterance cap.
func recordUtterance(ctx context.Context) ([]byte, error) {
	in := make([]int16, chunkFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(in), in)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	readChunk := func() ([]int16, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		chunk := make([]int16, len(in))
		copy(chunk, in)
		return chunk, nil
	}

	// Ambient-noise calibration.
	ambientChunks := int(ambientWindow / (100 * time.Millisecond))
	var ambient float64
	for i := 0; i < ambientChunks; i++ {
		chunk, err := readChunk()
		if err != nil {
			return nil, err
		}
		ambient += rms(chunk)
	}
	ambient /= float64(ambientChunks)
	threshold := speechThreshold(ambient)

	// Wait for speech to begin.
	var utterance []int16
	started := false
	startDeadline := time.Now().Add(startTimeout)
	for !started {
		if time.Now().After(startDeadline) {
			return nil, nil // no speech, not an error
		}
		chunk, err := readChunk()
		if err != nil {
			return nil, err
		}
		if rms(chunk) >= threshold {
			started = true
			utterance = append(utterance, chunk...)
		}
	}

	// Record until sustained silence or the utterance cap.
	silentChunks := 0
	endSilenceChunks := int(endSilence / (100 * time.Millisecond))
	maxChunks := int(maxUtterance / (100 * time.Millisecond))
	for len(utterance)/chunkFrames < maxChunks {
		chunk, err := readChunk()
		if err != nil {
			return nil, err
		}
		utterance = append(utterance, chunk...)
		if rms(chunk) < threshold {
			silentChunks++
			if silentChunks >= endSilenceChunks {
				break
			}
		} else {
			silentChunks = 0
		}
	}

	return pcmBytes(utterance), nil
}

// speechThreshold derives the voice-trigger level from the calibrated ambient
// energy, clamped to a floor for silent rooms.
func speechThreshold(ambient float64) float64 {
	return math.Max(ambient*1.5, energyFloor)
}

// rms computes the root-mean-square energy of a sample chunk.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// pcmBytes converts samples to 16-bit little-endian PCM.
func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
