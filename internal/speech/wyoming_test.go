package speech

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWyomingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	err := writeEvent(&buf, wyomingEvent{
		Type: "audio-chunk",
		Data: map[string]any{"rate": 22050},
	}, payload)
	require.NoError(t, err)

	evt, got, err := readEvent(&buf)
	require.NoError(t, err)
	assert.Equal(t, "audio-chunk", evt.Type)
	assert.Equal(t, float64(22050), evt.Data["rate"])
	assert.Equal(t, payload, got)
}

func TestWyomingRoundTrip_NoPayload(t *testing.T) {
	var buf bytes.Buffer

	err := writeEvent(&buf, wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{"text": "hello"},
	}, nil)
	require.NoError(t, err)

	evt, payload, err := readEvent(&buf)
	require.NoError(t, err)
	assert.Equal(t, "synthesize", evt.Type)
	assert.Equal(t, "hello", evt.Data["text"])
	assert.Nil(t, payload)
}

func TestWyomingHeaderFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, wyomingEvent{Type: "audio-stop"}, nil))

	header, _, found := strings.Cut(buf.String(), "\n")
	require.True(t, found)
	assert.Regexp(t, `^\d+ 0$`, header)
}

func TestReadEvent_InvalidHeader(t *testing.T) {
	buf := bytes.NewBufferString("not-a-header\n")
	_, _, err := readEvent(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid wyoming header")
}

func TestReadEvent_TruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, wyomingEvent{Type: "audio-chunk"}, []byte{1, 2, 3}))

	truncated := bytes.NewBuffer(buf.Bytes()[:buf.Len()-2])
	_, _, err := readEvent(truncated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading payload")
}
