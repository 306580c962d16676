package wavfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/youpy/go-wav"
)

// encodeWAV renders float samples as 16-bit mono PCM.
func encodeWAV(samples []float64, sampleRate int) []byte {
	raw := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(raw, binary.LittleEndian, int16(s*math.MaxInt16))
	}

	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(len(samples)), 1, uint32(sampleRate), 16)
	writer.Write(raw.Bytes())
	return buf.Bytes()
}

func TestDecodeRoundTripsMonoPCM(t *testing.T) {
	samples := make([]float64, 4410)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	buf, err := Decode(bytes.NewReader(encodeWAV(samples, 44100)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(buf.SampleRate, 44100)
	assert.Len(buf.Samples, len(samples))
	assert.InDelta(buf.Duration, 0.1, 1e-6)
	for i := 0; i < len(samples); i += 441 {
		assert.InDelta(float64(buf.Samples[i]), samples[i], 0.001)
	}
}

func TestDecodeFileRoundTrips(t *testing.T) {
	samples := make([]float64, 2205)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*220*float64(i)/44100)
	}
	path := filepath.Join(t.TempDir(), "take.wav")
	assert := assert.New(t)
	assert.NoError(os.WriteFile(path, encodeWAV(samples, 44100), 0644))

	buf, err := DecodeFile(path)
	assert.NoError(err)
	assert.Equal(buf.SampleRate, 44100)
	assert.Len(buf.Samples, len(samples))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not a wav file"))

	assert := assert.New(t)
	assert.Error(err)
	assert.Contains(err.Error(), "Error parsing wav header")
}

func TestDecodeFileMissingPath(t *testing.T) {
	_, err := DecodeFile("/nonexistent/take.wav")

	assert := assert.New(t)
	assert.Error(err)
}
