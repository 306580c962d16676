package wavfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-wav"
)

// Buffer is a fully decoded mono recording. It is immutable once
// returned; every analysis stage reads it without copying.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Duration   float64
}

// Reader is what the RIFF chunk walker needs from its source; files
// and bytes.Readers both satisfy it.
type Reader interface {
	io.Reader
	io.ReaderAt
}

// Decode reads a whole WAV stream into a mono float32 buffer,
// mean-mixing multi-channel input. The pipeline never receives a
// partial buffer: any decode error fails the request.
func Decode(r Reader) (Buffer, error) {
	var blank Buffer

	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return blank, errors.New("Error parsing wav header... " + err.Error())
	}
	if format.SampleRate == 0 {
		return blank, errors.New("Error parsing wav header... sample rate is 0")
	}

	channels := int(format.NumChannels)
	var samples []float32
	for {
		batch, err := reader.ReadSamples(4096)
		for _, s := range batch {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += reader.FloatValue(s, uint(ch))
			}
			samples = append(samples, float32(sum/float64(channels)))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return blank, errors.New("Error reading wav samples... " + err.Error())
		}
	}

	rate := int(format.SampleRate)
	return Buffer{
		Samples:    samples,
		SampleRate: rate,
		Duration:   float64(len(samples)) / float64(rate),
	}, nil
}

func DecodeFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("Error opening wav file... %s", err.Error())
	}
	defer f.Close()
	return Decode(f)
}
