package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/melodex/midifile"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/pipeline"
	"github.com/jsphweid/melodex/wavfile"
)

var (
	transcribeKey      string
	transcribeTempo    float64
	transcribeQuant    string
	transcribeBeats    int
	transcribeSnap     bool
	transcribeJSONPath string
)

func init() {
	transcribeCmd.Flags().StringVar(&transcribeKey, "key", "", "key signature (detected when empty)")
	transcribeCmd.Flags().Float64Var(&transcribeTempo, "tempo", 0, "BPM override (estimated when 0)")
	transcribeCmd.Flags().StringVar(&transcribeQuant, "quantization", string(model.Sixteenth), "finest allowed duration")
	transcribeCmd.Flags().IntVar(&transcribeBeats, "beats-per-measure", 4, "beats per measure")
	transcribeCmd.Flags().BoolVar(&transcribeSnap, "snap", false, "snap pitches to exact semitones")
	transcribeCmd.Flags().StringVar(&transcribeJSONPath, "json", "", "also write the full analysis as JSON")
	rootCmd.AddCommand(transcribeCmd)
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <in.wav> <out.mid>",
	Short: "Transcribes a recording to MIDI",
	Long:  `Transcribes a monophonic WAV recording to a quantized MIDI file.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := transcribe(args[0], args[1]); err != nil {
			logrus.Fatal(err)
		}
	},
}

func transcribe(inPath, outPath string) error {
	buf, err := wavfile.DecodeFile(inPath)
	if err != nil {
		return err
	}

	opts := pipeline.DefaultOptions()
	opts.Key = transcribeKey
	opts.TempoOverride = transcribeTempo
	opts.MinQuantization = model.DurationSymbol(transcribeQuant)
	opts.BeatsPerMeasure = transcribeBeats
	opts.SnapPitch = transcribeSnap

	res, err := pipeline.Run(buf, opts, func(stage string, fraction float64) {
		logrus.WithField("stage", stage).Debugf("%3.0f%%", fraction*100)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"request": res.RequestId,
		"notes":   len(res.Notes),
		"bpm":     res.Tempo.BPM,
		"key":     res.KeyName,
	}).Info("analysis complete")
	if res.Tempo.Confidence == 0 {
		logrus.Warn("too few onsets for tempo estimation, using 120 BPM")
	}

	if transcribeJSONPath != "" {
		if err := writeAnalysisJSON(transcribeJSONPath, res); err != nil {
			return err
		}
	}

	return midifile.ExportFile(outPath, res.Notes, nil, res.Tempo.BPM, transcribeBeats)
}

func writeAnalysisJSON(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
