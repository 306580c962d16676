package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/melodex/chords"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/keydetect"
	"github.com/jsphweid/melodex/midifile"
	"github.com/jsphweid/melodex/model"
)

var (
	harmonizeStyle string
	harmonizeKey   string
	harmonizeBeats int
)

func init() {
	harmonizeCmd.Flags().StringVar(&harmonizeStyle, "style", string(harmony.ThirdsBelow), "harmony style")
	harmonizeCmd.Flags().StringVar(&harmonizeKey, "key", "", "key signature (detected when empty)")
	harmonizeCmd.Flags().IntVar(&harmonizeBeats, "beats-per-measure", 4, "beats per measure")
	rootCmd.AddCommand(harmonizeCmd)
}

var harmonizeCmd = &cobra.Command{
	Use:   "harmonize <in.mid> <out.mid>",
	Short: "Adds harmony voices",
	Long:  `Reads a melody from MIDI, generates harmony voices, writes melody plus voices back out.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := harmonize(args[0], args[1]); err != nil {
			logrus.Fatal(err)
		}
	},
}

func harmonize(inPath, outPath string) error {
	imported, err := midifile.Import(inPath)
	if err != nil {
		return err
	}

	keyName := harmonizeKey
	if keyName == "" {
		keyName = "C"
		if guess, ok := keydetect.FromNotes(imported.Notes); ok {
			keyName = guess.Name
			logrus.WithField("key", keyName).Info("detected key")
		}
	}

	style := harmony.Style(harmonizeStyle)
	var progression []model.ChordEvent
	if style == harmony.Chordal {
		progression, err = chords.Suggest(imported.Notes, keyName, harmonizeBeats, imported.BPM)
		if err != nil {
			return err
		}
	}

	voices, err := harmony.Generate(imported.Notes, style, keyName, progression, imported.BPM)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"voices": len(voices), "style": harmonizeStyle}).Info("harmony generated")
	return midifile.ExportFile(outPath, imported.Notes, voices, imported.BPM, harmonizeBeats)
}
