package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/melodex/chords"
	"github.com/jsphweid/melodex/keydetect"
	"github.com/jsphweid/melodex/midifile"
)

var (
	suggestKey   string
	suggestBeats int
)

func init() {
	suggestCmd.Flags().StringVar(&suggestKey, "key", "", "key signature (detected when empty)")
	suggestCmd.Flags().IntVar(&suggestBeats, "beats-per-measure", 4, "beats per measure")
	rootCmd.AddCommand(suggestCmd)
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <in.mid>",
	Short: "Suggests chords",
	Long:  `Suggests a chord-per-measure progression for a MIDI melody, printed as JSON.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := suggest(args[0]); err != nil {
			logrus.Fatal(err)
		}
	},
}

func suggest(path string) error {
	imported, err := midifile.Import(path)
	if err != nil {
		return err
	}

	keyName := suggestKey
	if keyName == "" {
		keyName = "C"
		if guess, ok := keydetect.FromNotes(imported.Notes); ok {
			keyName = guess.Name
		}
	}

	progression, err := chords.Suggest(imported.Notes, keyName, suggestBeats, imported.BPM)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(progression)
}
