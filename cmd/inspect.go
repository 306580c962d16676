package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/melodex/midifile"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <in.mid>",
	Short: "Inspects a midi file",
	Long:  `Inspects a midi file: tempo plus every imported note.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	res, err := midifile.Import(path)
	if err != nil {
		panic(err)
	}
	fmt.Printf("bpm: %v\n", res.BPM)
	fmt.Printf("notes: %v\n", len(res.Notes))
	for _, n := range res.Notes {
		fmt.Printf("midi=%d start=%.3f dur=%.3f vel=%d\n", n.MidiNumber, n.StartTime, n.Duration, n.Velocity)
	}
}
