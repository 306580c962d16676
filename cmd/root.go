package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "melodex",
	Short: "Monophonic audio to notation",
	Long:  `Turns a monophonic recording or MIDI file into quantized notes, harmony voices, and chords.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
