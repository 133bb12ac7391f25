package main

import (
	"fmt"
	"os"

	"github.com/MairusuPawa/ultrastar"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file> <out.mid>",
	Short: "Export vocal tracks as a General MIDI file",
	Long:  `Parses the song and writes its vocal tracks, with lyrics, as a standard MIDI file.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0], true)
		if err != nil {
			return err
		}
		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer out.Close()
		return ultrastar.ExportMIDI(song, out)
	},
}
