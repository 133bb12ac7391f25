package main

import (
	"fmt"

	"github.com/MairusuPawa/ultrastar"
	"github.com/spf13/cobra"
)

var infoFull bool

func init() {
	infoCmd.Flags().BoolVar(&infoFull, "full", false, "Parse the note body and print track details")
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print song metadata",
	Long:  `Parses the song header (and with --full the note body) and prints a summary.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0], infoFull)
		if err != nil {
			return err
		}
		printSong(song, infoFull)
		return nil
	},
}

func printSong(song *ultrastar.Song, full bool) {
	fmt.Printf("Song: %s\n", song.Str())
	if song.Genre != "" {
		fmt.Printf("Genre: %s\n", song.Genre)
	}
	if song.Edition != "" {
		fmt.Printf("Edition: %s\n", song.Edition)
	}
	if song.Creator != "" {
		fmt.Printf("Creator: %s\n", song.Creator)
	}
	if song.Language != "" {
		fmt.Printf("Language: %s\n", song.Language)
	}
	for stem, file := range song.Music {
		fmt.Printf("Music (%s): %s\n", stem, file)
	}
	if song.B0rkedTracks {
		fmt.Println("Warning: some tracks contained malformed notes")
	}
	if !full {
		return
	}
	for _, name := range song.GetVocalTrackNames() {
		track := song.GetVocalTrack(name)
		fmt.Printf("\nTrack %s: %d notes", name, len(track.Notes))
		if track.NoteMin <= track.NoteMax {
			fmt.Printf(", pitch range %d..%d", track.NoteMin, track.NoteMax)
		}
		fmt.Println()
		if lyrics := track.Lyrics(); lyrics != "" {
			fmt.Println(lyrics)
		}
	}
}
