package main

import (
	"os"
	"path/filepath"

	"github.com/MairusuPawa/ultrastar"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ultrastar",
	Short: "Tools for UltraStar karaoke song files",
	Long:  `Parse, inspect, convert and serve UltraStar TXT song files.`,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

// loadSong splits a file path into the song directory and filename and
// parses it, header-only or fully.
func loadSong(path string, full bool) (*ultrastar.Song, error) {
	dir := filepath.Dir(path) + string(os.PathSeparator)
	song := ultrastar.NewSong(dir, filepath.Base(path))
	if err := song.Reload(full); err != nil {
		return nil, err
	}
	return song, nil
}
