package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dumpFormat string

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "json", "Output format: json or yaml")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Fully parse a song and dump it",
	Long:  `Parses the song including all notes and writes the result to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0], true)
		if err != nil {
			return err
		}
		switch dumpFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(song)
		case "yaml":
			return yaml.NewEncoder(os.Stdout).Encode(song)
		}
		return fmt.Errorf("unknown format %q", dumpFormat)
	},
}
