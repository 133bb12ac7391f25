package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/MairusuPawa/ultrastar"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <dir>",
	Short: "Serve a song directory over HTTP",
	Long:  `Lists header-parsed songs at /songs and fully parsed songs at /songs/{file}.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serve(args[0])
	},
}

type songSummary struct {
	File   string `json:"file"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre,omitempty"`
}

func serve(dir string) {
	if !strings.HasSuffix(dir, string(os.PathSeparator)) {
		dir += string(os.PathSeparator)
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/songs", handleList(dir)).Methods("GET")
	router.HandleFunc("/songs/{file}", handleSong(dir)).Methods("GET")

	handler := cors.Default().Handler(router)
	log.Printf("serving songs from %s on %s", dir, serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, handler))
}

func handleList(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			http.Error(w, "could not read song directory", http.StatusInternalServerError)
			return
		}
		summaries := make([]songSummary, 0)
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
				continue
			}
			// Each request parses its own Song instances; nothing is
			// shared between handlers.
			song := ultrastar.NewSong(dir, entry.Name())
			if err := song.Reload(false); err != nil {
				var perr *ultrastar.ParseError
				if !errors.As(err, &perr) || !perr.Silent {
					log.Printf("skipping %s: %v", entry.Name(), err)
				}
				continue
			}
			summaries = append(summaries, songSummary{
				File:   entry.Name(),
				Title:  song.Title,
				Artist: song.Artist,
				Genre:  song.Genre,
			})
		}
		json.NewEncoder(w).Encode(summaries)
	}
}

func handleSong(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := mux.Vars(r)["file"]
		if strings.ContainsAny(file, "/\\") || file != filepath.Base(file) {
			http.Error(w, "invalid song name", http.StatusBadRequest)
			return
		}
		song := ultrastar.NewSong(dir, file)
		if err := song.Reload(true); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.Error(w, "song not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		json.NewEncoder(w).Encode(song)
	}
}
