package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/melodex/chords"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/pipeline"
	"github.com/jsphweid/melodex/wavfile"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis API",
	Long:  `Serves the analysis API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleAnalyze runs the whole pipeline over a WAV request body.
// Optional query params: key, tempo, quantization, beats_per_measure.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "Could not read request body: "+err.Error())
		return
	}

	buf, err := wavfile.Decode(bytes.NewReader(reqBody))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	opts := pipeline.DefaultOptions()
	q := r.URL.Query()
	opts.Key = q.Get("key")
	if v := q.Get("quantization"); v != "" {
		opts.MinQuantization = model.DurationSymbol(v)
	}
	if v := q.Get("beats_per_measure"); v != "" {
		if beats, err := strconv.Atoi(v); err == nil && beats > 0 {
			opts.BeatsPerMeasure = beats
		}
	}
	if v := q.Get("tempo"); v != "" {
		if bpm, err := strconv.ParseFloat(v, 64); err == nil && bpm > 0 {
			opts.TempoOverride = bpm
		}
	}

	res, err := pipeline.Run(buf, opts, nil)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	contours := make([]model.DynamicContourInfo, 0, len(res.DynamicContours))
	for _, c := range res.DynamicContours {
		contours = append(contours, model.DynamicContourInfo{
			Kind:       string(c.Kind),
			StartIndex: c.StartIndex,
			EndIndex:   c.EndIndex,
		})
	}

	json.NewEncoder(w).Encode(model.AnalyzeResponse{
		RequestId:       res.RequestId,
		Tempo:           res.Tempo,
		Key:             res.Key,
		Notes:           res.Notes,
		Measures:        res.Measures,
		DynamicRangeDb:  res.DynamicRangeDB,
		DynamicContours: contours,
	})
}

// HandleHarmonize generates harmony voices for a posted melody.
func HandleHarmonize(w http.ResponseWriter, r *http.Request) {
	var input model.HarmonizeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, 400, "Could not unmarshal request body: "+err.Error())
		return
	}
	if input.Tempo <= 0 {
		input.Tempo = constants.FallbackBPM
	}
	if input.Key == "" {
		input.Key = "C"
	}

	voices, err := harmony.Generate(input.Notes, harmony.Style(input.Style), input.Key, input.Chords, input.Tempo)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	json.NewEncoder(w).Encode(model.HarmonizeResponse{Voices: voices})
}

// HandleChords suggests a chord-per-measure progression for a posted
// melody.
func HandleChords(w http.ResponseWriter, r *http.Request) {
	var input model.ChordsRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, 400, "Could not unmarshal request body: "+err.Error())
		return
	}
	if input.Tempo <= 0 {
		input.Tempo = constants.FallbackBPM
	}
	if input.BeatsPerMeasure <= 0 {
		input.BeatsPerMeasure = constants.DefaultBeatsPerMeasure
	}
	if input.Key == "" {
		input.Key = "C"
	}

	progression, err := chords.Suggest(input.Notes, input.Key, input.BeatsPerMeasure, input.Tempo)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	json.NewEncoder(w).Encode(model.ChordsResponse{Chords: progression})
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/harmonize", HandleHarmonize).Methods("POST")
	router.HandleFunc("/chords", HandleChords).Methods("POST")

	handler := cors.Default().Handler(router)
	addr := constants.GetServeAddr()
	logrus.WithField("addr", addr).Info("serving")
	logrus.Fatal(http.ListenAndServe(addr, handler))
}
