package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/golang/glog"

	"github.com/goplus/stext/mod/module"
	"github.com/goplus/stext/pkgs/audiofile"
	"github.com/goplus/stext/pkgs/tempo"
	"github.com/goplus/stext/recipe"
	"github.com/goplus/stext/stretch"
)

// Error codes of the JSON error body.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeTooLarge        = "too_large"
	CodeInternal        = "internal"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		glog.Errorf("%s: %v", id, err)
	} else {
		glog.V(1).Infof("%s: %v", id, err)
	}
	writeJSON(w, status, &errorBody{Code: code, Message: err.Error(), RequestID: id})
}

// queryFloat returns the named query parameter, or 0 when absent.
func queryFloat(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func (s *Server) handleStretch(w http.ResponseWriter, r *http.Request) {
	var opts stretch.Options
	var err error
	if opts.TempoChange, err = queryFloat(r, "tempo"); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, err)
		return
	}
	if opts.PitchSemiTones, err = queryFloat(r, "pitch"); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, err)
		return
	}
	if opts.RateChange, err = queryFloat(r, "rate"); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, err)
		return
	}
	opts.Speech = r.URL.Query().Get("speech") != "false"

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, CodeTooLarge, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, err)
		return
	}

	var out []byte
	if pct := int(opts.TempoChange); float64(pct) == opts.TempoChange &&
		opts.PitchSemiTones == 0 && opts.RateChange == 0 && opts.Speech {
		out, err = stretch.Stretch(data, pct)
	} else {
		out, err = stretch.Process(data, opts)
	}
	if err != nil {
		status, code := http.StatusInternalServerError, CodeInternal
		if isClientError(err) {
			status, code = http.StatusBadRequest, CodeInvalidArgument
		}
		writeError(w, r, status, code, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)
}

func isClientError(err error) bool {
	for _, target := range []error{
		stretch.ErrInvalidTempo,
		stretch.ErrInvalidRate,
		stretch.ErrInvalidPitch,
		tempo.ErrInvalidParameter,
		audiofile.ErrUnsupportedFormat,
		audiofile.ErrUnsupportedBitDepth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type recipeBody struct {
	Settings     []string         `json:"settings"`
	Generators   []string         `json:"generators"`
	Requirements []module.Version `json:"requirements"`
	Values       recipe.Settings  `json:"values"`
	Layout       recipe.Folders   `json:"layout"`
}

// handleRecipe describes the recipe and its layout for the settings in
// the query, defaulting to the host.
func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	names := s.recipe.SettingNames()
	query := make(recipe.Settings, len(names))
	for _, name := range names {
		query[name] = r.URL.Query().Get(name)
	}
	values := recipe.HostSettings().Merge(query)
	writeJSON(w, http.StatusOK, &recipeBody{
		Settings:     names,
		Generators:   s.recipe.GeneratorNames(),
		Requirements: s.recipe.Requirements(),
		Values:       values,
		Layout:       s.recipe.Layout(values),
	})
}
