package restserver

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"

	"github.com/chrissnell/heartseries/internal/report"
	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/source"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/chrissnell/heartseries/internal/storage/csvfile"
	"github.com/chrissnell/heartseries/pkg/responseformat"
	"github.com/google/uuid"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Analyze runs the full pipeline over an uploaded CSV and responds with the
// report
func (h *Handlers) Analyze(w http.ResponseWriter, req *http.Request) {
	rows, ok := h.readRows(w, req)
	if !ok {
		return
	}

	result, err := h.controller.pipeline.Run(rows)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	rep := report.Build(uuid.New().String(), result)
	if err := h.formatter.WriteResponse(w, req, rep, nil); err != nil {
		h.controller.logger.Errorf("error encoding report: %v", err)
	}
}

// Clean deduplicates and sorts an uploaded CSV and responds with the cleaned
// CSV
func (h *Handlers) Clean(w http.ResponseWriter, req *http.Request) {
	rows, ok := h.readRows(w, req)
	if !ok {
		return
	}

	s, err := series.Clean(rows, h.controller.pipeline.Options())
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	var buf bytes.Buffer
	if err := csvfile.Write(&buf, storage.Batch{Series: s}); err != nil {
		h.writeError(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// FHIR cleans an uploaded CSV and responds with its FHIR bundle. The patient
// query parameter overrides the configured patient id.
func (h *Handlers) FHIR(w http.ResponseWriter, req *http.Request) {
	rows, ok := h.readRows(w, req)
	if !ok {
		return
	}

	s, err := series.Clean(rows, h.controller.pipeline.Options())
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	patient := h.controller.patient
	if id := req.URL.Query().Get("patient"); id != "" {
		patient.ID = id
	}

	bundle, err := h.controller.transformer.Transform(s, patient)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	if err := h.formatter.WriteResponse(w, req, bundle, nil); err != nil {
		h.controller.logger.Errorf("error encoding bundle: %v", err)
	}
}

// Chart runs the full pipeline over an uploaded CSV and responds with a PNG
// chart of the segmented series
func (h *Handlers) Chart(w http.ResponseWriter, req *http.Request) {
	rows, ok := h.readRows(w, req)
	if !ok {
		return
	}

	result, err := h.controller.pipeline.Run(rows)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteChart(&buf, result); err != nil {
		h.writeError(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Health reports that the server is up
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{"status": "ok"}, nil)
}

// readRows parses the request body as CSV. On failure it writes a 400 and
// returns false.
func (h *Handlers) readRows(w http.ResponseWriter, req *http.Request) ([]series.Row, bool) {
	body := http.MaxBytesReader(w, req.Body, maxBodyBytes)
	defer body.Close()

	rows, err := source.ReadCSV(req.Context(), body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.formatter.WriteStatus(w, req, status, errorResponse{Error: err.Error(), Kind: "malformed_csv"}, nil)
		return nil, false
	}
	return rows, true
}

// writeError maps pipeline errors to 422 and everything else to 500
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.controller.logger.Errorf("request failed: %v", err)
	}
	h.formatter.WriteStatus(w, req, status, errorResponse{Error: err.Error(), Kind: kind}, nil)
}

func classify(err error) (int, string) {
	var (
		empty        series.EmptyInputError
		malformed    *series.MalformedTimestampError
		insufficient *series.InsufficientDataError
		invalid      *series.InvalidValueError
		conflict     *series.ConflictingReadingError
		parseErr     *csv.ParseError
	)
	switch {
	case errors.As(err, &empty):
		return http.StatusUnprocessableEntity, "empty_input"
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, "malformed_timestamp"
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, "invalid_value"
	case errors.As(err, &conflict):
		return http.StatusUnprocessableEntity, "conflicting_reading"
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "malformed_csv"
	}
	return http.StatusInternalServerError, ""
}
