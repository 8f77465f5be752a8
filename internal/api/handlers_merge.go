package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docbind/internal/pipeline"
)

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)

	req, err := pipeline.DecodeRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Request{}, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return pipeline.Request{}, err
	}
	return req, nil
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		jsonStepError(w, err.Error(), pipeline.StepValidate, "", http.StatusBadRequest)
		return
	}

	res, err := s.merger.Merge(r.Context(), req)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run := s.merger.Runs().Get(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run.Snapshot())
}

// statusForStep maps a failed pipeline step to an HTTP status.
func statusForStep(step pipeline.Step) int {
	switch step {
	case pipeline.StepValidate:
		return http.StatusBadRequest
	case pipeline.StepFetch:
		return http.StatusBadGateway
	case pipeline.StepParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	step, url := pipeline.StepOf(err)
	code := statusForStep(step)

	log := s.requestLogger(r)
	if code >= http.StatusInternalServerError && code != http.StatusBadGateway {
		log.Error("merge failed", "step", step, "url", url, "error", err)
	} else {
		log.Warn("merge rejected", "step", step, "url", url, "error", err)
	}

	msg := err.Error()
	var se *pipeline.StepError
	if errors.As(err, &se) {
		msg = se.Err.Error()
	}
	jsonStepError(w, msg, step, url, code)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonStepError(w http.ResponseWriter, msg string, step pipeline.Step, url string, code int) {
	body := map[string]string{"error": msg, "step": string(step)}
	if url != "" {
		body["url"] = url
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
