package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/pipeline"
	"github.com/MakikoOhashi/lexidrill/internal/slots"
	"github.com/MakikoOhashi/lexidrill/internal/target"
)

var validate = validator.New()

// ScoreRequest scores one set of components, optionally under caller weights.
type ScoreRequest struct {
	Components difficulty.Components `json:"components"`
	Weights    *difficulty.Weights   `json:"weights,omitempty"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeInto(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	weights := s.cfg.DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}

	result, err := difficulty.Score(req.Components, weights)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// TargetRequest estimates a difficulty target from 1-3 reference texts.
type TargetRequest struct {
	Sources []string `json:"sources" validate:"required,min=1,max=3"`
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := decodeInto(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, err)
		return
	}

	profile, err := s.estimator.Estimate(r.Context(), req.Sources)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// GenerateRequest is the request body shared by both generation endpoints.
type GenerateRequest struct {
	Source  string              `json:"source" validate:"required"`
	Hints   []slots.Hint        `json:"hints,omitempty"`
	Theme   string              `json:"theme,omitempty"`
	Target  *target.Profile     `json:"target,omitempty"`
	Weights *difficulty.Weights `json:"weights,omitempty"`
}

func (s *Server) handleGenerateCloze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGenerate(w, r)
	if !ok {
		return
	}
	result, err := s.engine.GenerateCloze(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGenerateChoice(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGenerate(w, r)
	if !ok {
		return
	}
	result, err := s.engine.GenerateChoice(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) decodeGenerate(w http.ResponseWriter, r *http.Request) (pipeline.Request, bool) {
	var req GenerateRequest
	if err := decodeInto(r, &req); err != nil {
		s.errorResponse(w, err)
		return pipeline.Request{}, false
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, err)
		return pipeline.Request{}, false
	}
	return pipeline.Request{
		Source:  req.Source,
		Hints:   req.Hints,
		Theme:   req.Theme,
		Target:  req.Target,
		Weights: req.Weights,
	}, true
}
