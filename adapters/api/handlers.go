package api

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"figstats/adapters/stats/quantile"
	"figstats/app"
	"figstats/domain/figure"
	"figstats/internal/errors"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleDistributions(w http.ResponseWriter, r *http.Request) {
	families := figure.DistributionFamilies()
	out := make([]DistributionInfo, 0, len(families))
	for _, f := range families {
		params, err := quantile.Params(f)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		out = append(out, DistributionInfo{Name: f, Params: params})
	}
	render.JSON(w, r, out)
}

func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	var req DensityRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.figures.Density(r.Context(), app.DensityRequest{
		Values:    req.Values.Floats(),
		Bandwidth: req.Bandwidth,
		GridSize:  req.GridSize,
		Cut:       req.Cut,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, NewDensityResponse(report))
}

func (s *Server) handleQuantile(w http.ResponseWriter, r *http.Request) {
	var req QuantileRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.figures.Quantile(r.Context(), app.QuantileRequest{
		Values:       req.Values.Floats(),
		Distribution: req.Distribution,
		Params:       req.Params,
		Line:         req.Line,
		Confidence:   req.Confidence,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, NewQuantileResponse(report))
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.figures.Transform(r.Context(), app.TransformRequest{
		Values:    req.Values.Floats(),
		Family:    req.Family,
		LambdaMin: req.LambdaMin,
		LambdaMax: req.LambdaMax,
		Combine:   req.Combine,
		Start:     req.Start,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.figures.Apply(r.Context(), app.ApplyRequest{
		Values: req.Values.Floats(),
		Family: req.Family,
		Lambda: *req.Lambda,
		Start:  req.Start,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, NewApplyResponse(report))
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req DescribeRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.figures.Describe(r.Context(), req.Values.Floats())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, NewDescribeResponse(report))
}

// decode reads and validates a JSON body, answering 400 itself on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, ErrorResponse{Code: errors.CodeInvalidInput, Message: "request body too large"})
			return false
		}
		s.respondError(w, r, errors.Wrap(errors.InvalidInput(err.Error()), "invalid JSON body"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, r, errors.InvalidInput(err.Error()))
		return false
	}
	return true
}

// StatusFor maps an error code to an HTTP status
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeDegenerateSample, errors.CodeNoValidCandidate:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: errors.GetCode(err), Message: err.Error()})
}
