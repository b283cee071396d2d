package app

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"figstats/adapters/stats/density"
	"figstats/adapters/stats/quantile"
	"figstats/adapters/stats/transform"
	"figstats/domain/figure"
	"figstats/internal/config"
	"figstats/internal/errors"
	"figstats/internal/profiling"
	"figstats/ports"
)

// FigureService runs the three figure pipelines with configured defaults,
// logging, timing and counting every run
type FigureService struct {
	logger   *zap.Logger
	metrics  *Metrics
	defaults config.PipelineConfig
}

// NewFigureService creates a figure service. metrics may be nil.
func NewFigureService(logger *zap.Logger, metrics *Metrics, defaults config.PipelineConfig) *FigureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FigureService{
		logger:   logger.Named("figure"),
		metrics:  metrics,
		defaults: defaults,
	}
}

// DensityRequest defines the inputs of a density band. Zero values select
// the estimator defaults.
type DensityRequest struct {
	Values    []float64
	Bandwidth float64
	GridSize  int
	Cut       *float64
}

// DensityReport is a density band table
type DensityReport struct {
	ReportID string              `json:"report_id"`
	N        int                 `json:"n"`
	Rows     []figure.DensityRow `json:"rows"`
}

// QuantileRequest defines the inputs of a quantile comparison. Empty names
// select the configured defaults.
type QuantileRequest struct {
	Values       []float64
	Distribution string
	Params       []float64
	Line         string
	Confidence   float64
}

// QuantileReport is a quantile comparison table
type QuantileReport struct {
	ReportID string `json:"report_id"`
	N        int    `json:"n"`
	*figure.QuantileResult
}

// TransformRequest defines the inputs of a transform search. Empty or nil
// fields select the configured defaults.
type TransformRequest struct {
	Values    []float64
	Family    string
	LambdaMin *float64
	LambdaMax *float64
	Combine   string
	Start     float64
}

// TransformReport is the outcome of a transform search with the sample
// shape before and after the selected transform
type TransformReport struct {
	ReportID string        `json:"report_id"`
	N        int           `json:"n"`
	Before   *figure.Shape `json:"before,omitempty"`
	After    *figure.Shape `json:"after,omitempty"`
	*figure.SearchResult
}

// DescribeReport holds summary statistics of a sample
type DescribeReport struct {
	ReportID string `json:"report_id"`
	figure.Shape
}

// ApplyRequest defines a single transform to apply
type ApplyRequest struct {
	Values []float64
	Family string
	Lambda float64
	Start  float64
}

// ApplyReport holds a transformed sample
type ApplyReport struct {
	ReportID string             `json:"report_id"`
	Family   figure.PowerFamily `json:"family"`
	Lambda   float64            `json:"lambda"`
	Shift    float64            `json:"shift"`
	Values   []float64          `json:"values"`
}

// Density computes a density band with its matched normal curve
func (s *FigureService) Density(ctx context.Context, req DensityRequest) (report *DensityReport, err error) {
	id, done := s.begin(PipelineDensity, req.Values)
	defer func() { done(err) }()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	opts := []density.Option{}
	if req.Bandwidth != 0 {
		opts = append(opts, density.WithBandwidth(req.Bandwidth))
	}
	if req.GridSize != 0 {
		opts = append(opts, density.WithGridSize(req.GridSize))
	}
	if req.Cut != nil {
		opts = append(opts, density.WithCut(*req.Cut))
	}
	rows, err := density.Estimate(req.Values, opts...)
	if err != nil {
		return nil, err
	}
	return &DensityReport{ReportID: id, N: observed(req.Values), Rows: rows}, nil
}

// Quantile builds a quantile comparison table
func (s *FigureService) Quantile(ctx context.Context, req QuantileRequest) (report *QuantileReport, err error) {
	id, done := s.begin(PipelineQuantile, req.Values)
	defer func() { done(err) }()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	family, err := figure.ParseDistributionFamily(req.Distribution)
	if err != nil {
		return nil, err
	}
	line, err := figure.ParseLineMethod(firstNonEmpty(req.Line, s.defaults.QQLine))
	if err != nil {
		return nil, err
	}
	confidence := req.Confidence
	if confidence == 0 {
		confidence = s.defaults.QQConfidence
	}
	res, err := quantile.Build(req.Values,
		quantile.WithDistribution(family, req.Params...),
		quantile.WithLine(line),
		quantile.WithConfidence(confidence))
	if err != nil {
		return nil, err
	}
	return &QuantileReport{ReportID: id, N: len(res.Rows), QuantileResult: res}, nil
}

// Transform searches the lambda grid for the most normalizing transform
func (s *FigureService) Transform(ctx context.Context, req TransformRequest) (report *TransformReport, err error) {
	id, done := s.begin(PipelineTransform, req.Values)
	defer func() { done(err) }()

	family, err := figure.ParsePowerFamily(firstNonEmpty(req.Family, s.defaults.Family))
	if err != nil {
		return nil, err
	}
	combine, err := figure.ParseCombineMethod(firstNonEmpty(req.Combine, s.defaults.Combine))
	if err != nil {
		return nil, err
	}
	lo, hi := s.defaults.LambdaMin, s.defaults.LambdaMax
	if req.LambdaMin != nil {
		lo = *req.LambdaMin
	}
	if req.LambdaMax != nil {
		hi = *req.LambdaMax
	}

	res, err := transform.Search(ctx, req.Values,
		transform.WithFamily(family),
		transform.WithLambdaRange(lo, hi),
		transform.WithCombine(combine),
		transform.WithStart(s.start(req.Start)),
		transform.WithWorkers(s.defaults.Workers))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("transform selected",
		zap.String("report_id", id),
		zap.Float64("lambda", res.Lambda),
		zap.Float64("combined", res.Combined),
		zap.Int("discarded", res.Discarded))
	report = &TransformReport{ReportID: id, N: observed(req.Values), SearchResult: res}
	if before, err := profiling.Describe(req.Values); err == nil {
		report.Before = &before
	}
	if values, _, err := transform.Apply(req.Values, family, res.Lambda, s.start(req.Start)); err == nil {
		if after, err := profiling.Describe(values); err == nil {
			report.After = &after
		}
	}
	return report, nil
}

// Describe summarizes a sample
func (s *FigureService) Describe(ctx context.Context, values []float64) (report *DescribeReport, err error) {
	id, done := s.begin(PipelineDescribe, values)
	defer func() { done(err) }()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	shape, err := profiling.Describe(values)
	if err != nil {
		return nil, err
	}
	return &DescribeReport{ReportID: id, Shape: shape}, nil
}

// Apply transforms a sample with a fixed lambda
func (s *FigureService) Apply(ctx context.Context, req ApplyRequest) (report *ApplyReport, err error) {
	id, done := s.begin(PipelineApply, req.Values)
	defer func() { done(err) }()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	family, err := figure.ParsePowerFamily(firstNonEmpty(req.Family, s.defaults.Family))
	if err != nil {
		return nil, err
	}
	values, shift, err := transform.Apply(req.Values, family, req.Lambda, s.start(req.Start))
	if err != nil {
		return nil, err
	}
	return &ApplyReport{ReportID: id, Family: family, Lambda: req.Lambda, Shift: shift, Values: values}, nil
}

// Load reads a sample column from a source
func (s *FigureService) Load(src ports.SampleSource, column string) ([]float64, error) {
	values, err := src.ReadSample(column)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load sample")
	}
	s.logger.Debug("sample loaded", zap.String("column", column), zap.Int("values", len(values)))
	return values, nil
}

// begin stamps a report ID and returns the hook that logs and records the
// run once it finishes
func (s *FigureService) begin(pipeline string, values []float64) (string, func(error)) {
	id := uuid.NewString()
	start := time.Now()
	return id, func(err error) {
		s.metrics.observe(pipeline, start, err)
		fields := []zap.Field{
			zap.String("pipeline", pipeline),
			zap.String("report_id", id),
			zap.Int("values", len(values)),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			s.logger.Warn("pipeline failed", append(fields, zap.String("code", errors.GetCode(err)), zap.Error(err))...)
			return
		}
		s.logger.Info("pipeline finished", fields...)
	}
}

func (s *FigureService) start(v float64) float64 {
	if v != 0 {
		return v
	}
	return s.defaults.BoxCoxStart
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// observed counts non-missing values
func observed(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
