package app

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"figstats/adapters/excel"
	"figstats/domain/figure"
	"figstats/internal/config"
	"figstats/internal/errors"
)

var skewed = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}

func newService(t *testing.T) (*FigureService, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewFigureService(zap.NewNop(), m, config.Default().PipelineConfig), m
}

func TestFigureService_Density(t *testing.T) {
	svc, m := newService(t)
	report, err := svc.Density(context.Background(), DensityRequest{
		Values:   []float64{1.2, math.NaN(), 2.3, 2.9, 3.1, 4.8},
		GridSize: 64,
	})
	require.NoError(t, err)
	assert.Len(t, report.Rows, 64)
	assert.Equal(t, 5, report.N)
	_, err = uuid.Parse(report.ReportID)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(PipelineDensity, "ok")))

	_, err = svc.Density(context.Background(), DensityRequest{Values: []float64{3, 3, 3}})
	assert.True(t, errors.HasCode(err, errors.CodeDegenerateSample))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(PipelineDensity, "degenerate_sample")))
}

func TestFigureService_QuantileDefaults(t *testing.T) {
	svc, _ := newService(t)
	report, err := svc.Quantile(context.Background(), QuantileRequest{Values: skewed})
	require.NoError(t, err)
	assert.Equal(t, figure.DistNormal, report.Distribution)
	assert.Equal(t, figure.LineQuartile, report.Line)
	assert.Equal(t, 0.95, report.Confidence)
	assert.Equal(t, 10, report.N)

	report, err = svc.Quantile(context.Background(), QuantileRequest{
		Values: skewed, Distribution: "exp", Params: []float64{0.5}, Line: "robust", Confidence: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, figure.DistExponential, report.Distribution)
	assert.Equal(t, figure.LineRobust, report.Line)

	_, err = svc.Quantile(context.Background(), QuantileRequest{Values: skewed, Distribution: "cauchy"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	_, err = svc.Quantile(context.Background(), QuantileRequest{Values: skewed, Line: "lowess"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestFigureService_Transform(t *testing.T) {
	svc, m := newService(t)
	report, err := svc.Transform(context.Background(), TransformRequest{Values: skewed})
	require.NoError(t, err)
	assert.Equal(t, figure.FamilyBoxCox, report.Family)
	assert.Equal(t, figure.CombineStouffer, report.Combine)
	assert.GreaterOrEqual(t, report.Lambda, -2.0)
	assert.LessOrEqual(t, report.Lambda, 2.0)

	require.NotNil(t, report.Before)
	require.NotNil(t, report.After)
	assert.Less(t, math.Abs(report.After.Skewness), math.Abs(report.Before.Skewness))

	lo, hi := 0.0, 1.0
	report, err = svc.Transform(context.Background(), TransformRequest{
		Values: skewed, Family: "yj", Combine: "fisher", LambdaMin: &lo, LambdaMax: &hi,
	})
	require.NoError(t, err)
	assert.Equal(t, figure.FamilyYeoJohnson, report.Family)
	assert.GreaterOrEqual(t, report.Lambda, 0.0)
	assert.LessOrEqual(t, report.Lambda, 1.0)

	_, err = svc.Transform(context.Background(), TransformRequest{Values: skewed, Combine: "max"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues(PipelineTransform, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(PipelineTransform, "invalid_input")))
}

func TestFigureService_Apply(t *testing.T) {
	svc, _ := newService(t)
	report, err := svc.Apply(context.Background(), ApplyRequest{Values: []float64{-1, 0, 1}, Lambda: 1, Start: 1})
	require.NoError(t, err)
	assert.Equal(t, figure.FamilyBoxCox, report.Family)
	assert.Equal(t, 2.0, report.Shift)
	assert.InDeltaSlice(t, []float64{0, 1, 2}, report.Values, 1e-12)
}

func TestFigureService_Describe(t *testing.T) {
	svc, m := newService(t)
	report, err := svc.Describe(context.Background(), skewed)
	require.NoError(t, err)
	assert.Equal(t, 10, report.N)
	assert.InDelta(t, 14.5, report.Mean, 1e-12)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(PipelineDescribe, "ok")))
}

func TestFigureService_Cancelled(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Density(ctx, DensityRequest{Values: skewed})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.Transform(ctx, TransformRequest{Values: skewed})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFigureService_Load(t *testing.T) {
	svc := NewFigureService(nil, nil, config.Default().PipelineConfig)
	values, err := svc.Load(excel.NewLineSource(strings.NewReader("1\n2\nNA\n")), "")
	require.NoError(t, err)
	assert.Len(t, values, 3)

	_, err = svc.Load(excel.NewLineSource(strings.NewReader("x\n")), "")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "no_valid_candidate", Outcome(errors.NoValidCandidate("x")))
}
