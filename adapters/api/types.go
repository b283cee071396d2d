package api

import (
	"encoding/json"
	"math"

	"figstats/app"
	"figstats/domain/figure"
)

// Float encodes NaN and +/-Inf as JSON null
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Values is a request sample where null entries are missing observations
type Values []*float64

// Floats converts nulls to NaN
func (v Values) Floats() []float64 {
	out := make([]float64, len(v))
	for i, p := range v {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	return out
}

// DensityRequest is the body of POST /api/v1/density
type DensityRequest struct {
	Values    Values   `json:"values" validate:"required,min=1"`
	Bandwidth float64  `json:"bandwidth" validate:"gte=0"`
	GridSize  int      `json:"grid_size" validate:"omitempty,gte=2,lte=100000"`
	Cut       *float64 `json:"cut" validate:"omitempty,gte=0"`
}

// QuantileRequest is the body of POST /api/v1/qq
type QuantileRequest struct {
	Values       Values    `json:"values" validate:"required,min=1"`
	Distribution string    `json:"distribution"`
	Params       []float64 `json:"params"`
	Line         string    `json:"line"`
	Confidence   float64   `json:"confidence" validate:"omitempty,gt=0,lt=1"`
}

// TransformRequest is the body of POST /api/v1/transform
type TransformRequest struct {
	Values    Values   `json:"values" validate:"required,min=1"`
	Family    string   `json:"family"`
	LambdaMin *float64 `json:"lambda_min"`
	LambdaMax *float64 `json:"lambda_max"`
	Combine   string   `json:"combine"`
	Start     float64  `json:"start" validate:"gte=0"`
}

// ApplyRequest is the body of POST /api/v1/transform/apply
type ApplyRequest struct {
	Values Values   `json:"values" validate:"required,min=1"`
	Family string   `json:"family"`
	Lambda *float64 `json:"lambda" validate:"required"`
	Start  float64  `json:"start" validate:"gte=0"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type densityRow struct {
	EvalPoint     Float `json:"eval_point"`
	ObsDensity    Float `json:"obs_density"`
	ObsLower      Float `json:"obs_lower"`
	ObsUpper      Float `json:"obs_upper"`
	NormalDensity Float `json:"normal_density"`
	NormalLower   Float `json:"normal_lower"`
	NormalUpper   Float `json:"normal_upper"`
}

// DensityResponse is a density band table
type DensityResponse struct {
	ReportID string       `json:"report_id"`
	N        int          `json:"n"`
	Rows     []densityRow `json:"rows"`
}

// NewDensityResponse converts a service report for the wire
func NewDensityResponse(r *app.DensityReport) DensityResponse {
	rows := make([]densityRow, len(r.Rows))
	for i, d := range r.Rows {
		rows[i] = densityRow{
			EvalPoint:     Float(d.EvalPoint),
			ObsDensity:    Float(d.ObsDensity),
			ObsLower:      Float(d.ObsLower),
			ObsUpper:      Float(d.ObsUpper),
			NormalDensity: Float(d.NormalDensity),
			NormalLower:   Float(d.NormalLower),
			NormalUpper:   Float(d.NormalUpper),
		}
	}
	return DensityResponse{ReportID: r.ReportID, N: r.N, Rows: rows}
}

type quantileRow struct {
	Observed    Float `json:"observed"`
	Theoretical Float `json:"theoretical"`
	Fitted      Float `json:"fitted"`
	Lower       Float `json:"lower"`
	Upper       Float `json:"upper"`
}

// QuantileResponse is a quantile comparison table
type QuantileResponse struct {
	ReportID     string                    `json:"report_id"`
	N            int                       `json:"n"`
	Distribution figure.DistributionFamily `json:"distribution"`
	Line         figure.LineMethod         `json:"line"`
	Confidence   float64                   `json:"confidence"`
	Intercept    Float                     `json:"intercept"`
	Slope        Float                     `json:"slope"`
	Rows         []quantileRow             `json:"rows"`
}

// NewQuantileResponse converts a service report for the wire
func NewQuantileResponse(r *app.QuantileReport) QuantileResponse {
	rows := make([]quantileRow, len(r.Rows))
	for i, q := range r.Rows {
		rows[i] = quantileRow{
			Observed:    Float(q.Observed),
			Theoretical: Float(q.Theoretical),
			Fitted:      Float(q.Fitted),
			Lower:       Float(q.Lower),
			Upper:       Float(q.Upper),
		}
	}
	return QuantileResponse{
		ReportID:     r.ReportID,
		N:            r.N,
		Distribution: r.Distribution,
		Line:         r.Line,
		Confidence:   r.Confidence,
		Intercept:    Float(r.Intercept),
		Slope:        Float(r.Slope),
		Rows:         rows,
	}
}

// ApplyResponse is a transformed sample
type ApplyResponse struct {
	ReportID string             `json:"report_id"`
	Family   figure.PowerFamily `json:"family"`
	Lambda   float64            `json:"lambda"`
	Shift    float64            `json:"shift"`
	Values   []Float            `json:"values"`
}

// NewApplyResponse converts a service report for the wire
func NewApplyResponse(r *app.ApplyReport) ApplyResponse {
	values := make([]Float, len(r.Values))
	for i, v := range r.Values {
		values[i] = Float(v)
	}
	return ApplyResponse{ReportID: r.ReportID, Family: r.Family, Lambda: r.Lambda, Shift: r.Shift, Values: values}
}

// DistributionInfo describes one reference family
type DistributionInfo struct {
	Name   figure.DistributionFamily `json:"name"`
	Params []string                  `json:"params"`
}

// DescribeRequest is the body of POST /api/v1/describe
type DescribeRequest struct {
	Values Values `json:"values" validate:"required,min=1"`
}

// DescribeResponse holds summary statistics. Skewness and kurtosis are
// null for samples too small or constant.
type DescribeResponse struct {
	ReportID string  `json:"report_id"`
	N        int     `json:"n"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"sd"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness Float   `json:"skewness"`
	Kurtosis Float   `json:"excess_kurtosis"`
	Outliers int     `json:"outliers"`
}

// NewDescribeResponse converts a service report for the wire
func NewDescribeResponse(r *app.DescribeReport) DescribeResponse {
	return DescribeResponse{
		ReportID: r.ReportID,
		N:        r.N,
		Missing:  r.Missing,
		Mean:     r.Mean,
		StdDev:   r.StdDev,
		Min:      r.Min,
		Q25:      r.Q25,
		Median:   r.Median,
		Q75:      r.Q75,
		Max:      r.Max,
		Skewness: Float(r.Skewness),
		Kurtosis: Float(r.Kurtosis),
		Outliers: r.Outliers,
	}
}
