package ports

// SampleSource yields one numeric column with missing values as NaN
type SampleSource interface {
	ReadSample(column string) ([]float64, error)
}
