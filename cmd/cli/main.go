package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"figstats/adapters/excel"
	"figstats/app"
	"figstats/internal/config"
	"figstats/ports"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds what every subcommand needs once flags are parsed
type cli struct {
	in     io.Reader
	out    io.Writer
	file   string
	column string
	sheet  string
	format string

	verbose bool
	logger  *zap.Logger
	cfg     *config.Config
	figures *app.FigureService
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	rootCmd := &cobra.Command{
		Use:   "figstats",
		Short: "Density bands, quantile plots and normalizing transforms for figures",
		Long: `figstats computes the numeric tables behind distribution figures.

The sample is one numeric column of a CSV or XLSX file (--file, --column,
--sheet) or newline-separated numbers on stdin. Empty cells and NA are
treated as missing.

Example: figstats transform --file heights.csv --column cm --family yeojohnson`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.file, "file", "f", "", "CSV or XLSX input (stdin when empty)")
	rootCmd.PersistentFlags().StringVarP(&c.column, "column", "c", "", "Column name (first numeric column when empty)")
	rootCmd.PersistentFlags().StringVar(&c.sheet, "sheet", "", "XLSX sheet (first sheet when empty)")
	rootCmd.PersistentFlags().StringVarP(&c.format, "format", "o", "json", "Output format: json|csv")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(
		newDensityCmd(c),
		newQuantileCmd(c),
		newTransformCmd(c),
		newApplyCmd(c),
		newDescribeCmd(c),
	)
	return rootCmd
}

func (c *cli) init() error {
	if c.format != "json" && c.format != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", c.format)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = zap.NewNop()
	if c.verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
		if c.logger, err = cfg.NewLogger(); err != nil {
			return err
		}
	}
	c.figures = app.NewFigureService(c.logger, nil, cfg.PipelineConfig)
	return nil
}

func (c *cli) source() ports.SampleSource {
	if c.file == "" {
		return excel.NewLineSource(c.in)
	}
	return excel.NewDataReader(c.file, excel.WithSheet(c.sheet), excel.WithLogger(c.logger))
}

func (c *cli) sample() ([]float64, error) {
	return c.figures.Load(c.source(), c.column)
}

func newDensityCmd(c *cli) *cobra.Command {
	var bandwidth, cut float64
	var gridSize int

	cmd := &cobra.Command{
		Use:   "density",
		Short: "Kernel density with variability band and matched normal curve",
		Long: `Evaluate a Gaussian kernel density on a grid together with its
Bowman-Azzalini variability band, and a normal density with the same mean and
smoothed variance with its pointwise band.

Example: figstats density --file sample.csv --column x --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.sample()
			if err != nil {
				return err
			}
			req := app.DensityRequest{Values: values, Bandwidth: bandwidth, GridSize: gridSize}
			if cmd.Flags().Changed("cut") {
				req.Cut = &cut
			}
			report, err := c.figures.Density(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.writeDensity(report)
		},
	}

	cmd.Flags().Float64Var(&bandwidth, "bandwidth", 0, "Kernel bandwidth (Silverman's rule when 0)")
	cmd.Flags().IntVar(&gridSize, "grid-size", 0, "Evaluation points (512 when 0)")
	cmd.Flags().Float64Var(&cut, "cut", 3, "Grid extension beyond the data in bandwidths")
	return cmd
}

func newQuantileCmd(c *cli) *cobra.Command {
	var distribution, line string
	var params []float64
	var confidence float64

	cmd := &cobra.Command{
		Use:   "qq",
		Short: "Quantile comparison table with reference line and envelope",
		Long: `Match the ordered sample against quantiles of a reference distribution,
fit a reference line and compute a pointwise confidence envelope.

Distributions: norm, t, exp, unif, lnorm, chisq, gamma, weibull, laplace.
Parameters are positional, e.g. --distribution gamma --param 2 --param 0.5

Example: figstats qq --file sample.csv --distribution exp --line robust`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.sample()
			if err != nil {
				return err
			}
			report, err := c.figures.Quantile(cmd.Context(), app.QuantileRequest{
				Values:       values,
				Distribution: distribution,
				Params:       params,
				Line:         line,
				Confidence:   confidence,
			})
			if err != nil {
				return err
			}
			return c.writeQuantile(report)
		},
	}

	cmd.Flags().StringVar(&distribution, "distribution", "norm", "Reference distribution")
	cmd.Flags().Float64SliceVar(&params, "param", nil, "Distribution parameter, repeatable")
	cmd.Flags().StringVar(&line, "line", "", "Reference line: quartile|robust|none (configured default when empty)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Envelope coverage in (0,1) (configured default when 0)")
	return cmd
}

func newTransformCmd(c *cli) *cobra.Command {
	var family, combine string
	var lambdaMin, lambdaMax, start float64

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Search the power transform that makes the sample most normal",
		Long: `Try 50 evenly spaced lambdas of a Box-Cox or Yeo-Johnson transform, score
each standardized result with six normality tests and report the lambda with
the largest combined p-value.

Example: figstats transform --family boxcox --lambda-min -2 --lambda-max 2 --combine fisher < x.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.sample()
			if err != nil {
				return err
			}
			req := app.TransformRequest{Values: values, Family: family, Combine: combine, Start: start}
			if cmd.Flags().Changed("lambda-min") {
				req.LambdaMin = &lambdaMin
			}
			if cmd.Flags().Changed("lambda-max") {
				req.LambdaMax = &lambdaMax
			}
			report, err := c.figures.Transform(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.writeTransform(report)
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "boxcox|yeojohnson (configured default when empty)")
	cmd.Flags().StringVar(&combine, "combine", "", "stouffer|fisher|average (configured default when empty)")
	cmd.Flags().Float64Var(&lambdaMin, "lambda-min", -2, "Lower end of the lambda range")
	cmd.Flags().Float64Var(&lambdaMax, "lambda-max", 2, "Upper end of the lambda range")
	cmd.Flags().Float64Var(&start, "start", 0, "Box-Cox shift offset for non-positive samples (configured default when 0)")
	return cmd
}

func newApplyCmd(c *cli) *cobra.Command {
	var family string
	var lambda, start float64

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a power transform with a fixed lambda",
		Long: `Transform every non-missing value with the given family and lambda,
shifting Box-Cox input onto the positive half-line when needed.

Example: figstats apply --lambda 0.5 --format csv < x.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.sample()
			if err != nil {
				return err
			}
			report, err := c.figures.Apply(cmd.Context(), app.ApplyRequest{
				Values: values, Family: family, Lambda: lambda, Start: start,
			})
			if err != nil {
				return err
			}
			return c.writeApply(report)
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "boxcox|yeojohnson (configured default when empty)")
	cmd.Flags().Float64Var(&lambda, "lambda", 0, "Transform parameter")
	cmd.Flags().Float64Var(&start, "start", 0, "Box-Cox shift offset (configured default when 0)")
	_ = cmd.MarkFlagRequired("lambda")
	return cmd
}

func newDescribeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Summary statistics, skewness and kurtosis of the sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.sample()
			if err != nil {
				return err
			}
			report, err := c.figures.Describe(cmd.Context(), values)
			if err != nil {
				return err
			}
			return c.writeDescribe(report)
		},
	}
}
