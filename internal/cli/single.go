package cli

import (
	"github.com/spf13/cobra"

	"KeplerLens/internal/config"
)

var plotCmd = &cobra.Command{
	Use:   "plot <kic> <name>",
	Short: "Plot the full stitched light curve of a star",
	Long: `Download every long-cadence quarter of a star, normalise and stitch them,
remove NaNs and extreme outliers, and save the plot.

Examples:
  keplerlens plot 8462852 "Tabby's Star"
  keplerlens plot 11904151 Kepler-10 --sigma 10 --out-dir plots`,
	Args: cobra.ExactArgs(2),
	RunE: runPlot,
}

var quarterCmd = &cobra.Command{
	Use:   "quarter <kic> <quarter> [name]",
	Short: "Plot a single quarter of a star",
	Long: `Download one quarter of a star, clean it, and save the plot. By default
only the first matching product is used; --stitch stitches every product of
the quarter.

Examples:
  keplerlens quarter 8462852 16 "Tabby's Star"
  keplerlens quarter 8462852 16 --stitch`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runQuarter,
}

var syntheticCmd = &cobra.Command{
	Use:   "synthetic [kic]",
	Short: "Plot a synthetic light curve with a transit dip",
	Long: `Generate a synthetic light curve (sinusoidal variability, Gaussian noise,
and a box-shaped transit) and save the plot. Generator settings come from the
config file and can be overridden with flags.

Examples:
  keplerlens synthetic
  keplerlens synthetic 8462852 --depth 0.02 --seed 2024`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSynthetic,
}

// Flags
var (
	singleSigma   float64
	singleOutDir  string
	quarterStitch bool

	synthSpan      float64
	synthSamples   int
	synthCenter    float64
	synthHalfWidth float64
	synthDepth     float64
	synthNoise     float64
	synthSeed      uint64
)

// defaultSyntheticKIC is KIC 8462852, the star the synthetic preset labels by default.
const defaultSyntheticKIC = 8462852

func init() {
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(quarterCmd)
	rootCmd.AddCommand(syntheticCmd)

	for _, c := range []*cobra.Command{plotCmd, quarterCmd, syntheticCmd} {
		c.Flags().StringVar(&singleOutDir, "out-dir", "", "Directory for the plot (overrides output.dir)")
	}
	plotCmd.Flags().Float64Var(&singleSigma, "sigma", 0, "Outlier threshold in standard deviations (default from preset)")
	quarterCmd.Flags().Float64Var(&singleSigma, "sigma", 0, "Outlier threshold in standard deviations (default from preset)")
	quarterCmd.Flags().BoolVar(&quarterStitch, "stitch", false, "Stitch every product of the quarter instead of the first")

	syntheticCmd.Flags().Float64Var(&synthSpan, "span", 0, "Observation span in days")
	syntheticCmd.Flags().IntVar(&synthSamples, "samples", 0, "Number of samples")
	syntheticCmd.Flags().Float64Var(&synthCenter, "center", 0, "Transit center in days")
	syntheticCmd.Flags().Float64Var(&synthHalfWidth, "half-width", 0, "Transit half width in days")
	syntheticCmd.Flags().Float64Var(&synthDepth, "depth", 0, "Transit depth in normalized flux")
	syntheticCmd.Flags().Float64Var(&synthNoise, "noise", 0, "Gaussian noise standard deviation")
	syntheticCmd.Flags().Uint64Var(&synthSeed, "seed", 0, "Random seed (0 picks a time-based seed)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	kic, err := parseKIC(args[0])
	if err != nil {
		return err
	}
	return runSingle(cmd, config.JobConfig{
		Preset: "full",
		KIC:    kic,
		Star:   args[1],
		Sigma:  singleSigma,
	}, nil)
}

func runQuarter(cmd *cobra.Command, args []string) error {
	kic, err := parseKIC(args[0])
	if err != nil {
		return err
	}
	quarter, err := parseQuarter(args[1])
	if err != nil {
		return err
	}
	name := ""
	if len(args) == 3 {
		name = args[2]
	}
	return runSingle(cmd, quarterJob(kic, quarter, name, quarterStitch, singleSigma), nil)
}

// quarterJob builds the job for one quarter: the first product only, or every
// product stitched when stitch is set.
func quarterJob(kic int64, quarter int, name string, stitch bool, sigma float64) config.JobConfig {
	jc := config.JobConfig{
		Preset:  "quick",
		KIC:     kic,
		Star:    name,
		Quarter: &quarter,
		Sigma:   sigma,
	}
	if stitch {
		jc.Preset = "real"
	}
	return jc
}

func runSynthetic(cmd *cobra.Command, args []string) error {
	kic := int64(defaultSyntheticKIC)
	if len(args) == 1 {
		var err error
		if kic, err = parseKIC(args[0]); err != nil {
			return err
		}
	}
	return runSingle(cmd, config.JobConfig{Preset: "synthetic", KIC: kic}, func(g *config.GeneratorConfig) {
		flags := cmd.Flags()
		if flags.Changed("span") {
			g.SpanDays = synthSpan
		}
		if flags.Changed("samples") {
			g.SampleCount = synthSamples
		}
		if flags.Changed("center") {
			g.TransitCenter = synthCenter
		}
		if flags.Changed("half-width") {
			g.TransitHalfWidth = synthHalfWidth
		}
		if flags.Changed("depth") {
			g.TransitDepth = synthDepth
		}
		if flags.Changed("noise") {
			g.NoiseStd = synthNoise
		}
		if flags.Changed("seed") {
			g.Seed = synthSeed
		}
	})
}

// runSingle runs one job built from jc. tweak, when set, adjusts the
// generator settings before the job is built.
func runSingle(cmd *cobra.Command, jc config.JobConfig, tweak func(*config.GeneratorConfig)) error {
	app, err := NewAppContext(configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	if singleOutDir != "" {
		app.Config.Output.Dir = singleOutDir
	}
	if tweak != nil {
		tweak(&app.Config.Generator)
		if err := app.Config.Generator.Params().Validate(); err != nil {
			return err
		}
	}

	job, err := app.BuildJob(jc)
	if err != nil {
		return err
	}
	_, err = app.Runner.Run(cmd.Context(), job)
	return commandError(err)
}
