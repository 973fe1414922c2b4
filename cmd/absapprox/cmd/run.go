package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/setanarut/absynth/experiment"
	"github.com/setanarut/absynth/report"
)

type outputFlags struct {
	record   string
	plotBase string
	exts     []string
	cellSize int
	color    bool
	colorbar string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.plotBase, "plot-base", "abs_", "prefix of the phase transition images, empty to skip them")
	cmd.Flags().StringSliceVar(&o.exts, "ext", []string{"png"}, "image formats: png, jpg, bmp, tiff")
	cmd.Flags().IntVar(&o.cellSize, "cell-size", 1, "pixels per grid cell")
	cmd.Flags().BoolVar(&o.color, "color", false, "use a colour ramp instead of grey levels")
	cmd.Flags().StringVar(&o.colorbar, "colorbar", "", "write the legend of the image colours to this file")
}

func (o *outputFlags) render() report.RenderOptions {
	opt := report.RenderOptions{CellSize: o.cellSize}
	if o.color {
		opt.Colormap = report.DefaultColormap()
	}
	return opt
}

var (
	configPath  string
	metricsFile string
	workers     int
	runOut      outputFlags
	parallelOut outputFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the experiment sequentially",
	Long:  "Runs the standard algorithm set over the configured grid on one goroutine.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExperiment(cmd, 1, &runOut)
	},
}

var runParallelCmd = &cobra.Command{
	Use:   "run-parallel",
	Short: "Run the experiment on a worker pool",
	Long:  "Like run, but solves up to --workers grid points concurrently. Results are identical to run.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", workers)
		}
		return runExperiment(cmd, workers, &parallelOut)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, runParallelCmd} {
		c.Flags().StringVar(&configPath, "config", "", "YAML experiment configuration (default: the standard single-cell grid)")
		c.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
	}
	runCmd.Flags().StringVar(&runOut.record, "out", "absapprox.json", "result record, .json or .yaml; empty to skip")
	runOut.register(runCmd)
	runParallelCmd.Flags().StringVar(&parallelOut.record, "out", "absapprox.json", "result record, .json or .yaml; empty to skip")
	runParallelCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent grid points")
	parallelOut.register(runParallelCmd)
}

func runExperiment(cmd *cobra.Command, n int, out *outputFlags) error {
	log, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := experiment.DefaultConfig()
	if configPath != "" {
		if cfg, err = experiment.LoadConfig(configPath); err != nil {
			return err
		}
	}
	h, err := experiment.New(cfg, experiment.StandardAlgorithms(),
		experiment.WithLogger(log),
		experiment.WithWorkers(n),
	)
	if err != nil {
		return err
	}
	res, err := h.Run(cmd.Context())
	if metricsFile != "" {
		if merr := h.Metrics().WriteTextfile(metricsFile); merr != nil {
			log.Error("writing metrics", "path", metricsFile, "err", merr)
		}
	}
	if err != nil {
		return err
	}
	report.Publish(log, res, report.PublishOptions{
		RecordPath: out.record,
		PlotBase:   out.plotBase,
		Exts:       out.exts,
		Render:     out.render(),

		ColorbarPath: out.colorbar,
	})
	return nil
}
