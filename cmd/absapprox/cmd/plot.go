package cmd

import (
	"github.com/spf13/cobra"

	"github.com/setanarut/absynth/report"
)

var plotOut outputFlags

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render phase transitions from a saved record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, closeLog, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		rec, err := report.Load(plotOut.record)
		if err != nil {
			return err
		}
		if err := report.SavePhaseTransitions(rec, plotOut.plotBase, plotOut.exts, plotOut.render()); err != nil {
			return err
		}
		log.Info("phase transitions saved", "run_id", rec.RunID, "base", plotOut.plotBase, "formats", plotOut.exts)
		if plotOut.colorbar != "" {
			if err := report.SaveColorbar(plotOut.render().Colormap, 0, 0, plotOut.colorbar); err != nil {
				return err
			}
			log.Info("colorbar saved", "path", plotOut.colorbar)
		}
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVar(&plotOut.record, "record", "", "result record written by run (required)")
	cobra.CheckErr(plotCmd.MarkFlagRequired("record"))
	plotOut.register(plotCmd)
}
