package report

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/setanarut/absynth/experiment"
)

// ImageName is <base><algo>.<ext>.
func ImageName(base, algo, ext string) string {
	return fmt.Sprintf("%s%s.%s", base, algo, ext)
}

// LambdaImageName is <base><algo>_lbd%.0e.<ext>, e.g. "pt_OMPeps_lbd1e-04.png".
func LambdaImageName(base, algo string, lambda float64, ext string) string {
	return fmt.Sprintf("%s%s_lbd%.0e.%s", base, algo, lambda, ext)
}

// SavePhaseTransitions writes one image per independent algorithm and one per
// (dependent algorithm, multiplier) for every extension. It keeps going past
// failures and returns them joined.
func SavePhaseTransitions(rec Record, base string, exts []string, opt RenderOptions) error {
	var errs []error
	save := func(cells [][]float64, name func(ext string) string) {
		m, err := Grid(cells)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name(""), err))
			return
		}
		img := Render(m, opt)
		for _, ext := range exts {
			if err := SaveImage(img, name(ext)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, algo := range slices.Sorted(maps.Keys(rec.Independent)) {
		save(rec.Independent[algo], func(ext string) string {
			return ImageName(base, algo, ext)
		})
	}
	for _, algo := range slices.Sorted(maps.Keys(rec.Dependent)) {
		perLambda := rec.Dependent[algo]
		if len(perLambda) != len(rec.Lambdas) {
			errs = append(errs, fmt.Errorf("%w: %s has %d maps for %d multipliers", ErrRender, algo, len(perLambda), len(rec.Lambdas)))
			continue
		}
		for k, lambda := range rec.Lambdas {
			save(perLambda[k], func(ext string) string {
				return LambdaImageName(base, algo, lambda, ext)
			})
		}
	}
	return errors.Join(errs...)
}

// PublishOptions selects the outputs of Publish. Empty fields are skipped.
type PublishOptions struct {
	RecordPath string
	PlotBase   string
	Exts       []string
	Render     RenderOptions

	// Legend of the image colours, see SaveColorbar.
	ColorbarPath string
}

// Publish saves the record and images of a finished run. Failures are only
// logged.
func Publish(logger *slog.Logger, res *experiment.Results, opt PublishOptions) {
	rec := NewRecord(res)
	log := logger.With("run_id", rec.RunID)
	if opt.RecordPath != "" {
		if err := Save(opt.RecordPath, rec); err != nil {
			log.Error("saving record", "path", opt.RecordPath, "err", err)
		} else {
			log.Info("record saved", "path", opt.RecordPath)
		}
	}
	if opt.PlotBase != "" && len(opt.Exts) > 0 {
		if err := SavePhaseTransitions(rec, opt.PlotBase, opt.Exts, opt.Render); err != nil {
			log.Error("saving phase transitions", "base", opt.PlotBase, "err", err)
		} else {
			log.Info("phase transitions saved", "base", opt.PlotBase, "formats", opt.Exts)
		}
	}
	if opt.ColorbarPath != "" {
		if err := SaveColorbar(opt.Render.Colormap, 0, 0, opt.ColorbarPath); err != nil {
			log.Error("saving colorbar", "path", opt.ColorbarPath, "err", err)
		} else {
			log.Info("colorbar saved", "path", opt.ColorbarPath)
		}
	}
}
