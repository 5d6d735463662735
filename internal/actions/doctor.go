package actions

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/doctor"
	"github.com/ethpandaops/layoutcheck/internal/renderer"
	"github.com/ethpandaops/layoutcheck/internal/validation/table"
)

// ErrPrerequisites is returned when at least one doctor probe failed.
var ErrPrerequisites = errors.New("prerequisites not met")

// Doctor checks the environment described by app and prints the result table.
func Doctor(ctx context.Context, log logrus.FieldLogger, app *config.AppConfig, targetURL string, out io.Writer) error {
	mode, err := renderer.ParseMode(app.Renderer)
	if err != nil {
		return err
	}

	probes := doctor.Probes(log, doctor.Options{
		Renderer:   mode,
		HugoBinary: app.HugoBinary,
		Host:       app.Host,
		Port:       app.Port,
		SiteDir:    app.SiteDir,
		ChromePath: app.ChromePath,
		OutputDir:  app.OutputDir,
		TargetURL:  targetURL,
	})

	rep := doctor.Run(ctx, log, probes)

	fmt.Fprint(out, doctor.Format(rep, table.NewRenderer(log)))

	if !rep.OK() {
		return fmt.Errorf("%w: %d failed", ErrPrerequisites, rep.Failed)
	}

	return nil
}
