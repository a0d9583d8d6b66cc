package bootstrap

import (
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/imageanalysis"
	"github.com/jonesrussell/veracity/internal/mlclient"
	"github.com/jonesrussell/veracity/internal/mltransport"
	"github.com/jonesrussell/veracity/internal/telemetry"
)

func setupImage(
	cfg *config.Config,
	transport *mltransport.Transport,
	tp *telemetry.Provider,
	logger infralogger.Logger,
) *imageanalysis.Analyzer {
	var primary, secondary imageanalysis.FaceLocator

	pigoLocator, err := imageanalysis.NewPigoLocator(cfg.Image.CascadeFile)
	if err != nil {
		logger.Warn("Face cascade unavailable, in-process face detection disabled",
			infralogger.String("cascade_file", cfg.Image.CascadeFile),
			infralogger.Error(err),
		)
	} else {
		primary = pigoLocator
	}

	if cfg.Image.SecondaryFacesURL != "" {
		secondary = imageanalysis.NewSidecarLocator(mlclient.NewClient(cfg.Image.SecondaryFacesURL, transport, tp))
	}

	var locator imageanalysis.FaceLocator
	if primary != nil || secondary != nil {
		locator = imageanalysis.NewCompositeLocator(primary, secondary, cfg.Image.MaxFaces, logger)
	}

	var backbone *imageanalysis.BackboneScorer
	if cfg.Image.BackboneURL != "" {
		backbone = imageanalysis.NewBackboneScorer(mlclient.NewClient(cfg.Image.BackboneURL, transport, tp))
	}

	logger.Info("Image analyzer initialized",
		infralogger.Bool("pigo", primary != nil),
		infralogger.Bool("secondary_faces", secondary != nil),
		infralogger.Bool("backbone", backbone != nil),
		infralogger.Int("max_faces", cfg.Image.MaxFaces),
	)

	return imageanalysis.NewAnalyzer(locator, backbone, imageanalysis.Options{
		Threshold:    cfg.Image.Threshold,
		AnalysisSize: cfg.Image.AnalysisSize,
		MaxFaces:     cfg.Image.MaxFaces,
		MaxPixels:    cfg.Image.MaxPixels,
	}, logger)
}
