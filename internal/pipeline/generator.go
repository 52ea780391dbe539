package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"fakebench/internal/artifact"
	"fakebench/internal/config"
	"fakebench/internal/dataset"
	"fakebench/internal/encoding"
	"fakebench/internal/gannotation"
	"fakebench/internal/landmarks"
	"fakebench/internal/logging"
	"fakebench/internal/media"
	"fakebench/internal/runlog"
	"fakebench/internal/services"
)

const (
	phaseEnumerate   = "enumerate"
	phaseEncoding    = "encoding"
	phaseReenactment = "reenactment"
)

// FrameSource reads frames out of stored videos.
type FrameSource interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	ReadFrames(ctx context.Context, path string, fn func(media.Frame) error) error
}

// FrameSink writes frames into a video artifact. Close finalizes the
// artifact at its canonical path; Abort drops the partial output.
type FrameSink interface {
	WriteFrame(media.Frame) error
	Close() error
	Abort()
}

// Generator runs the two phase reenactment workflow: landmark encodings for
// every driving sequence, then reenactment videos for every Face2Face pair.
type Generator struct {
	cfg       *config.Config
	frames    FrameSource
	newSink   func(ctx context.Context, target string) (FrameSink, error)
	detector  landmarks.Detector
	reenactor gannotation.Generator
	ledger    runRecorder
	logger    *slog.Logger
	stdout    io.Writer
	stderr    io.Writer
}

// GeneratorOption adjusts a generation driver.
type GeneratorOption func(*Generator)

// WithFrameSource replaces the ffmpeg frame reader.
func WithFrameSource(frames FrameSource) GeneratorOption {
	return func(g *Generator) {
		g.frames = frames
	}
}

// WithFrameSink replaces the ffmpeg video writer.
func WithFrameSink(newSink func(ctx context.Context, target string) (FrameSink, error)) GeneratorOption {
	return func(g *Generator) {
		g.newSink = newSink
	}
}

// NewGenerator wires a generation driver. store may be nil, in which case no
// ledger rows are written.
func NewGenerator(cfg *config.Config, detector landmarks.Detector, reenactor gannotation.Generator, store *runlog.Store, logger *slog.Logger, streams IO, opts ...GeneratorOption) *Generator {
	streams = streams.withDefaults()
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "generate")
	g := &Generator{
		cfg:       cfg,
		frames:    media.NewExtractor(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary),
		detector:  detector,
		reenactor: reenactor,
		ledger:    runRecorder{store: store, logger: logger},
		logger:    logger,
		stdout:    streams.Stdout,
		stderr:    streams.Stderr,
	}
	g.newSink = func(ctx context.Context, target string) (FrameSink, error) {
		return media.NewWriter(ctx, cfg.Media.FFmpegBinary, media.WriterOptions{
			Path:   target,
			Width:  cfg.Media.FrameSize,
			Height: cfg.Media.FrameSize,
			FPS:    cfg.Media.FPS,
		})
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run generates encodings and reenactments for the dataset rooted at root.
// Existing artifacts are skipped, so an interrupted run resumes where it
// stopped. Item level failures are reported on stderr and counted; the
// returned error is run fatal (or the cancellation cause on interrupt).
func (g *Generator) Run(ctx context.Context, root string) (GenerateStats, error) {
	var stats GenerateStats

	layout := dataset.NewLayout(root, g.cfg.Dataset.Compression)

	release, err := acquireTreeLock(layout.GANnotationDir())
	if err != nil {
		return stats, err
	}
	defer release()

	runID := g.ledger.begin(ctx, "generate", root)
	defer func() {
		g.ledger.finish(runID, stats.Combined(), ctx.Err() != nil)
	}()

	pairs, malformed, err := dataset.Pairs(layout.Face2FaceVideosDir())
	if err != nil {
		return stats, fmt.Errorf("enumerating reenactment pairs: %w", err)
	}
	for i := range malformed {
		g.logger.Warn("skipping unrecognized video name",
			logging.String("name", malformed[i].Name),
			logging.String("reason", malformed[i].Reason))
		g.ledger.record(ctx, runID, phaseEnumerate, malformed[i].Name, runlog.OutcomeSkipped, malformed[i].Reason)
	}

	stats.Encodings, err = g.computeEncodings(ctx, runID, layout, dataset.DriverIDs(pairs))
	if err != nil {
		return stats, err
	}

	fmt.Fprintln(g.stdout)

	stats.Reenactments, err = g.computeReenactments(ctx, runID, layout, pairs)
	return stats, err
}

func (g *Generator) computeEncodings(ctx context.Context, runID string, layout dataset.Layout, driverIDs []string) (Stats, error) {
	var stats Stats

	fmt.Fprintln(g.stdout, "Computing video encodings...")

	for _, id := range driverIDs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		target := layout.EncodingPath(id)
		if artifact.Exists(target) {
			stats.Skipped++
			g.ledger.record(ctx, runID, phaseEncoding, id, runlog.OutcomeSkipped, "encoding already exists")
			continue
		}

		fmt.Fprintf(g.stdout, "Computing encoding for sequence %s...\n", id)

		seq, err := g.encodeSequence(ctx, layout.OriginalVideoPath(id), id)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if !services.IsItemRecoverable(err) {
				return stats, err
			}
			fmt.Fprintf(g.stderr, "Failed to compute encoding for sequence %s: %v\n", id, err)
			g.logger.Warn("encoding failed",
				logging.String("sequence", id),
				logging.Error(err))
			stats.Failed++
			g.ledger.record(ctx, runID, phaseEncoding, id, runlog.OutcomeFailed, err.Error())
			continue
		}

		if err := writeEncoding(target, seq); err != nil {
			return stats, err
		}
		g.logger.Info("encoding written",
			logging.String("sequence", id),
			logging.Int("frames", seq.Len()))
		stats.Processed++
		g.ledger.record(ctx, runID, phaseEncoding, id, runlog.OutcomeProcessed, "")
	}

	if stats.Processed == 0 {
		fmt.Fprintln(g.stdout, "No encodings were calculated")
	} else {
		fmt.Fprintf(g.stdout, "%d video sequences encoded\n", stats.Processed)
	}
	return stats, nil
}

// encodeSequence detects landmarks on every frame of the driving video. A
// frame with no detectable face abandons the whole sequence, so a partial
// encoding is never written.
func (g *Generator) encodeSequence(ctx context.Context, videoPath, id string) (encoding.Sequence, error) {
	var total int64
	if info, err := g.frames.Probe(ctx, videoPath); err == nil {
		total = int64(info.Frames)
	}
	bar := newProgressBar(g.stdout, total, "Frames")
	defer barFinish(bar)
	sampler := logging.NewProgressSampler(10)

	var seq encoding.Sequence
	err := g.frames.ReadFrames(ctx, videoPath, func(frame media.Frame) error {
		points, err := g.detector.Detect(ctx, frame)
		if err != nil {
			return err
		}
		seq.Append(points)
		barAdd(bar, 1)
		if total > 0 {
			percent := float64(seq.Len()) / float64(total) * 100
			if sampler.ShouldLog(percent, phaseEncoding) {
				g.logger.Debug("encoding progress",
					logging.String("sequence", id),
					logging.Int("frames", seq.Len()),
					logging.Float64("percent", percent))
			}
		}
		return nil
	})
	if err != nil {
		return encoding.Sequence{}, markExternal(err, phaseEncoding, "extract", "frame extraction failed")
	}
	if seq.Len() == 0 {
		return encoding.Sequence{}, services.Wrap(services.ErrValidation, phaseEncoding, "extract", "video contains no frames", nil)
	}
	return seq, nil
}

func writeEncoding(path string, seq encoding.Sequence) error {
	w, err := artifact.NewWriter(path)
	if err != nil {
		return fmt.Errorf("staging encoding %s: %w", path, err)
	}
	if err := encoding.Write(w, seq); err != nil {
		_ = w.Abort()
		return fmt.Errorf("writing encoding %s: %w", path, err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("writing encoding %s: %w", path, err)
	}
	return nil
}

func (g *Generator) computeReenactments(ctx context.Context, runID string, layout dataset.Layout, pairs []dataset.Pair) (Stats, error) {
	var stats Stats

	fmt.Fprintln(g.stdout, "Computing reenactments...")

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		target := layout.ReenactmentVideoPath(pair)
		if artifact.Exists(target) {
			stats.Skipped++
			g.ledger.record(ctx, runID, phaseReenactment, pair.Name(), runlog.OutcomeSkipped, "reenactment already exists")
			continue
		}

		fmt.Fprintf(g.stdout, "Computing reenactment for %s onto %s...\n", pair.DriverID, pair.SourceID)

		encPath := layout.EncodingPath(pair.DriverID)
		if !artifact.Exists(encPath) {
			fmt.Fprintf(g.stderr, "Failed to find encoding for video sequence %s\n", pair.DriverID)
			stats.Skipped++
			g.ledger.record(ctx, runID, phaseReenactment, pair.Name(), runlog.OutcomeSkipped, "encoding missing")
			continue
		}

		imagePath := layout.SourceImagePath(pair.SourceID)
		if !artifact.Exists(imagePath) {
			fmt.Fprintf(g.stderr, "Failed to find image for sequence %s\n", pair.SourceID)
			stats.Skipped++
			g.ledger.record(ctx, runID, phaseReenactment, pair.Name(), runlog.OutcomeSkipped, "source image missing")
			continue
		}

		err := g.reenactPair(ctx, pair, encPath, imagePath, target)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if !services.IsItemRecoverable(err) {
				return stats, err
			}
			fmt.Fprintf(g.stderr, "Failed to compute reenactment for %s onto %s: %v\n", pair.DriverID, pair.SourceID, err)
			g.logger.Warn("reenactment failed",
				logging.String("pair", pair.Name()),
				logging.Error(err))
			stats.Failed++
			g.ledger.record(ctx, runID, phaseReenactment, pair.Name(), runlog.OutcomeFailed, err.Error())
			continue
		}

		g.logger.Info("reenactment written", logging.String("pair", pair.Name()))
		stats.Processed++
		g.ledger.record(ctx, runID, phaseReenactment, pair.Name(), runlog.OutcomeProcessed, "")
	}

	if stats.Processed == 0 {
		fmt.Fprintln(g.stdout, "No reenactments were created")
	} else {
		fmt.Fprintf(g.stdout, "%d reenactments created\n", stats.Processed)
	}
	return stats, nil
}

func (g *Generator) reenactPair(ctx context.Context, pair dataset.Pair, encPath, imagePath, target string) error {
	seq, err := encoding.ReadFile(encPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, phaseReenactment, "read encoding", "corrupt encoding file", err)
	}

	img, err := media.ReadImage(imagePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, phaseReenactment, "read image", "unreadable source image", err)
	}

	points, err := g.detector.Detect(ctx, media.FromImage(img))
	if err != nil {
		return err
	}
	face, err := landmarks.CropFace(img, points, g.cfg.Media.FrameSize)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	fmt.Fprintf(g.stdout, "Writing video to %q\n", abs)

	writer, err := g.newSink(ctx, target)
	if err != nil {
		return markExternal(err, phaseReenactment, "mux", "starting video encoder")
	}

	bar := newProgressBar(g.stdout, int64(seq.Len()), "Frames")
	defer barFinish(bar)

	err = g.reenactor.Reenact(ctx, face, seq, func(frame media.Frame) error {
		if err := writer.WriteFrame(frame); err != nil {
			return err
		}
		barAdd(bar, 1)
		return nil
	})
	if err != nil {
		writer.Abort()
		return markExternal(err, phaseReenactment, "reenact", "frame generation failed")
	}
	if err := writer.Close(); err != nil {
		return markExternal(err, phaseReenactment, "mux", "finalizing video failed")
	}
	return nil
}

// markExternal tags unclassified adapter failures as external tool errors so
// they stay scoped to the current work item. Already classified errors pass
// through untouched.
func markExternal(err error, phase, operation, message string) error {
	if err == nil || services.IsItemRecoverable(err) {
		return err
	}
	return services.Wrap(services.ErrExternalTool, phase, operation, message, err)
}
