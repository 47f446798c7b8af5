// Package dispatcher walks an input folder and hands every supported image to
// a fitter, turning per-file failures into log lines instead of aborting.
package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/imgpad/fitter"
	"github.com/nvr-ai/imgpad/images"
)

var (
	// ErrInputNotFound is fatal: the input folder is missing or not a folder.
	ErrInputNotFound = errors.New("input folder does not exist")
	// ErrBatchFailed is returned in strict mode when any image failed.
	ErrBatchFailed = errors.New("one or more images failed")
	// ErrUnsupported is returned by ProcessFile for non-image paths.
	ErrUnsupported = errors.New("unsupported file extension")
)

// OutputDirMode is the permission used when creating the output folder.
const OutputDirMode os.FileMode = 0o755

// Fitter places one image on a canvas. *fitter.Fitter implements it.
type Fitter interface {
	Fit(source, dest string) (*fitter.Result, error)
}

// Options describes one batch run.
type Options struct {
	// InputDir is scanned non-recursively.
	InputDir string
	// OutputDir receives one PNG per input; created when missing.
	OutputDir string
	// Workers bounds concurrent fits; values below 1 mean sequential.
	Workers int
	// Strict turns per-file failures into ErrBatchFailed.
	Strict bool
}

// Failure is one image that could not be processed.
type Failure struct {
	Source string
	Err    error
}

// Summary reports what a run did.
type Summary struct {
	// Found counts supported images in the input folder.
	Found int
	// Processed counts images written successfully.
	Processed int
	// Skipped counts directories and unsupported entries.
	Skipped int
	// Failures lists images that failed, in name order.
	Failures []Failure
	// Results lists written outputs, in name order.
	Results []*fitter.Result
	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Dispatcher runs a Fitter over a folder. It keeps no state between runs.
type Dispatcher struct {
	fitter Fitter
	logger *slog.Logger
}

// New returns a Dispatcher. A nil logger discards output.
func New(f Fitter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{fitter: f, logger: logger}
}

type outcome struct {
	done   bool
	result *fitter.Result
	err    error
}

// Run processes every supported image directly inside opts.InputDir.
//
// A missing input folder is fatal and returns before the output folder is
// touched. Failure to create the output folder is only logged; the per-file
// writes that follow report the real error. Per-file failures are logged and
// collected in the summary.
//
// Arguments:
//   - ctx: Checked before each file; cancelling stops the run early.
//   - opts: Folders, worker count and strictness.
//
// Returns:
//   - *Summary: What happened, also on cancellation or strict failure.
//   - error: ErrInputNotFound, a listing error, ctx.Err() or ErrBatchFailed.
func (d *Dispatcher) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	if err := checkInputDir(opts.InputDir); err != nil {
		return nil, err
	}

	d.ensureOutputDir(opts.OutputDir)

	p, err := scanDirectory(opts.InputDir, opts.OutputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list input folder %s", opts.InputDir)
	}

	for _, job := range p.shared {
		d.logger.Warn("image shares its output with a later file, the later one overwrites it",
			"path", job.Source, "dest", job.Dest)
	}

	summary := &Summary{
		Found:   len(p.jobs),
		Skipped: p.skipped,
	}

	d.logger.Debug("dispatching images", "input", opts.InputDir, "output", opts.OutputDir,
		"images", len(p.jobs), "skipped", summary.Skipped, "workers", opts.Workers)

	outcomes, runErr := d.dispatch(ctx, p.jobs, p.after, opts.Workers)

	for i, o := range outcomes {
		if !o.done {
			continue
		}
		if o.err != nil {
			summary.Failures = append(summary.Failures, Failure{Source: p.jobs[i].Source, Err: o.err})
			continue
		}
		summary.Processed++
		summary.Results = append(summary.Results, o.result)
	}
	summary.Elapsed = time.Since(start)

	if runErr != nil {
		return summary, runErr
	}
	if opts.Strict && len(summary.Failures) > 0 {
		return summary, errors.Wrapf(ErrBatchFailed, "%d of %d images failed", len(summary.Failures), len(p.jobs))
	}

	return summary, nil
}

// ProcessFile fits a single image from the input folder. It is used to react
// to files appearing after a Run.
func (d *Dispatcher) ProcessFile(ctx context.Context, opts Options, path string) (*fitter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !images.IsSupported(path) {
		return nil, errors.Wrapf(ErrUnsupported, "%s", path)
	}

	d.ensureOutputDir(opts.OutputDir)

	job := Job{Source: path, Dest: filepath.Join(opts.OutputDir, images.OutputName(path))}
	o := d.fit(job)
	return o.result, o.err
}

// dispatch runs jobs with at most workers fits in flight. With one worker the
// jobs run strictly in order. A job with after[i] >= 0 starts only once that
// earlier job, which writes the same destination, has finished.
func (d *Dispatcher) dispatch(ctx context.Context, jobs []Job, after []int, workers int) ([]outcome, error) {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]outcome, len(jobs))
	finished := make([]chan struct{}, len(jobs))
	for i := range finished {
		finished[i] = make(chan struct{})
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var cancelErr error

loop:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break loop
		case sem <- struct{}{}:
		}

		// Both cases can be ready at once; never start a file after cancel.
		if err := ctx.Err(); err != nil {
			<-sem
			cancelErr = err
			break
		}

		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()
			defer close(finished[idx])

			// The earlier job was started before this one, so it holds or
			// has released its own slot.
			if prev := after[idx]; prev >= 0 {
				<-finished[prev]
			}
			outcomes[idx] = d.fit(job)
		}(i, job)
	}

	wg.Wait()

	if cancelErr != nil {
		d.logger.Warn("run cancelled", "error", cancelErr)
	}

	return outcomes, cancelErr
}

func (d *Dispatcher) fit(job Job) outcome {
	res, err := d.fitter.Fit(job.Source, job.Dest)
	if err != nil {
		d.logger.Error("fit failed", "path", job.Source, "error", err)
		return outcome{done: true, err: err}
	}

	d.logger.Info("image padded", "path", job.Source, "dest", job.Dest,
		"scaled_width", res.Placement.NewWidth, "scaled_height", res.Placement.NewHeight)
	d.logger.Debug("image written", "dest", job.Dest, "bytes", res.Bytes, "sha256", res.Checksum)

	return outcome{done: true, result: res}
}

func (d *Dispatcher) ensureOutputDir(dir string) {
	if err := os.MkdirAll(dir, OutputDirMode); err != nil {
		d.logger.Warn("failed to create output folder", "path", dir, "error", err)
	}
}

func checkInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrInputNotFound, "%s", dir)
		}
		return errors.Wrapf(err, "failed to access input folder %s", dir)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrInputNotFound, "%s is not a folder", dir)
	}
	return nil
}
