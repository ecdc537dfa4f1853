// Package batch drives translation of a directory of subtitle files, one file
// and one chunk at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mgpai22/srtbatch/internal/chunker"
	"github.com/mgpai22/srtbatch/internal/logging"
	"github.com/mgpai22/srtbatch/internal/subtitle"
	"github.com/mgpai22/srtbatch/internal/translate"
)

const (
	// Placeholder stands in for a chunk whose translation failed.
	Placeholder = "[Translation failed]"
	// Separator joins translated chunks in the output file.
	Separator = "\n\n"

	lockFileName = ".srtbatch.lock"
)

type Options struct {
	InputDir       string
	OutputDir      string
	Extensions     []string
	Suffix         string
	MaxChunkTokens int
	// how long a new file must stay unchanged before Watch picks it up
	SettleDelay time.Duration
}

// outcome of one chunk, Err set when Text is the placeholder
type ChunkResult struct {
	Index int
	Text  string
	Err   error
}

type FileReport struct {
	Input        string
	Output       string
	Chunks       int
	FailedChunks int
	// -1 for unknown formats or unparseable content
	SourceCues int
	OutputCues int
	Err        error
}

type Report struct {
	RunID string
	Files []FileReport
}

// FailedFiles counts files that could not be read or written.
func (r *Report) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// FailedChunks counts placeholder chunks across all files.
func (r *Report) FailedChunks() int {
	n := 0
	for _, f := range r.Files {
		n += f.FailedChunks
	}
	return n
}

type Runner struct {
	translator translate.Translator
	logger     *logging.Logger
	opts       Options
	runID      string
}

// NewRunner tags every log entry with a fresh run id.
func NewRunner(
	translator translate.Translator,
	logger *logging.Logger,
	opts Options,
) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	runID := uuid.NewString()
	return &Runner{
		translator: translator,
		logger:     logger.With("run_id", runID),
		opts:       opts,
		runID:      runID,
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

// Run translates paths, or every matching file in the input directory when
// paths is empty. Per-file failures are recorded in the report; the returned
// error is non-nil only for setup failures and cancellation.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{RunID: r.runID}

	if len(paths) == 0 {
		found, err := r.discover()
		if err != nil {
			return report, err
		}
		paths = found
	}

	if len(paths) == 0 {
		r.logger.Infow("No subtitle files found",
			"input_dir", r.opts.InputDir,
			"extensions", r.opts.Extensions,
		)
		return report, nil
	}

	unlock, err := r.lockOutput()
	if err != nil {
		return report, err
	}
	defer unlock()

	r.logger.Infow("Starting batch",
		"files", len(paths),
		"output_dir", r.opts.OutputDir,
	)

	return report, r.translateAll(ctx, paths, report)
}

func (r *Runner) translateAll(ctx context.Context, paths []string, report *Report) error {
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logger.Infow("Processing file",
			"file", path,
			"position", i+1,
			"total", len(paths),
		)

		fr := r.TranslateFile(ctx, path)
		report.Files = append(report.Files, fr)

		if isCancellation(fr.Err) {
			return fr.Err
		}
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// matching input files, minus outputs of an earlier run when the input and
// output directories are the same
func (r *Runner) discover() ([]string, error) {
	found, err := subtitle.Discover(r.opts.InputDir, r.opts.Extensions)
	if err != nil {
		return nil, err
	}
	paths := found[:0]
	for _, path := range found {
		if r.isOwnOutput(path) {
			r.logger.Debugw("Skipping translated file", "file", path)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Runner) isOwnOutput(path string) bool {
	if r.opts.Suffix == "" || !sameDir(filepath.Dir(path), r.opts.OutputDir) {
		return false
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, r.opts.Suffix)
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// creates the output directory and takes an exclusive lock on it so two
// runs never write the same files
func (r *Runner) lockOutput() (func(), error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(r.opts.OutputDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf(
			"another srtbatch run is writing to %s",
			r.opts.OutputDir,
		)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warnw("Failed to release output lock", "error", err)
		}
	}, nil
}

// TranslateFile reads, chunks, translates and writes a single file. Nothing is
// written when the context is cancelled midway.
func (r *Runner) TranslateFile(ctx context.Context, path string) FileReport {
	fr := FileReport{
		Input:      path,
		Output:     subtitle.OutputPath(r.opts.OutputDir, path, r.opts.Suffix),
		SourceCues: -1,
		OutputCues: -1,
	}

	file, err := subtitle.Open(path)
	if err != nil {
		r.logger.Errorw("Failed to read file", "file", path, "error", err)
		fr.Err = err
		return fr
	}

	chunks := chunker.Split(file.Content, r.opts.MaxChunkTokens)
	fr.Chunks = len(chunks)
	r.logger.Infow("Split file into chunks",
		"file", path,
		"chunks", len(chunks),
	)

	results, err := r.TranslateChunks(ctx, chunks)
	if err != nil {
		r.logger.Warnw("Translation interrupted, output not written",
			"file", path,
			"error", err,
		)
		fr.Err = err
		return fr
	}

	for _, res := range results {
		if res.Err != nil {
			fr.FailedChunks++
		}
	}

	output := Assemble(results)
	if err := subtitle.Write(fr.Output, output); err != nil {
		r.logger.Errorw("Failed to write output", "file", fr.Output, "error", err)
		fr.Err = fmt.Errorf("failed to write output: %w", err)
		return fr
	}

	if format := subtitle.GetFormatFromExtension(path); format != "" {
		fr.SourceCues = subtitle.CountFormatCues(format, file.Content)
		fr.OutputCues = subtitle.CountFormatCues(format, output)
		r.checkCues(fr)
	}

	r.logger.Infow("Translation saved",
		"file", fr.Output,
		"chunks", fr.Chunks,
		"failed_chunks", fr.FailedChunks,
	)
	return fr
}

// TranslateChunks translates chunks in order. A failed chunk is logged and
// replaced by Placeholder; only context cancellation stops the loop.
func (r *Runner) TranslateChunks(
	ctx context.Context,
	chunks []chunker.Chunk,
) ([]ChunkResult, error) {
	results := make([]ChunkResult, 0, len(chunks))

	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.logger.Infow("Translating chunk",
			"chunk", i+1,
			"total", len(chunks),
			"tokens", c.Tokens,
			"lines", len(c.Lines),
		)

		start := time.Now()
		text, err := r.translator.Translate(ctx, c.Text())
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logFailure(i+1, elapsed, err)
			results = append(results, ChunkResult{
				Index: c.Index,
				Text:  Placeholder,
				Err:   err,
			})
			continue
		}

		r.logger.Infow("Chunk translated",
			"chunk", i+1,
			"total", len(chunks),
			"elapsed", elapsed,
		)
		results = append(results, ChunkResult{Index: c.Index, Text: text})
	}

	return results, nil
}

// Assemble joins chunk texts in order with Separator.
func Assemble(results []ChunkResult) string {
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = res.Text
	}
	return strings.Join(parts, Separator)
}

func (r *Runner) logFailure(chunk int, elapsed time.Duration, err error) {
	var svcErr *translate.ServiceError
	if errors.As(err, &svcErr) {
		r.logger.Errorw("Translation service rejected chunk",
			"chunk", chunk,
			"provider", svcErr.Provider,
			"code", svcErr.Code,
			"status", svcErr.StatusCode,
			"message", svcErr.Message,
			"elapsed", elapsed,
		)
		return
	}
	r.logger.Errorw("Unexpected error translating chunk",
		"chunk", chunk,
		"error", err,
		"elapsed", elapsed,
	)
}

func (r *Runner) checkCues(fr FileReport) {
	if fr.SourceCues < 0 || fr.OutputCues < 0 {
		r.logger.Debugw("Skipping cue check, unparseable subtitle", "file", fr.Input)
		return
	}
	if fr.SourceCues != fr.OutputCues {
		r.logger.Warnw("Cue count changed during translation",
			"file", fr.Input,
			"source_cues", fr.SourceCues,
			"output_cues", fr.OutputCues,
		)
		return
	}
	r.logger.Debugw("Cue count preserved", "file", fr.Input, "cues", fr.SourceCues)
}
