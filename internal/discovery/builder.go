package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"testcat/internal/domain"
)

// Progress receives classification progress updates. Start is called once
// the number of candidate files is known.
type Progress interface {
	Start(total int)
	Update(classified, failed int)
	Finish()
}

// Options controls the failure policy of a build.
type Options struct {
	// FailFast aborts the build on the first file that cannot be classified.
	// Otherwise per-file failures are collected into the Result.
	FailFast bool
	// NameFilter restricts the scanned files, see Filter.FilterByName.
	NameFilter string
}

// Builder assembles the test catalog from a directory tree. A Builder only
// holds its collaborators and options; every Build call works on its own
// state, so concurrent builds over different roots do not interfere.
type Builder struct {
	scanner  *Scanner
	filter   *Filter
	metadata *MetadataExtractor
	resolver *Resolver
	logger   *zap.Logger
	progress Progress
	opts     Options
}

// NewBuilder creates a new Builder
func NewBuilder(scanner *Scanner, filter *Filter, metadata *MetadataExtractor, resolver *Resolver, logger *zap.Logger, opts Options) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		scanner:  scanner,
		filter:   filter,
		metadata: metadata,
		resolver: resolver,
		logger:   logger.With(zap.String("component", "catalog-builder")),
		opts:     opts,
	}
}

// SetProgress sets the progress reporter for subsequent builds
func (b *Builder) SetProgress(progress Progress) {
	b.progress = progress
}

// Result is the outcome of a build: the catalog of every classified file
// and the failures of the files that could not be classified.
type Result struct {
	Root       string
	Candidates int
	Catalog    *domain.Catalog
	Failures   []*FileError
	Duration   time.Duration
}

// Output converts the result into the handoff document.
func (r *Result) Output() *domain.CatalogOutput {
	failures := make([]domain.FileFailure, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = f.Failure()
	}
	return &domain.CatalogOutput{
		Meta: domain.CatalogMeta{
			Root:               r.Root,
			TotalTestFiles:     r.Candidates,
			DisruptiveTests:    r.Catalog.Count(domain.Disruptive),
			NonDisruptiveTests: r.Catalog.Count(domain.NonDisruptive),
			FailedTestFiles:    len(r.Failures),
			Components:         len(r.Catalog.Components()),
			Duration:           r.Duration.String(),
			DurationSeconds:    r.Duration.Seconds(),
			Timestamp:          time.Now().Format(time.RFC3339),
		},
		Catalog:  r.Catalog,
		Failures: failures,
	}
}

// Build scans root and classifies every test file found, one at a time.
//
// A root that cannot be searched returns a *DiscoveryError and no result.
// With FailFast the first per-file failure is returned as the error;
// otherwise failures are reported in Result.Failures next to the catalog of
// the files that succeeded. ctx bounds the whole build.
func (b *Builder) Build(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	files, err := b.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	files = b.filter.FilterByName(files, b.opts.NameFilter)

	b.logger.Info("scanned test directory",
		zap.String("root", root),
		zap.Int("candidates", len(files)),
		zap.Bool("fail_fast", b.opts.FailFast))
	if b.progress != nil {
		b.progress.Start(len(files))
	}

	var records []domain.TestRecord
	var failures []*FileError

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("catalog build of %s interrupted: %w", root, err)
		}

		record, err := b.classify(path)
		if err != nil {
			var fileErr *FileError
			if !errors.As(err, &fileErr) {
				fileErr = unresolvable(path, err, "cannot classify")
			}
			b.logger.Warn("cannot classify test file",
				zap.String("path", path),
				zap.String("kind", fileErr.KindName()),
				zap.Error(err))
			if b.opts.FailFast {
				b.finishProgress()
				return nil, fileErr
			}
			failures = append(failures, fileErr)
		} else {
			b.logger.Debug("classified test file",
				zap.String("path", path),
				zap.String("nature", string(record.Nature)),
				zap.Strings("topologies", record.VolumeTopologies),
				zap.Stringer("class", record.ImplementationClass))
			records = append(records, record)
		}

		if b.progress != nil {
			b.progress.Update(len(records), len(failures))
		}
	}
	b.finishProgress()

	catalog, err := domain.NewCatalog(records)
	if err != nil {
		return nil, fmt.Errorf("assemble catalog: %w", err)
	}

	result := &Result{
		Root:       root,
		Candidates: len(files),
		Catalog:    catalog,
		Failures:   failures,
		Duration:   time.Since(start),
	}
	b.logger.Info("catalog built",
		zap.Int("disruptive", catalog.Count(domain.Disruptive)),
		zap.Int("non_disruptive", catalog.Count(domain.NonDisruptive)),
		zap.Int("failed", len(failures)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// classify builds the record of a single test file.
func (b *Builder) classify(path string) (domain.TestRecord, error) {
	meta, err := b.metadata.Extract(path)
	if err != nil {
		return domain.TestRecord{}, err
	}

	impl, err := b.resolver.Resolve(path, meta.Class)
	if err != nil {
		return domain.TestRecord{}, err
	}

	return domain.TestRecord{
		ModulePath:          path,
		ModuleName:          filepath.Base(path),
		ComponentName:       filepath.Base(filepath.Dir(path)),
		Nature:              meta.Nature,
		VolumeTopologies:    meta.Topologies,
		ImplementationClass: impl,
	}, nil
}

func (b *Builder) finishProgress() {
	if b.progress != nil {
		b.progress.Finish()
	}
}
