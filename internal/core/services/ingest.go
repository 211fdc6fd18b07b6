package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts, chunks and indexes source files.
type IngestService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	index      driving.IndexService
	cfg        domain.ExtractionSettings
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	index driving.IndexService,
	cfg domain.ExtractionSettings,
) *IngestService {
	return &IngestService{
		extractors: extractors,
		chunker:    chunker,
		index:      index,
		cfg:        cfg,
	}
}

// IngestSource processes every file the source lists.
// Per-file extraction problems are recorded as warnings. An index failure
// stops the run and is returned with the report so far.
func (s *IngestService) IngestSource(ctx context.Context, source driven.DocumentSource) (*domain.IngestReport, error) {
	logger.Section("Ingest " + source.Root())
	report := &domain.IngestReport{}

	files, err := source.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list %s: %w", source.Root(), err)
	}
	logger.Debug("Found %d candidate files", len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		n, err := s.IngestFile(ctx, file)
		switch {
		case errors.Is(err, domain.ErrExtractionFailed):
			logger.Warn("Skipping %s: %v", file.Path, err)
			report.Warn(file.Path, err)
		case err != nil:
			return report, err
		default:
			report.Files++
			report.Fragments += n
		}
	}

	logger.Info("Ingested %d files (%d fragments), skipped %d", report.Files, report.Fragments, report.Skipped)
	return report, nil
}

// IngestFile extracts, chunks and indexes one file.
// Extraction problems return domain.ErrExtractionFailed; index problems
// return the index error unchanged.
func (s *IngestService) IngestFile(ctx context.Context, file domain.SourceFile) (int, error) {
	fragments, err := s.fragments(ctx, file)
	if err != nil {
		return 0, err
	}

	if err := s.index.Insert(ctx, fragments); err != nil {
		return 0, fmt.Errorf("index %s: %w", file.Path, err)
	}

	logger.Debug("Indexed %s: %d fragments", file.Path, len(fragments))
	return len(fragments), nil
}

// reindexFile is IngestFile for a document that may already be indexed:
// its previous fragments are replaced.
func (s *IngestService) reindexFile(ctx context.Context, file domain.SourceFile) (int, error) {
	fragments, err := s.fragments(ctx, file)
	if err != nil {
		return 0, err
	}

	if err := s.index.Replace(ctx, file.Path, fragments); err != nil {
		return 0, fmt.Errorf("reindex %s: %w", file.Path, err)
	}
	return len(fragments), nil
}

// fragments extracts and chunks one file.
func (s *IngestService) fragments(ctx context.Context, file domain.SourceFile) ([]domain.Fragment, error) {
	format := domain.FormatFromPath(file.Path)
	if !s.cfg.Allows(format) || !s.extractors.Supports(format) {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrExtractionFailed, domain.ErrUnsupportedFormat, filepath.Ext(file.Path))
	}

	if limit := s.cfg.MaxFileSizeBytes(); limit > 0 && file.Size > limit {
		return nil, fmt.Errorf("%w: file is %d bytes, limit is %d MB",
			domain.ErrExtractionFailed, file.Size, s.cfg.MaxFileSizeMB)
	}

	text, err := s.extractors.Extract(ctx, file.Path, format)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text content", domain.ErrExtractionFailed)
	}

	fragments := s.chunker.Chunk(file.Path, text, fileMetadata(file, format))
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments produced", domain.ErrExtractionFailed)
	}
	return fragments, nil
}

// Watch ingests created and updated files until ctx is cancelled.
// A changed file replaces its earlier fragments.
func (s *IngestService) Watch(ctx context.Context, source driven.DocumentSource) error {
	changes, err := source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", source.Root(), err)
	}
	logger.Info("Watching %s for changes", source.Root())

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			s.handleChange(ctx, change)
		}
	}
}

func (s *IngestService) handleChange(ctx context.Context, change domain.FileChange) {
	path := change.File.Path

	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		n, err := s.reindexFile(ctx, change.File)
		if err != nil {
			logger.Warn("Ingest of %s %s failed: %v", change.Type, path, err)
			return
		}
		logger.Info("Indexed %s file %s (%d fragments)", change.Type, path, n)
	case domain.ChangeDeleted:
		logger.Warn("%s was removed; its fragments remain until the index is cleared", path)
	}
}

func fileMetadata(file domain.SourceFile, format domain.Format) map[string]any {
	return map[string]any{
		domain.MetaSource:   file.Path,
		domain.MetaFilename: filepath.Base(file.Path),
		domain.MetaFileType: format.Extension(),
		domain.MetaFileSize: file.Size,
	}
}
