package domain

import "time"

// SourceFile is a file offered for ingestion by a document source.
type SourceFile struct {
	// Path is the absolute or source-relative file path. Used as the fragment SourceID.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// ChangeType describes a change observed by a watching source.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is a single change event from a watching source.
type FileChange struct {
	Type ChangeType
	File SourceFile
}

// IngestWarning records a non-fatal, per-file ingestion problem.
type IngestWarning struct {
	Path string
	Err  error
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Files is the number of files that produced at least one fragment.
	Files int

	// Fragments is the total number of fragments inserted.
	Fragments int

	// Skipped is the number of files that produced no fragments.
	Skipped int

	// Warnings holds one entry per skipped file.
	Warnings []IngestWarning
}

// Warn records a skipped file.
func (r *IngestReport) Warn(path string, err error) {
	r.Skipped++
	r.Warnings = append(r.Warnings, IngestWarning{Path: path, Err: err})
}
