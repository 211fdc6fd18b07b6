// Package connectors provides implementations of the DocumentSource
// interface. Each connector knows how to list and watch the files of one
// kind of source; only the local filesystem is supported.
package connectors
