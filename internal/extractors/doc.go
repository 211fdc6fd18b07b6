// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to pull plain
// text out of one file format.
//
// Extractors are registered with the Registry at startup; the registry
// enforces which formats are enabled.
package extractors
