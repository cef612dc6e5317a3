// Package convert holds the single-purpose converters that leaf tasks call
// into. Each converter takes bytes and returns bytes; none of them touches
// the output tree or knows about pipelines.
//
// Converters backed by an external executable (lessc, cwebp) report a
// missing or unstartable binary as errors.ConverterUnavailableError and a
// rejected input as errors.SourceFormatError. In-process converters
// (minifier, sprite assembler, raster optimizer) only produce the latter.
package convert
