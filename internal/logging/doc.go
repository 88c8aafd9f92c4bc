// Package logging builds the slog loggers used across curator. The
// console format is a single line per record with flattened key=value
// attributes; the json format is standard slog JSON with lowercase
// levels and RFC3339 timestamps.
package logging
