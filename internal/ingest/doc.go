// Package ingest turns uploaded or on-disk document bytes into normalized text.
//
// Documents arrive in whatever encoding the author's editor used. Decode
// tries UTF-8 first, then the common Chinese encodings, then Windows-1252,
// and finally falls back to UTF-8 with replacement characters. Line endings
// are normalized to LF so segmentation sees a single newline convention.
package ingest
