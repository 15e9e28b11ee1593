// Package textutil provides filename sanitization and the naming scheme for
// per-unit and merged chapter audio files.
//
// Unit files are named {title}_{index:03d}.wav and merged chapters
// {title}_cat.wav, where title is the sanitized chapter title. The unit
// filename is the resumability key: a file with that name on disk means the
// unit is already done.
package textutil
