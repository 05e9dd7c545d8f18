// Package export flattens a directory tree into a single annotated text file,
// one banner per included source file, for sharing a repository snapshot as
// plain text.
package export
