// Package requirements extracts requirement identifiers and their
// descriptions from a repository's documentation corpus.
package requirements
