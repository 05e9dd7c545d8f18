// Package scope derives the repository set an audit invocation applies to
// from the working directory and positional repository names.
package scope
