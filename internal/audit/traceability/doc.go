// Package traceability joins requirement definitions with verification links
// into a per-repository coverage matrix.
package traceability
