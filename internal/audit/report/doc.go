// Package report renders aggregated audit results as text, JSON, or CSV.
package report
