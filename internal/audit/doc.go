// Package audit orchestrates the structural and traceability audits across a
// resolved repository scope. It wires scope resolution, role classification,
// golden-template checks, and requirement-to-test coverage into the audit
// command family and renders the aggregate report.
package audit
