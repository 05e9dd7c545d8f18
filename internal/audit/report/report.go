package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/structure"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/traceability"
)

// Format selects the rendering of an audit report.
type Format string

// Supported report formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// TernaryValue represents yes/no/not-applicable values used in reports.
type TernaryValue string

// Supported ternary values.
const (
	TernaryValueYes           TernaryValue = "yes"
	TernaryValueNo            TernaryValue = "no"
	TernaryValueNotApplicable TernaryValue = "n/a"
)

const (
	invalidFormatMessageTemplateConstant = "invalid report format %q: expected %s"

	runHeaderLineTemplateConstant               = "AUDIT-RUN: %s (%s)"
	structureOKLineTemplateConstant             = "STRUCTURE-OK: %s (role=%s)"
	structureFailLineTemplateConstant           = "STRUCTURE-FAIL: %s (role=%s)"
	structureUnknownRoleLineTemplateConstant    = "STRUCTURE-UNKNOWN-ROLE: %s"
	structureMissingLineTemplateConstant        = "STRUCTURE-MISSING: %s %s (%s)"
	structureMissingServiceLineTemplateConstant = "STRUCTURE-MISSING: %s %s (%s, service=%s)"
	structureUnexpectedLineTemplateConstant     = "STRUCTURE-UNEXPECTED: %s %s"
	structureSummaryLineTemplateConstant        = "SUMMARY: %d repositories audited, %d compliant, %d non-compliant, %d unknown role"
	traceabilityRowLineTemplateConstant         = "TRACE-ROW: %s %s tests=%d covered=%s"
	traceabilityOrphanLineTemplateConstant      = "TRACE-ORPHAN: %s %s -> %s"
	traceabilityWarningLineTemplateConstant     = "TRACE-WARNING: %s %s"
	traceabilitySummaryLineTemplateConstant     = "SUMMARY: %d requirements, %d covered (%.1f%%), %d orphans"

	lineBreakConstant         = "\n"
	testListSeparatorConstant = ";"
	jsonIndentConstant        = "  "
)

var (
	structureCSVHeader    = []string{"repository", "role", "status", "severity", "path", "service"}
	traceabilityCSVHeader = []string{"repository", "requirement", "description", "test_count", "covered", "tests"}
)

// InvalidFormatError reports a format value outside the supported set.
type InvalidFormatError struct {
	Value string
}

func (formatError InvalidFormatError) Error() string {
	return fmt.Sprintf(invalidFormatMessageTemplateConstant, formatError.Value, strings.Join(SupportedFormatNames(), ", "))
}

// SupportedFormatNames lists the accepted format flag values.
func SupportedFormatNames() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatCSV)}
}

// ParseFormat normalizes and validates a format value.
func ParseFormat(value string) (Format, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch Format(normalizedValue) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", InvalidFormatError{Value: value}
	}
}

// RepositoryTraceability carries one repository's coverage matrix and the
// warnings raised while building it.
type RepositoryTraceability struct {
	Repository string              `json:"repository"`
	Matrix     traceability.Matrix `json:"matrix"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Report aggregates one audit run across every repository in scope.
type Report struct {
	RunID        string                                `json:"run_id"`
	GeneratedAt  time.Time                             `json:"generated_at"`
	Structure    []structure.RepositoryStructureResult `json:"structure,omitempty"`
	Traceability []RepositoryTraceability              `json:"traceability,omitempty"`
}

// StructureReportRow models a single structural CSV record.
type StructureReportRow struct {
	Repository string
	Role       string
	Status     string
	Severity   string
	Path       string
	Service    string
}

// CSVRecord returns the row formatted for CSV encoding.
func (row StructureReportRow) CSVRecord() []string {
	return []string{
		row.Repository,
		row.Role,
		row.Status,
		row.Severity,
		row.Path,
		row.Service,
	}
}

// TraceabilityReportRow models a single coverage CSV record.
type TraceabilityReportRow struct {
	Repository  string
	Requirement string
	Description string
	TestCount   int
	Covered     TernaryValue
	Tests       string
}

// CSVRecord returns the row formatted for CSV encoding.
func (row TraceabilityReportRow) CSVRecord() []string {
	return []string{
		row.Repository,
		row.Requirement,
		row.Description,
		strconv.Itoa(row.TestCount),
		string(row.Covered),
		row.Tests,
	}
}

// Render writes the report to the writer in the requested format.
func Render(outputWriter io.Writer, auditReport Report, format Format) error {
	switch format {
	case FormatText:
		return renderText(outputWriter, auditReport)
	case FormatJSON:
		return renderJSON(outputWriter, auditReport)
	case FormatCSV:
		return renderCSV(outputWriter, auditReport)
	default:
		return InvalidFormatError{Value: string(format)}
	}
}

func renderText(outputWriter io.Writer, auditReport Report) error {
	var reportBuilder strings.Builder
	reportBuilder.WriteString(fmt.Sprintf(runHeaderLineTemplateConstant, auditReport.RunID, auditReport.GeneratedAt.Format(time.RFC3339)))
	reportBuilder.WriteString(lineBreakConstant)

	if len(auditReport.Structure) > 0 {
		appendStructureText(&reportBuilder, auditReport.Structure)
	}
	if len(auditReport.Traceability) > 0 {
		appendTraceabilityText(&reportBuilder, auditReport.Traceability)
	}

	_, writeError := io.WriteString(outputWriter, reportBuilder.String())
	return writeError
}

func appendStructureText(reportBuilder *strings.Builder, structureResults []structure.RepositoryStructureResult) {
	compliantCount := 0
	unknownRoleCount := 0
	for _, structureResult := range structureResults {
		switch {
		case structureResult.RoleUnknown:
			unknownRoleCount++
			reportBuilder.WriteString(fmt.Sprintf(structureUnknownRoleLineTemplateConstant, structureResult.Repository))
		case structureResult.Compliant:
			compliantCount++
			reportBuilder.WriteString(fmt.Sprintf(structureOKLineTemplateConstant, structureResult.Repository, structureResult.Role))
		default:
			reportBuilder.WriteString(fmt.Sprintf(structureFailLineTemplateConstant, structureResult.Repository, structureResult.Role))
		}
		reportBuilder.WriteString(lineBreakConstant)

		for _, finding := range structureResult.Findings {
			switch finding.Status {
			case structure.FindingStatusMissing:
				if len(finding.Service) > 0 {
					reportBuilder.WriteString(fmt.Sprintf(structureMissingServiceLineTemplateConstant, structureResult.Repository, finding.Path, finding.Severity, finding.Service))
				} else {
					reportBuilder.WriteString(fmt.Sprintf(structureMissingLineTemplateConstant, structureResult.Repository, finding.Path, finding.Severity))
				}
				reportBuilder.WriteString(lineBreakConstant)
			case structure.FindingStatusUnexpected:
				reportBuilder.WriteString(fmt.Sprintf(structureUnexpectedLineTemplateConstant, structureResult.Repository, finding.Path))
				reportBuilder.WriteString(lineBreakConstant)
			}
		}
	}

	nonCompliantCount := len(structureResults) - compliantCount - unknownRoleCount
	reportBuilder.WriteString(fmt.Sprintf(structureSummaryLineTemplateConstant, len(structureResults), compliantCount, nonCompliantCount, unknownRoleCount))
	reportBuilder.WriteString(lineBreakConstant)
}

func appendTraceabilityText(reportBuilder *strings.Builder, traceabilityResults []RepositoryTraceability) {
	totalRequirements := 0
	coveredRequirements := 0
	orphanCount := 0
	for _, traceabilityResult := range traceabilityResults {
		totalRequirements += traceabilityResult.Matrix.TotalRequirements
		coveredRequirements += traceabilityResult.Matrix.CoveredRequirements
		orphanCount += len(traceabilityResult.Matrix.Orphans)

		for _, coverageRow := range traceabilityResult.Matrix.Rows {
			reportBuilder.WriteString(fmt.Sprintf(
				traceabilityRowLineTemplateConstant,
				traceabilityResult.Repository,
				coverageRow.RequirementID,
				coverageRow.TestCount,
				ternaryFromBoolean(coverageRow.Covered),
			))
			reportBuilder.WriteString(lineBreakConstant)
		}
		for _, orphanVerification := range traceabilityResult.Matrix.Orphans {
			reportBuilder.WriteString(fmt.Sprintf(
				traceabilityOrphanLineTemplateConstant,
				traceabilityResult.Repository,
				orphanVerification.RequirementID,
				orphanVerification.TestID,
			))
			reportBuilder.WriteString(lineBreakConstant)
		}
		for _, warningMessage := range traceabilityResult.Warnings {
			reportBuilder.WriteString(fmt.Sprintf(traceabilityWarningLineTemplateConstant, traceabilityResult.Repository, warningMessage))
			reportBuilder.WriteString(lineBreakConstant)
		}
	}

	coveragePercent := 100.0
	if totalRequirements > 0 {
		coveragePercent = float64(coveredRequirements) / float64(totalRequirements) * 100.0
	}
	reportBuilder.WriteString(fmt.Sprintf(traceabilitySummaryLineTemplateConstant, totalRequirements, coveredRequirements, coveragePercent, orphanCount))
	reportBuilder.WriteString(lineBreakConstant)
}

func renderJSON(outputWriter io.Writer, auditReport Report) error {
	encodedReport, marshalError := json.MarshalIndent(auditReport, "", jsonIndentConstant)
	if marshalError != nil {
		return marshalError
	}
	_, writeError := outputWriter.Write(append(encodedReport, []byte(lineBreakConstant)...))
	return writeError
}

func renderCSV(outputWriter io.Writer, auditReport Report) error {
	csvWriter := csv.NewWriter(outputWriter)

	if len(auditReport.Structure) > 0 {
		if writeError := csvWriter.Write(structureCSVHeader); writeError != nil {
			return writeError
		}
		for _, structureResult := range auditReport.Structure {
			for _, finding := range structureResult.Findings {
				reportRow := StructureReportRow{
					Repository: structureResult.Repository,
					Role:       string(structureResult.Role),
					Status:     string(finding.Status),
					Severity:   string(finding.Severity),
					Path:       finding.Path,
					Service:    finding.Service,
				}
				if writeError := csvWriter.Write(reportRow.CSVRecord()); writeError != nil {
					return writeError
				}
			}
		}
	}

	if len(auditReport.Traceability) > 0 {
		if writeError := csvWriter.Write(traceabilityCSVHeader); writeError != nil {
			return writeError
		}
		for _, traceabilityResult := range auditReport.Traceability {
			for _, coverageRow := range traceabilityResult.Matrix.Rows {
				reportRow := TraceabilityReportRow{
					Repository:  traceabilityResult.Repository,
					Requirement: coverageRow.RequirementID,
					Description: coverageRow.Description,
					TestCount:   coverageRow.TestCount,
					Covered:     ternaryFromBoolean(coverageRow.Covered),
					Tests:       strings.Join(coverageRow.Tests, testListSeparatorConstant),
				}
				if writeError := csvWriter.Write(reportRow.CSVRecord()); writeError != nil {
					return writeError
				}
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func ternaryFromBoolean(value bool) TernaryValue {
	if value {
		return TernaryValueYes
	}
	return TernaryValueNo
}
