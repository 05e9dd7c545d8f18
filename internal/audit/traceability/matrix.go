package traceability

import (
	"sort"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/requirements"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/verification"
)

const fullCoveragePercentConstant = 100.0

// CoverageRow reports how many distinct tests verify one requirement.
type CoverageRow struct {
	RequirementID string   `json:"requirement_id"`
	Description   string   `json:"description"`
	TestCount     int      `json:"test_count"`
	Covered       bool     `json:"covered"`
	Tests         []string `json:"tests,omitempty"`
}

// OrphanVerification is a link whose requirement identifier has no
// definition in the corpus.
type OrphanVerification struct {
	RequirementID string `json:"requirement_id"`
	TestID        string `json:"test_id"`
}

// Matrix joins requirement definitions with verification links for one
// repository.
type Matrix struct {
	Rows                []CoverageRow        `json:"rows"`
	Orphans             []OrphanVerification `json:"orphans,omitempty"`
	TotalRequirements   int                  `json:"total_requirements"`
	CoveredRequirements int                  `json:"covered_requirements"`
}

// CoveragePercent is the covered share of all requirements. An empty corpus
// counts as fully covered.
func (matrix Matrix) CoveragePercent() float64 {
	if matrix.TotalRequirements == 0 {
		return fullCoveragePercentConstant
	}
	return float64(matrix.CoveredRequirements) / float64(matrix.TotalRequirements) * fullCoveragePercentConstant
}

// UncoveredCount is the number of requirements without any verification link.
func (matrix Matrix) UncoveredCount() int {
	return matrix.TotalRequirements - matrix.CoveredRequirements
}

// BuildMatrix left-joins requirements to verification links on the
// requirement identifier. Duplicate links collapse, rows sort by identifier,
// and links without a matching definition become orphans.
func BuildMatrix(definedRequirements []requirements.Requirement, verificationLinks []verification.VerificationLink) Matrix {
	testsByRequirement := make(map[string]map[string]struct{})
	for _, verificationLink := range verificationLinks {
		testSet, setExists := testsByRequirement[verificationLink.RequirementID]
		if !setExists {
			testSet = make(map[string]struct{})
			testsByRequirement[verificationLink.RequirementID] = testSet
		}
		testSet[verificationLink.TestID] = struct{}{}
	}

	definedIdentifiers := make(map[string]struct{}, len(definedRequirements))
	coverageRows := make([]CoverageRow, 0, len(definedRequirements))
	for _, definedRequirement := range definedRequirements {
		if _, alreadySeen := definedIdentifiers[definedRequirement.Identifier]; alreadySeen {
			continue
		}
		definedIdentifiers[definedRequirement.Identifier] = struct{}{}

		testIdentifiers := sortedTestIdentifiers(testsByRequirement[definedRequirement.Identifier])
		coverageRows = append(coverageRows, CoverageRow{
			RequirementID: definedRequirement.Identifier,
			Description:   definedRequirement.Description,
			TestCount:     len(testIdentifiers),
			Covered:       len(testIdentifiers) > 0,
			Tests:         testIdentifiers,
		})
	}
	sort.Slice(coverageRows, func(firstIndex, secondIndex int) bool {
		return coverageRows[firstIndex].RequirementID < coverageRows[secondIndex].RequirementID
	})

	orphanSet := make(map[OrphanVerification]struct{})
	for _, verificationLink := range verificationLinks {
		if _, defined := definedIdentifiers[verificationLink.RequirementID]; defined {
			continue
		}
		orphanSet[OrphanVerification{
			RequirementID: verificationLink.RequirementID,
			TestID:        verificationLink.TestID,
		}] = struct{}{}
	}
	orphanVerifications := make([]OrphanVerification, 0, len(orphanSet))
	for orphanVerification := range orphanSet {
		orphanVerifications = append(orphanVerifications, orphanVerification)
	}
	sort.Slice(orphanVerifications, func(firstIndex, secondIndex int) bool {
		if orphanVerifications[firstIndex].RequirementID != orphanVerifications[secondIndex].RequirementID {
			return orphanVerifications[firstIndex].RequirementID < orphanVerifications[secondIndex].RequirementID
		}
		return orphanVerifications[firstIndex].TestID < orphanVerifications[secondIndex].TestID
	})

	coveredRequirementCount := 0
	for _, coverageRow := range coverageRows {
		if coverageRow.Covered {
			coveredRequirementCount++
		}
	}

	matrix := Matrix{
		Rows:                coverageRows,
		TotalRequirements:   len(coverageRows),
		CoveredRequirements: coveredRequirementCount,
	}
	if len(orphanVerifications) > 0 {
		matrix.Orphans = orphanVerifications
	}
	return matrix
}

func sortedTestIdentifiers(testSet map[string]struct{}) []string {
	if len(testSet) == 0 {
		return nil
	}
	testIdentifiers := make([]string, 0, len(testSet))
	for testIdentifier := range testSet {
		testIdentifiers = append(testIdentifiers, testIdentifier)
	}
	sort.Strings(testIdentifiers)
	return testIdentifiers
}
