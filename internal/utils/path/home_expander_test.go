package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/novaeco-tech/novaeco-devtools/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join("/home", "agronomist")

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde_resolves_to_home", candidatePath: "~", expectedPath: homeDirectory},
		{name: "tilde_prefix_joins_home", candidatePath: "~/repos", expectedPath: filepath.Join(homeDirectory, "repos")},
		{name: "absolute_path_unchanged", candidatePath: "/var/data", expectedPath: "/var/data"},
		{name: "relative_path_unchanged", candidatePath: "repos", expectedPath: "repos"},
		{name: "empty_path_unchanged", candidatePath: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return homeDirectory, nil
			})

			require.Equal(subtestInstance, testCase.expectedPath, homeExpander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderKeepsTildeWhenHomeLookupFails(testInstance *testing.T) {
	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})

	require.Equal(testInstance, "~/repos", homeExpander.Expand("~/repos"))
}

func TestNilHomeExpanderReturnsCandidateUnchanged(testInstance *testing.T) {
	var homeExpander *pathutils.HomeExpander

	require.Equal(testInstance, "~/repos", homeExpander.Expand("~/repos"))
}
