package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
)

func TestConfirmationPolicyFromBool(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		assumeYes       bool
		expectedPolicy  shared.ConfirmationPolicy
		shouldPrompt    bool
		shouldAssumeYes bool
	}{
		{
			name:            "prompting_policy",
			assumeYes:       false,
			expectedPolicy:  shared.ConfirmationPrompt,
			shouldPrompt:    true,
			shouldAssumeYes: false,
		},
		{
			name:            "assume_yes_policy",
			assumeYes:       true,
			expectedPolicy:  shared.ConfirmationAssumeYes,
			shouldPrompt:    false,
			shouldAssumeYes: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			policy := shared.ConfirmationPolicyFromBool(testCase.assumeYes)
			require.Equal(t, testCase.expectedPolicy, policy)
			require.Equal(t, testCase.shouldPrompt, policy.ShouldPrompt())
			require.Equal(t, testCase.shouldAssumeYes, policy.ShouldAssumeYes())
		})
	}
}

func TestSystemClockNow(t *testing.T) {
	before := time.Now()
	observed := shared.SystemClock{}.Now()
	after := time.Now()

	require.False(t, observed.Before(before))
	require.False(t, observed.After(after))
}
