package safety_test

import (
	"testing"

	"github.com/Sameerk99/mental-health-hub/internal/safety"
	"github.com/stretchr/testify/assert"
)

func TestScanMatchesCrisisTerms(t *testing.T) {
	cases := []string{
		"I want to kill myself",
		"thinking about suicide lately",
		"I keep thinking about SELF-HARM",
		"maybe I should just end it all",
		"Kill Myself",
	}
	for _, msg := range cases {
		assert.True(t, safety.Scan(msg), "expected match: %q", msg)
	}
}

func TestScanIgnoresSafeMessages(t *testing.T) {
	cases := []string{
		"",
		"how do I start mood journaling?",
		"my sleep has been bad this week",
		"tell me about the breathing exercise",
	}
	for _, msg := range cases {
		assert.False(t, safety.Scan(msg), "unexpected match: %q", msg)
	}
}

func TestCrisisMessageListsResources(t *testing.T) {
	assert.Contains(t, safety.CrisisMessage, "1-800-273-8255")
	assert.Contains(t, safety.CrisisMessage, "741741")
	assert.Contains(t, safety.CrisisMessage, "911")
}
