package supervisor

import (
	"testing"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/stretchr/testify/assert"
)

func TestParseDecision_WellFormed(t *testing.T) {
	d, ok := parseDecision(`some chatter {"decision": "orchestrate", "reason": "looping"} trailing`)
	assert.True(t, ok)
	assert.Equal(t, ActionOrchestrate, d.Action)
	assert.Equal(t, "looping", d.Reason)
}

func TestParseDecision_DefaultsOnGarbage(t *testing.T) {
	_, ok := parseDecision("no json here at all")
	assert.False(t, ok)
}

func TestParseDecision_SkipsUnrelatedObjectFirst(t *testing.T) {
	d, ok := parseDecision(`{"unrelated": true} {"decision": "continue", "reason": "fine"}`)
	assert.True(t, ok)
	assert.Equal(t, ActionContinue, d.Action)
}

func TestParseDecision_RejectsInvalidDecisionValue(t *testing.T) {
	_, ok := parseDecision(`{"decision": "stop", "reason": "x"}`)
	assert.False(t, ok)
}

func TestShouldEscalate_FewerThanTenToolUses(t *testing.T) {
	events := make([]agent.Event, 5)
	for i := range events {
		events[i] = agent.Event{Type: agent.EventToolUse, ToolName: "Edit", ToolInputSummary: "a"}
	}
	assert.False(t, ShouldEscalate(events))
}

func TestShouldEscalate_RepeatingPattern(t *testing.T) {
	events := make([]agent.Event, 10)
	for i := range events {
		name := "Edit"
		if i%2 == 0 {
			name = "Read"
		}
		events[i] = agent.Event{Type: agent.EventToolUse, ToolName: name, ToolInputSummary: "same"}
	}
	assert.True(t, ShouldEscalate(events))
}

func TestShouldEscalate_DiverseToolUse(t *testing.T) {
	events := make([]agent.Event, 10)
	for i := range events {
		events[i] = agent.Event{Type: agent.EventToolUse, ToolName: "Edit", ToolInputSummary: string(rune('a' + i))}
	}
	assert.False(t, ShouldEscalate(events))
}
