package supervisor

import "github.com/ralphlabs/conductor/internal/agent"

// ShouldEscalate implements the lightweight loop-detector: no LLM call. If
// the last ten tool-use events contain three or fewer distinct (name,
// inputSummary) pairs, the caller should escalate to a full Check.
func ShouldEscalate(recentEvents []agent.Event) bool {
	var toolUses []agent.Event
	for i := len(recentEvents) - 1; i >= 0 && len(toolUses) < 10; i-- {
		if recentEvents[i].Type == agent.EventToolUse {
			toolUses = append(toolUses, recentEvents[i])
		}
	}
	if len(toolUses) < 10 {
		return false
	}

	distinct := make(map[string]struct{})
	for _, e := range toolUses {
		distinct[e.ToolName+"|"+e.ToolInputSummary] = struct{}{}
	}
	return len(distinct) <= 3
}
