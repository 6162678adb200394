package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	rates := Rates{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
	got := EstimateCost(rates, 1_000_000, 1_000_000)
	assert.InDelta(t, 18.0, got, 0.0001)
}

func TestEstimateCost_Zero(t *testing.T) {
	rates := Rates{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
	assert.Equal(t, 0.0, EstimateCost(rates, 0, 0))
}

func TestAggregator_PrefersAuthoritativeResult(t *testing.T) {
	var agg aggregator
	agg.observe(Event{Type: EventInit, SessionID: "s1"})
	agg.observe(Event{Type: EventAssistantText, Text: "partial", InputTokens: 50, OutputTokens: 10})
	agg.observe(Event{Type: EventResult, ResultText: "done", CostUSD: 0.05, SessionID: "s1"})

	rates := Rates{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
	res := agg.finalize(rates, time.Second)

	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, "done", res.ResultText)
	assert.Equal(t, 0.05, res.CostUSD)
	assert.False(t, res.Estimated)
}

func TestAggregator_EstimatesWhenNoResult(t *testing.T) {
	var agg aggregator
	agg.observe(Event{Type: EventInit, SessionID: "s1"})
	agg.observe(Event{Type: EventAssistantText, Text: "partial", InputTokens: 200, OutputTokens: 100})

	rates := Rates{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
	res := agg.finalize(rates, 2*time.Second)

	assert.True(t, res.Estimated)
	assert.True(t, res.IsError)
	assert.Greater(t, res.CostUSD, 0.0)
	assert.Equal(t, int64(2000), res.DurationMs)
}
