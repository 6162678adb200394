package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ralphlabs/conductor/internal/agent"
)

const (
	handoverStart = "HANDOVER_START"
	handoverEnd   = "HANDOVER_END"
)

// readEventsFrom scans r line by line, decoding each through runner and
// returning the events plus the new byte offset (baseOffset plus the number
// of bytes consumed by complete lines). A final partial line — the
// live-growing-file / truncated-SIGKILL-tail case — is left unconsumed so a
// subsequent read picks it up once it completes.
func readEventsFrom(r io.Reader, baseOffset int64, runner agent.BackgroundRunner) ([]agent.Event, int64, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var events []agent.Event
	offset := baseOffset

	for {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			// No trailing newline: this is either true EOF or an in-progress
			// write. Either way, don't advance past it.
			if line != "" {
				break
			}
			break
		}
		if err != nil {
			return nil, offset, fmt.Errorf("reading worker log: %w", err)
		}

		offset += int64(len(line))
		if ev, ok := runner.DecodeLine(strings.TrimRight(line, "\n")); ok {
			events = append(events, ev)
		}
	}

	return events, offset, nil
}

// waitForExit polls until pid is no longer alive or ctx is done.
func waitForExit(ctx context.Context, pid int) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !agent.IsAlive(pid) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// parseCleanupLog reads the cleanup invocation's log and extracts the
// fenced handover summary plus final cost. Success requires both the fence
// and a terminal Result event with isError=false. When the cleanup
// invocation is killed before any Result event appears, its cost is
// estimated from the largest observed token counts, rates permitting.
func parseCleanupLog(logPath string, runner agent.BackgroundRunner, rates agent.Rates) (CleanupReport, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CleanupReport{Success: false}, nil
		}
		return CleanupReport{}, fmt.Errorf("reading cleanup log: %w", err)
	}

	var cost float64
	var isError bool
	var sawResult bool
	var sawAnyEvent bool
	var maxInputTokens, maxOutputTokens int
	var combinedText strings.Builder

	for _, line := range strings.Split(string(data), "\n") {
		ev, ok := runner.DecodeLine(line)
		if !ok {
			continue
		}
		sawAnyEvent = true
		switch ev.Type {
		case agent.EventAssistantText:
			combinedText.WriteString(ev.Text)
		case agent.EventResult:
			sawResult = true
			cost = ev.CostUSD
			isError = ev.IsError
			combinedText.WriteString(ev.ResultText)
		}
		if ev.InputTokens > maxInputTokens {
			maxInputTokens = ev.InputTokens
		}
		if ev.OutputTokens > maxOutputTokens {
			maxOutputTokens = ev.OutputTokens
		}
	}

	estimated := false
	if !sawResult && sawAnyEvent {
		cost = agent.EstimateCost(rates, maxInputTokens, maxOutputTokens)
		estimated = true
	}

	summary := extractHandover(combinedText.String())
	return CleanupReport{
		Success:         sawResult && !isError && summary != "",
		HandoverSummary: summary,
		CostUSD:         cost,
		Estimated:       estimated,
	}, nil
}

// extractHandover returns the text between the literal HANDOVER_START and
// HANDOVER_END tokens, or "" if the fence is not present. Chosen to survive
// embedding in markdown and JSON without a structured return channel.
func extractHandover(text string) string {
	start := strings.Index(text, handoverStart)
	if start < 0 {
		return ""
	}
	start += len(handoverStart)
	end := strings.Index(text[start:], handoverEnd)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}

// SynthesizeHandover builds a fallback handover summary from the log's last
// tool calls and last assistant thought, for use when gracefulShutdown's
// cleanup invocation returned no fenced summary at all.
func SynthesizeHandover(events []agent.Event) string {
	var lastText string
	var tools []string
	for _, e := range events {
		switch e.Type {
		case agent.EventAssistantText:
			lastText = e.Text
		case agent.EventToolUse:
			tools = append(tools, e.ToolName+"("+e.ToolInputSummary+")")
			if len(tools) > 10 {
				tools = tools[len(tools)-10:]
			}
		}
	}

	var b strings.Builder
	b.WriteString("Synthesized handover (no fenced summary was returned).\n")
	if lastText != "" {
		b.WriteString("Last assistant thought: ")
		b.WriteString(lastText)
		b.WriteString("\n")
	}
	if len(tools) > 0 {
		b.WriteString("Last tool calls: ")
		b.WriteString(strings.Join(tools, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
