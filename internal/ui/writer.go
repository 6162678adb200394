package ui

import (
	"bytes"

	tea "charm.land/bubbletea/v2"
)

// ChannelWriter adapts the Engine's plain-text progress output into
// AgentOutputMsg values on ch, so the same printf call sites serve both the
// default CLI output and the optional dashboard's worker-output tail.
type ChannelWriter struct {
	ch  chan<- tea.Msg
	buf bytes.Buffer
}

// NewChannelWriter returns a writer that forwards complete lines to ch.
func NewChannelWriter(ch chan<- tea.Msg) *ChannelWriter {
	return &ChannelWriter{ch: ch}
}

func (w *ChannelWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	data := w.buf.Bytes()
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		w.ch <- AgentOutputMsg{Text: string(data[:idx])}
		data = data[idx+1:]
	}
	rest := append([]byte(nil), data...)
	w.buf.Reset()
	w.buf.Write(rest)
	return len(p), nil
}
