package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleEmit(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Emit(Event{Kind: Success, Message: "test_deploy.robot"})
	c.Emit(Event{Kind: Warning, Message: "falling back"})
	c.Emit(Event{Kind: Info, Message: "scanning"})

	out := buf.String()
	assert.Contains(t, out, "test_deploy.robot")
	assert.Contains(t, out, "falling back")
	assert.Contains(t, out, "scanning")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Emit(Event{Kind: Change, Message: "modified operation: deploy"})
	r.Emit(Event{Kind: Failure, Message: "scan failed"})

	events := r.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, Change, events[0].Kind)
	assert.Equal(t, []string{"modified operation: deploy", "scan failed"}, r.Messages())
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Emit(Event{Kind: Info, Message: "ignored"})
	})
}
