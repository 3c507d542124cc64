package react

import (
	"fmt"
	"testing"

	"solvecheck/internal/agent/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowKeepsMostRecent(t *testing.T) {
	memory := SlidingWindowMemory(3)
	for i := 0; i < 5; i++ {
		memory.Add(ports.Message{Role: ports.RoleUser, Content: fmt.Sprint(i)})
	}

	msgs := memory.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "2", msgs[0].Content)
	assert.Equal(t, "4", msgs[2].Content)
}

func TestSlidingWindowDropsOrphanedToolResults(t *testing.T) {
	memory := SlidingWindowMemory(2)
	memory.Add(
		ports.Message{Role: ports.RoleAssistant, ToolCalls: []ports.ToolCall{{ID: "c1", Name: "calculate"}}},
		ports.Message{Role: ports.RoleTool, Content: "1", ToolCallID: "c1"},
		ports.Message{Role: ports.RoleAssistant, Content: "final"},
	)

	msgs := memory.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "final", msgs[0].Content)
}

func TestSlidingWindowDefaultSize(t *testing.T) {
	memory := SlidingWindowMemory(0)
	for i := 0; i < DefaultMemoryWindow+4; i++ {
		memory.Add(ports.Message{Role: ports.RoleUser})
	}
	assert.Equal(t, DefaultMemoryWindow, memory.Len())
}

func TestSlidingWindowMessagesIsACopy(t *testing.T) {
	memory := SlidingWindowMemory(2)
	memory.Add(ports.Message{Role: ports.RoleUser, Content: "x"})
	msgs := memory.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "x", memory.Messages()[0].Content)
}
