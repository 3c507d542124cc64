package react

import (
	"sync"

	"solvecheck/internal/agent/ports"
)

// DefaultMemoryWindow is the number of conversation messages retained per agent.
const DefaultMemoryWindow = 10

// Memory stores the conversation an agent replays to the LLM on every turn.
type Memory interface {
	Add(msgs ...ports.Message)
	Messages() []ports.Message
	Len() int
}

// slidingWindowMemory retains the most recent messages up to a fixed size.
// The system prompt is held by the engine and never occupies a slot.
type slidingWindowMemory struct {
	mu       sync.Mutex
	size     int
	messages []ports.Message
}

// SlidingWindowMemory creates a memory that keeps the last size messages.
// A non-positive size falls back to DefaultMemoryWindow.
func SlidingWindowMemory(size int) Memory {
	if size <= 0 {
		size = DefaultMemoryWindow
	}
	return &slidingWindowMemory{size: size}
}

func (m *slidingWindowMemory) Add(msgs ...ports.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
	if len(m.messages) > m.size {
		m.messages = m.messages[len(m.messages)-m.size:]
	}
	// A tool result whose assistant turn was evicted is rejected by the API.
	for len(m.messages) > 0 && m.messages[0].Role == ports.RoleTool {
		m.messages = m.messages[1:]
	}
}

func (m *slidingWindowMemory) Messages() []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *slidingWindowMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
