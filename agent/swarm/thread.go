package swarm

import (
	"github.com/BaSui01/swarmflow/agent/messages"
)

// Thread is the append-only message log shared by a team and its manager.
// It is replaced wholesale only by a state load and cleared only by a reset.
type Thread struct {
	messages []messages.Message
}

func NewThread() *Thread {
	return &Thread{}
}

// Append adds messages to the end of the thread.
func (t *Thread) Append(msgs ...messages.Message) {
	t.messages = append(t.messages, msgs...)
}

// Messages returns a copy of the thread contents.
func (t *Thread) Messages() []messages.Message {
	out := make([]messages.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Thread) Len() int {
	return len(t.messages)
}

// latestHandoff returns the most recent handoff in the thread.
func (t *Thread) latestHandoff() (*messages.HandoffMessage, bool) {
	return latestHandoff(t.messages)
}

func (t *Thread) replace(msgs []messages.Message) {
	t.messages = msgs
}

func (t *Thread) clear() {
	t.messages = nil
}

// latestHandoff scans msgs from newest to oldest.
func latestHandoff(msgs []messages.Message) (*messages.HandoffMessage, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if h, ok := messages.AsHandoff(msgs[i]); ok {
			return h, true
		}
	}
	return nil, false
}
