// Package ctxkeys 定义在 context 中传递的运行标识。
package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	runIDKey          contextKey = "run_id"
	conversationIDKey contextKey = "conversation_id"
	speakerKey        contextKey = "speaker"
)

// WithRunID 设置 RunID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID 获取 RunID
func RunID(ctx context.Context) (string, bool) {
	return lookup(ctx, runIDKey)
}

// WithConversationID 设置会话 ID
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, conversationIDKey, conversationID)
}

// ConversationID 获取会话 ID
func ConversationID(ctx context.Context) (string, bool) {
	return lookup(ctx, conversationIDKey)
}

// WithSpeaker 设置当前发言者
func WithSpeaker(ctx context.Context, speaker string) context.Context {
	return context.WithValue(ctx, speakerKey, speaker)
}

// Speaker 获取当前发言者
func Speaker(ctx context.Context) (string, bool) {
	return lookup(ctx, speakerKey)
}

func lookup(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
