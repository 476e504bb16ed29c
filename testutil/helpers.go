// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供通用的测试辅助函数和断言
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	store := testutil.NewRedisStateStore(t)
//	testutil.AssertMessagesEqual(t, expected, actual)
// =============================================================================
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/agent/persistence"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, 30*time.Second)
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 💾 状态存储
// =============================================================================

// NewRedisStateStore 返回基于 miniredis 的状态存储，测试结束时自动关闭
func NewRedisStateStore(t *testing.T) *persistence.RedisStateStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := persistence.NewRedisStateStoreFromClient(client, "test:", 0)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewFileStateStore 返回位于临时目录的文件状态存储
func NewFileStateStore(t *testing.T) *persistence.FileStateStore {
	t.Helper()
	cfg := persistence.DefaultStoreConfig()
	cfg.Type = persistence.StoreTypeFile
	cfg.BaseDir = t.TempDir()
	store, err := persistence.NewFileStateStore(cfg)
	if err != nil {
		t.Fatalf("create file state store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// =============================================================================
// 🔍 断言辅助
// =============================================================================

// AssertMessagesEqual 按类型、发送者、文本与交接目标比较两个消息切片
func AssertMessagesEqual(t *testing.T, expected, actual []messages.Message) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Errorf("message count mismatch: expected %d, got %d", len(expected), len(actual))
		return
	}

	for i := range expected {
		e, a := expected[i], actual[i]
		if e.Kind() != a.Kind() {
			t.Errorf("message[%d] kind mismatch: expected %q, got %q", i, e.Kind(), a.Kind())
			continue
		}
		if e.Sender() != a.Sender() {
			t.Errorf("message[%d] sender mismatch: expected %q, got %q", i, e.Sender(), a.Sender())
		}
		if e.Text() != a.Text() {
			t.Errorf("message[%d] text mismatch: expected %q, got %q", i, e.Text(), a.Text())
		}
		eh, _ := messages.AsHandoff(e)
		ah, _ := messages.AsHandoff(a)
		if eh != nil && ah != nil && eh.Target != ah.Target {
			t.Errorf("message[%d] handoff target mismatch: expected %q, got %q", i, eh.Target, ah.Target)
		}
	}
}
