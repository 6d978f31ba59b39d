package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Build hooks
	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "w", 12)
	b.OnBuildComplete(ctx, "w", 40, 45, time.Second, nil)
	b.OnLineSkipped(ctx, "w", "illegal_move")
	b.OnInferComplete(ctx, "w", 3, 2, time.Millisecond)

	// Practice hooks
	NoopPracticeHooks{}.OnRoundComplete(ctx, "b", "success", 9)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "explorer")
	c.OnCacheMiss(ctx, "explorer")
	c.OnCacheSet(ctx, "explorer", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "explorer.lichess.ovh", "/lichess")
	h.OnResponse(ctx, "GET", "explorer.lichess.ovh", "/lichess", 200, time.Second)
	h.OnError(ctx, "GET", "explorer.lichess.ovh", "/lichess", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Practice().(NoopPracticeHooks); !ok {
		t.Error("Practice() should return NoopPracticeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customPractice := &testPracticeHooks{}
	SetPracticeHooks(customPractice)
	if Practice() != customPractice {
		t.Error("SetPracticeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)

	// Setting nil should be ignored
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testBuildHooks struct{ NoopBuildHooks }
type testPracticeHooks struct{ NoopPracticeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
