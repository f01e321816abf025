package spanctx_test

import (
	"context"
	"testing"

	"agentstack/pipeline/internal/sdk/span"
	"agentstack/pipeline/internal/sdk/spanctx"

	"github.com/stretchr/testify/assert"
)

func newID(id string) func() string {
	return func() string { return id }
}

func TestCurrent_NoSpanReturnsNil(t *testing.T) {
	// Arrange
	ctx := context.Background()

	// Act & Assert
	assert.Nil(t, spanctx.Current(ctx))
	assert.Equal(t, "", spanctx.CurrentTraceID(ctx))
	assert.Equal(t, "", spanctx.CurrentSpanID(ctx))
}

func TestWithSpan_PushesOntoStack(t *testing.T) {
	// Arrange
	ctx := context.Background()
	root := span.New("", "", "root", "svc", newID("root-span"))

	// Act
	ctx = spanctx.WithSpan(ctx, root)

	// Assert
	assert.Same(t, root, spanctx.Current(ctx))
	assert.Equal(t, root.TraceID, spanctx.CurrentTraceID(ctx))
	assert.Equal(t, "root-span", spanctx.CurrentSpanID(ctx))
}

func TestWithSpan_ChildShadowsParentInChildContextOnly(t *testing.T) {
	// Arrange
	parentCtx := context.Background()
	root := span.New("trace-1", "", "root", "svc", newID("root-span"))
	parentCtx = spanctx.WithSpan(parentCtx, root)

	// Act
	child := span.New(root.TraceID, root.SpanID, "child", "svc", newID("child-span"))
	childCtx := spanctx.WithSpan(parentCtx, child)

	// Assert: child context sees the child span...
	assert.Same(t, child, spanctx.Current(childCtx))
	// ...but the original parent context is unaffected (copy-on-write).
	assert.Same(t, root, spanctx.Current(parentCtx))
}
