//go:build !llama

package backend

import "testing"

func TestLlamaStubReportsMissingDependency(t *testing.T) {
	_, err := NewLlamaFactory(LlamaOptions{ContextSize: 2048, Threads: 4})("m")(testCtx(t), t.TempDir())
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if LlamaBuilt {
		t.Fatalf("stub build must report LlamaBuilt=false")
	}
}
