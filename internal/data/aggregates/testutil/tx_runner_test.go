package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_RollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailCommitTriggersRollback(t *testing.T) {
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{FailCommit: commitErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return nil
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit err, got %v", err)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailBeforeBodySkipsCallback(t *testing.T) {
	bodyErr := errors.New("lock timeout")
	r := &InjectedTxRunner{FailBeforeBody: bodyErr}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected injected err, got %v", err)
	}
	if called {
		t.Fatalf("callback should not run")
	}
	if r.RollbackCalls != 1 {
		t.Fatalf("rollback calls: want=1 got=%d", r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailsNthNestedSavepoint(t *testing.T) {
	nestedErr := errors.New("savepoint failed")
	r := &InjectedTxRunner{FailNested: nestedErr, NthNested: 2}
	var ran []int
	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		for i := 1; i <= 3; i++ {
			i := i
			if err := r.InNestedTx(dbc, func(_ dbctx.Context) error {
				ran = append(ran, i)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if !errors.Is(err, nestedErr) {
		t.Fatalf("expected nested err, got %v", err)
	}
	if len(ran) != 1 || ran[0] != 1 {
		t.Fatalf("bodies run: want=[1] got=%v", ran)
	}
	if r.NestedCalls != 2 {
		t.Fatalf("nested calls: want=2 got=%d", r.NestedCalls)
	}
}
