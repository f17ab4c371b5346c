package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a test helper for aggregate and service tests.
// It supports rollback/failure injection with or without a real DB. When
// Inner is set, bodies run in Inner's transactions and injected failures
// are returned from inside them, so the real transaction rolls back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error
	// FailNested fails the NthNested savepoint (1-based) before its body runs.
	FailNested error
	NthNested  int

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
	NestedCalls   int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}

	body := func(dbc dbctx.Context) error {
		if failBeforeBody != nil {
			return failBeforeBody
		}
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}

func (r *InjectedTxRunner) InNestedTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.NestedCalls++
	n := r.NestedCalls
	failNested := r.FailNested
	nth := r.NthNested
	r.mu.Unlock()

	if failNested != nil && (nth == 0 || nth == n) {
		return failNested
	}
	if r.Inner != nil {
		return r.Inner.InNestedTx(dbc, fn)
	}
	if fn == nil {
		return nil
	}
	return fn(dbc)
}
