package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestExecuteWriteObservesStatus(t *testing.T) {
	cases := []struct {
		name       string
		body       error
		wantStatus string
		conflicts  int
		retries    int
	}{
		{"success", nil, "success", 0, 0},
		{"validation", ValidationError("bad"), string(domainagg.CodeValidation), 0, 0},
		{"conflict", ConflictError("stale"), string(domainagg.CodeConflict), 1, 0},
		{"retryable", RetryableError("lock timeout"), string(domainagg.CodeRetryable), 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			runner := &spyTxRunner{}
			err := executeWrite(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, domainagg.RewardAggregateContract, "aggregate.test."+tc.name,
				func(_ dbctx.Context) error { return tc.body })
			if (err == nil) != (tc.body == nil) {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0].Status != tc.wantStatus {
				t.Fatalf("operations: %+v", hooks.Operations)
			}
			if len(hooks.Conflicts) != tc.conflicts || len(hooks.Retries) != tc.retries {
				t.Fatalf("conflicts=%v retries=%v", hooks.Conflicts, hooks.Retries)
			}
			if tc.body == nil && runner.CommitCalls != 1 {
				t.Fatalf("expected commit, got %d", runner.CommitCalls)
			}
			if tc.body != nil && runner.RollbackCalls != 1 {
				t.Fatalf("expected rollback, got %d", runner.RollbackCalls)
			}
		})
	}
}

func TestExecuteWriteRefusesCallerOwnedContract(t *testing.T) {
	hooks := &spyHooks{}
	runner := &spyTxRunner{}
	contract := domainagg.Contract{Name: "test.CallerOwned", WriteTxOwnership: domainagg.WriteTxOwnedByCaller}
	ran := false
	err := executeWrite(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, contract, "aggregate.test.caller",
		func(_ dbctx.Context) error { ran = true; return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("want internal error, got %v", err)
	}
	if ran || runner.CommitCalls != 0 {
		t.Fatalf("write body must not run: ran=%v commits=%d", ran, runner.CommitCalls)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInternal) {
		t.Fatalf("operations: %+v", hooks.Operations)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct {
	CommitCalls   int
	RollbackCalls int
}

func (r *spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }

func (h *spyHooks) IncRetry(name string) { h.Retries = append(h.Retries, name) }
