package materials

import (
	"context"
	"fmt"

	"asset-binder/core/binding"
)

const (
	OnDirtyCommit = "commit"
	OnDirtyRevert = "revert"
)

// Policy returns a confirmer that settles pending edits with onDirty ("commit" or
// "revert") without asking. With abort set, the decision also asks the caller to stop
// the flow that triggered the teardown. An empty onDirty returns a nil confirmer, so
// a dirty teardown is refused with binding.ErrConfirmationRequired.
func Policy(onDirty string, abort bool) (binding.Confirmer, error) {
	var resolution binding.Resolution
	switch onDirty {
	case "":
		return nil, nil
	case OnDirtyCommit:
		resolution = binding.ResolutionCommit
	case OnDirtyRevert:
		resolution = binding.ResolutionRevert
	default:
		return nil, fmt.Errorf("invalid on_dirty %q, want %s or %s", onDirty, OnDirtyCommit, OnDirtyRevert)
	}

	decision := binding.Decision{Resolution: resolution, Aborted: abort}
	return binding.ConfirmFunc(func(ctx context.Context, cfg binding.ImportConfiguration) (binding.Decision, error) {
		return decision, nil
	}), nil
}
