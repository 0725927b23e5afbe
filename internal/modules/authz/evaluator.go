package authz

import (
	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// Request is everything the evaluator needs to decide one call.
// UserBranch / TargetBranch may be uuid.Nil when no branch applies.
type Request struct {
	Role         Role
	Resource     Resource
	Action       Action
	UserBranch   uuid.UUID
	TargetBranch uuid.UUID

	// IsOwnData reports whether the target record belongs to the caller.
	// The caller establishes this; the evaluator only consumes it.
	IsOwnData bool
}

// Decision is the evaluator's verdict. NumericLimit, when non-nil, is an
// advisory cap the caller must enforce against the concrete amount.
// OwnDataOnly echoes the matched permission's condition so list endpoints
// can narrow their result set to the caller's own records.
type Decision struct {
	Allowed      bool
	NumericLimit *float64
	OwnDataOnly  bool
}

// Evaluator answers allow/deny questions against an immutable permission
// table. It is pure and safe for concurrent use.
//
// Precondition (not enforced here): every mutating entry point in the
// system calls Evaluate or Require before performing work. The evaluator
// trusts its caller to invoke it; it cannot gate operations it never sees.
type Evaluator struct {
	table Table
}

// NewEvaluator wraps a permission table. The table must not be mutated
// after this call.
func NewEvaluator(table Table) *Evaluator {
	return &Evaluator{table: table}
}

// Evaluate decides whether the role may perform the action on the resource.
// Deny-by-default: an absent resource or ungranted action denies.
func (e *Evaluator) Evaluate(req Request) Decision {
	perms, ok := e.table[req.Role]
	if !ok {
		return Decision{}
	}
	perm, ok := perms[req.Resource]
	if !ok {
		return Decision{}
	}
	if !perm.allows(req.Action) {
		return Decision{}
	}

	cond := perm.Conditions
	if cond.BranchScoped && !req.Role.BranchExempt() {
		if req.UserBranch != uuid.Nil && req.TargetBranch != uuid.Nil && req.UserBranch != req.TargetBranch {
			return Decision{}
		}
	}
	if cond.OwnDataOnly && !req.IsOwnData {
		return Decision{}
	}

	return Decision{Allowed: true, NumericLimit: cond.NumericLimit, OwnDataOnly: cond.OwnDataOnly}
}

// Require is Evaluate with an error result, for call sites that gate work.
// The returned error names only the required resource and action, never
// internal table details.
func (e *Evaluator) Require(req Request) (Decision, error) {
	d := e.Evaluate(req)
	if !d.Allowed {
		return d, apperr.PermissionDenied(string(req.Resource), string(req.Action))
	}
	return d, nil
}
