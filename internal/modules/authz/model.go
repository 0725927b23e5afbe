package authz

// Role is the fixed set of staff roles. Roles are assigned to users and
// never change meaning at runtime.
type Role string

const (
	RoleProductOwner Role = "PRODUCT_OWNER"
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleManager      Role = "MANAGER"
	RolePharmacist   Role = "PHARMACIST"
	RoleCashier      Role = "CASHIER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProductOwner, RoleSuperAdmin, RoleManager, RolePharmacist, RoleCashier:
		return true
	}
	return false
}

// BranchExempt reports whether the role operates above branch boundaries.
func (r Role) BranchExempt() bool {
	return r == RoleProductOwner || r == RoleSuperAdmin
}

// Resource identifies a protected part of the system.
type Resource string

const (
	ResourceBranch    Resource = "branch"
	ResourceProduct   Resource = "product"
	ResourceInventory Resource = "inventory"
	ResourceSale      Resource = "sale"
	ResourceCustomer  Resource = "customer"
	ResourceUser      Resource = "user"
	ResourceReport    Resource = "report"
	ResourceSettings  Resource = "settings"
)

// Action is a verb a role may be granted on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionManage  Action = "manage"
)

// Conditions narrow a granted permission.
type Conditions struct {
	// BranchScoped restricts the permission to the user's own branch.
	BranchScoped bool

	// OwnDataOnly restricts the permission to records the user created.
	OwnDataOnly bool

	// NumericLimit is advisory: the evaluator returns it and the caller
	// enforces it against the concrete amount (the evaluator never sees
	// transaction amounts).
	NumericLimit *float64
}

// Permission is the set of actions a role may perform on one resource,
// plus the conditions under which they apply.
type Permission struct {
	Actions    []Action
	Conditions Conditions
}

func (p Permission) allows(a Action) bool {
	for _, granted := range p.Actions {
		if granted == a || granted == ActionManage {
			return true
		}
	}
	return false
}

// Table is the immutable role → resource → permission mapping. Build one
// with DefaultTable (or a custom map in tests) and hand it to NewEvaluator;
// nothing mutates it afterwards.
type Table map[Role]map[Resource]Permission

func limit(v float64) *float64 { return &v }
