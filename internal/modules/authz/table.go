package authz

// DefaultTable builds the production permission table. Construct once at
// startup and inject into NewEvaluator; never read through a package global.
func DefaultTable() Table {
	all := []Action{ActionManage}

	return Table{
		RoleProductOwner: {
			ResourceBranch:    {Actions: all},
			ResourceProduct:   {Actions: all},
			ResourceInventory: {Actions: all},
			ResourceSale:      {Actions: all},
			ResourceCustomer:  {Actions: all},
			ResourceUser:      {Actions: all},
			ResourceReport:    {Actions: all},
			ResourceSettings:  {Actions: all},
		},
		RoleSuperAdmin: {
			ResourceBranch:    {Actions: all},
			ResourceProduct:   {Actions: all},
			ResourceInventory: {Actions: all},
			ResourceSale:      {Actions: all},
			ResourceCustomer:  {Actions: all},
			ResourceUser:      {Actions: all},
			ResourceReport:    {Actions: all},
			ResourceSettings:  {Actions: all},
		},
		RoleManager: {
			ResourceProduct: {
				Actions:    []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionImport},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceInventory: {
				Actions:    []Action{ActionCreate, ActionRead, ActionUpdate, ActionExport},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceSale: {
				Actions:    []Action{ActionCreate, ActionRead, ActionApprove, ActionReject},
				Conditions: Conditions{BranchScoped: true, NumericLimit: limit(5000)},
			},
			ResourceCustomer: {
				Actions:    []Action{ActionCreate, ActionRead, ActionUpdate},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceUser: {
				Actions:    []Action{ActionRead},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceReport: {
				Actions:    []Action{ActionRead, ActionExport},
				Conditions: Conditions{BranchScoped: true},
			},
		},
		RolePharmacist: {
			ResourceProduct: {
				Actions:    []Action{ActionRead, ActionUpdate},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceInventory: {
				Actions:    []Action{ActionRead, ActionUpdate},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceSale: {
				Actions:    []Action{ActionCreate, ActionRead},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceCustomer: {
				Actions:    []Action{ActionCreate, ActionRead, ActionUpdate},
				Conditions: Conditions{BranchScoped: true},
			},
		},
		RoleCashier: {
			ResourceProduct: {
				Actions:    []Action{ActionRead},
				Conditions: Conditions{BranchScoped: true},
			},
			ResourceSale: {
				Actions:    []Action{ActionCreate, ActionRead},
				Conditions: Conditions{BranchScoped: true, OwnDataOnly: true},
			},
			ResourceCustomer: {
				Actions:    []Action{ActionRead},
				Conditions: Conditions{BranchScoped: true},
			},
		},
	}
}
