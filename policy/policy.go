// Package policy provides role-based authorization decisions for the
// maintenance work-order system. All checks are pure, synchronous and
// fail-closed: unknown roles, permissions or menus simply yield false.
package policy

import "sort"

// Role identifies a user category. The role set is closed and assigned
// server-side at login.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleDepartmentManager Role = "department_manager"
	RoleMaterialManager   Role = "material_manager"
	RoleEmployee          Role = "employee"
)

// AllRoles lists every role known to the system.
var AllRoles = []Role{RoleAdmin, RoleDepartmentManager, RoleMaterialManager, RoleEmployee}

// roleLevels ranks roles by authority. Unknown roles rank 0.
var roleLevels = map[Role]int{
	RoleAdmin:             100,
	RoleDepartmentManager: 70,
	RoleMaterialManager:   50,
	RoleEmployee:          10,
}

// PermissionID identifies one controllable capability.
type PermissionID string

const (
	// Shared capabilities
	PermViewStatistics            PermissionID = "view_statistics"
	PermViewProjectManagement     PermissionID = "view_project_management"
	PermViewPersonnel             PermissionID = "view_personnel"
	PermViewSparePartsStock       PermissionID = "view_spare_parts_stock"
	PermViewSparePartsIssue       PermissionID = "view_spare_parts_issue"
	PermViewRepairToolsStock      PermissionID = "view_repair_tools_stock"
	PermViewRepairToolsIssue      PermissionID = "view_repair_tools_issue"
	PermViewAlerts                PermissionID = "view_alerts"
	PermViewSystemManagement      PermissionID = "view_system_management"
	PermApprovePeriodicInspection PermissionID = "approve_periodic_inspection"
	PermApproveTemporaryRepair    PermissionID = "approve_temporary_repair"
	PermApproveSpotWork           PermissionID = "approve_spot_work"
	PermFillMaintenanceLog        PermissionID = "fill_maintenance_log"
	PermViewMaintenanceLog        PermissionID = "view_maintenance_log"
	PermViewAllMaintenanceLog     PermissionID = "view_all_maintenance_log"
	PermFillWeeklyReport          PermissionID = "fill_weekly_report"

	// Desktop capabilities
	PermViewWorkOrder     PermissionID = "view_work_order"
	PermViewWeeklyReport  PermissionID = "view_weekly_report"
	PermDeletePersonnel   PermissionID = "delete_personnel"
	PermEditPersonnelRole PermissionID = "edit_personnel_role"

	// Mobile capabilities
	PermManagePersonnel            PermissionID = "manage_personnel"
	PermManageProjects             PermissionID = "manage_projects"
	PermManageSpareParts           PermissionID = "manage_spare_parts"
	PermViewAllWorkOrders          PermissionID = "view_all_work_orders"
	PermViewSparePartsInventory    PermissionID = "view_spare_parts_inventory"
	PermViewRepairToolsInbound     PermissionID = "view_repair_tools_inbound"
	PermViewPeriodicInspection     PermissionID = "view_periodic_inspection"
	PermViewTemporaryRepair        PermissionID = "view_temporary_repair"
	PermViewSpotWork               PermissionID = "view_spot_work"
	PermApplySpotWork              PermissionID = "apply_spot_work"
	PermQuickFillSpotWork          PermissionID = "quick_fill_spot_work"
	PermViewProjectInfo            PermissionID = "view_project_info"
	PermViewMaintenanceLogDetail   PermissionID = "view_maintenance_log_detail"
	PermViewDepartmentWeeklyReport PermissionID = "view_department_weekly_report"
	PermViewAllWeeklyReport        PermissionID = "view_all_weekly_report"
	PermApproveWeeklyReport        PermissionID = "approve_weekly_report"
	PermViewWorkList               PermissionID = "view_work_list"
	PermCreateTemporaryRepair      PermissionID = "create_temporary_repair"

	// Mobile capabilities expressed as role exclusions rather than
	// membership: everyone except the material manager.
	PermViewWorkOrderMobile PermissionID = "view_work_order_mobile"
	PermViewSignature       PermissionID = "view_signature"
)

// Variant selects which front-end's capability table is in effect.
type Variant string

const (
	VariantDesktop Variant = "pc"
	VariantMobile  Variant = "h5"
)

// RuleKind distinguishes the two rule encodings.
type RuleKind int

const (
	// RuleAllow grants the capability to roles in the set.
	RuleAllow RuleKind = iota
	// RuleDeny grants the capability to every role NOT in the set.
	RuleDeny
)

// Rule is one capability's authorization rule.
type Rule struct {
	Kind  RuleKind
	Roles []Role
}

func (r Rule) allows(role Role) bool {
	for _, candidate := range r.Roles {
		if candidate == role {
			return r.Kind == RuleAllow
		}
	}
	return r.Kind == RuleDeny
}

// Common role groupings from the system's rule tables.
var (
	managerRoles       = []Role{RoleAdmin, RoleDepartmentManager}
	adminRoles         = []Role{RoleAdmin}
	projectMgmtRoles   = []Role{RoleAdmin, RoleDepartmentManager}
	personnelMgmtRoles = []Role{RoleAdmin, RoleDepartmentManager}
	sparePartsRoles    = []Role{RoleAdmin, RoleDepartmentManager, RoleMaterialManager}
	workOrderViewRoles = []Role{RoleAdmin, RoleDepartmentManager, RoleEmployee}
	workOrderApprRoles = []Role{RoleAdmin, RoleDepartmentManager}
	statisticsRoles    = []Role{RoleAdmin, RoleDepartmentManager, RoleEmployee}
	maintLogRoles      = []Role{RoleAdmin, RoleDepartmentManager, RoleEmployee}
	weeklyReportRoles  = []Role{RoleAdmin, RoleDepartmentManager}
	issueRoles         = []Role{RoleAdmin, RoleDepartmentManager, RoleMaterialManager, RoleEmployee}
)

// Policy answers authorization questions for one application variant.
type Policy struct {
	variant  Variant
	rules    map[PermissionID]Rule
	menus    map[string]PermissionID
	checkers map[PermissionID]func(Role) bool
}

// New builds the static policy for the given variant. The rule tables are
// fixed at construction and never mutated afterwards.
func New(variant Variant) *Policy {
	p := &Policy{
		variant: variant,
		rules:   make(map[PermissionID]Rule),
		menus:   make(map[string]PermissionID),
	}
	p.initializeRules()
	p.initializeMenus()

	p.checkers = make(map[PermissionID]func(Role) bool, len(p.rules))
	for id := range p.rules {
		rule := p.rules[id]
		p.checkers[id] = rule.allows
	}
	return p
}

func (p *Policy) initializeRules() {
	allow := func(id PermissionID, roles []Role) {
		p.rules[id] = Rule{Kind: RuleAllow, Roles: roles}
	}
	deny := func(id PermissionID, roles []Role) {
		p.rules[id] = Rule{Kind: RuleDeny, Roles: roles}
	}

	// Capabilities shared by both variants.
	allow(PermViewStatistics, statisticsRoles)
	allow(PermViewProjectManagement, projectMgmtRoles)
	allow(PermViewPersonnel, personnelMgmtRoles)
	allow(PermViewSparePartsStock, sparePartsRoles)
	allow(PermViewSparePartsIssue, issueRoles)
	allow(PermViewRepairToolsStock, sparePartsRoles)
	allow(PermViewRepairToolsIssue, issueRoles)
	allow(PermViewAlerts, statisticsRoles)
	allow(PermViewSystemManagement, projectMgmtRoles)
	allow(PermApprovePeriodicInspection, workOrderApprRoles)
	allow(PermApproveTemporaryRepair, workOrderApprRoles)
	allow(PermApproveSpotWork, workOrderApprRoles)
	allow(PermFillMaintenanceLog, maintLogRoles)
	allow(PermViewMaintenanceLog, maintLogRoles)
	allow(PermViewAllMaintenanceLog, projectMgmtRoles)
	allow(PermFillWeeklyReport, weeklyReportRoles)

	switch p.variant {
	case VariantMobile:
		allow(PermManagePersonnel, personnelMgmtRoles)
		allow(PermManageProjects, projectMgmtRoles)
		allow(PermManageSpareParts, sparePartsRoles)
		allow(PermViewAllWorkOrders, projectMgmtRoles)
		allow(PermViewSparePartsInventory, sparePartsRoles)
		allow(PermViewRepairToolsInbound, sparePartsRoles)
		allow(PermViewPeriodicInspection, workOrderViewRoles)
		allow(PermViewTemporaryRepair, workOrderViewRoles)
		allow(PermViewSpotWork, workOrderViewRoles)
		allow(PermApplySpotWork, workOrderViewRoles)
		allow(PermQuickFillSpotWork, workOrderViewRoles)
		allow(PermViewProjectInfo, AllRoles)
		allow(PermViewMaintenanceLogDetail, maintLogRoles)
		allow(PermViewDepartmentWeeklyReport, []Role{RoleAdmin, RoleDepartmentManager, RoleEmployee})
		allow(PermViewAllWeeklyReport, weeklyReportRoles)
		allow(PermApproveWeeklyReport, weeklyReportRoles)
		allow(PermViewWorkList, workOrderViewRoles)
		allow(PermCreateTemporaryRepair, []Role{RoleAdmin, RoleDepartmentManager, RoleEmployee})

		// The mobile front-end hides work orders and signatures from the
		// material manager only.
		deny(PermViewWorkOrderMobile, []Role{RoleMaterialManager})
		deny(PermViewSignature, []Role{RoleMaterialManager})
	default:
		allow(PermViewWorkOrder, workOrderViewRoles)
		allow(PermViewWeeklyReport, weeklyReportRoles)
		allow(PermDeletePersonnel, adminRoles)
		allow(PermEditPersonnelRole, adminRoles)
	}
}

func (p *Policy) initializeMenus() {
	p.menus = map[string]PermissionID{
		"statistics":           PermViewStatistics,
		"project-info":         PermViewProjectManagement,
		"maintenance-plan":     PermViewProjectManagement,
		"overdue-alert":        PermViewAlerts,
		"near-expiry-alert":    PermViewAlerts,
		"personnel":            PermViewPersonnel,
		"customer":             PermViewSystemManagement,
		"inspection-item":      PermViewSystemManagement,
		"spare-parts-stock":    PermViewSparePartsStock,
		"spare-parts-issue":    PermViewSparePartsIssue,
		"spare-parts-return":   PermViewSparePartsIssue,
		"repair-tools-inbound": PermViewRepairToolsStock,
		"repair-tools-issue":   PermViewRepairToolsIssue,
		"repair-tools-return":  PermViewRepairToolsIssue,
		"maintenance-log-fill": PermFillMaintenanceLog,
		"maintenance-log-list": PermViewMaintenanceLog,
		"weekly-report-fill":   PermFillWeeklyReport,
	}
	if p.variant == VariantMobile {
		p.menus["work-list"] = PermViewWorkList
		p.menus["periodic-inspection"] = PermViewPeriodicInspection
		p.menus["temporary-repair"] = PermViewTemporaryRepair
		p.menus["spot-work"] = PermViewSpotWork
		p.menus["signature"] = PermViewSignature
	} else {
		p.menus["work-plan"] = PermViewWorkOrder
		p.menus["temporary-repair"] = PermViewWorkOrder
		p.menus["spot-work"] = PermViewWorkOrder
		p.menus["weekly-report-list"] = PermViewWeeklyReport
	}
}

// Variant reports which front-end table this policy was built for.
func (p *Policy) Variant() Variant {
	return p.variant
}

// HasPermission reports whether role holds the capability. Empty roles,
// unknown roles and unknown permission ids are all denied.
func (p *Policy) HasPermission(role Role, id PermissionID) bool {
	if role == "" {
		return false
	}
	rule, ok := p.rules[id]
	if !ok {
		return false
	}
	return rule.allows(role)
}

// Checker returns the capability's check function. Unknown ids get a
// fail-closed checker rather than a missing-method surprise at call time.
func (p *Policy) Checker(id PermissionID) func(Role) bool {
	if checker, ok := p.checkers[id]; ok {
		return checker
	}
	return func(Role) bool { return false }
}

// AllowedPermissions returns every capability the role holds, sorted for
// stable output. Unknown roles get an empty slice.
func (p *Policy) AllowedPermissions(role Role) []PermissionID {
	if role == "" {
		return nil
	}
	var allowed []PermissionID
	for id, rule := range p.rules {
		if rule.allows(role) {
			allowed = append(allowed, id)
		}
	}
	sort.Slice(allowed, func(i, j int) bool { return allowed[i] < allowed[j] })
	return allowed
}

// IsManagerRole reports whether the role belongs to the management layer.
func (p *Policy) IsManagerRole(role Role) bool {
	for _, r := range managerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminRole reports whether the role is an administrator.
func (p *Policy) IsAdminRole(role Role) bool {
	return role == RoleAdmin
}

// RoleLevel returns the role's authority rank; higher means more authority.
// Unknown roles rank 0.
func (p *Policy) RoleLevel(role Role) int {
	return roleLevels[role]
}

// CanShowMenu reports whether the menu entry is visible to the role.
// Unknown menu ids are hidden.
func (p *Policy) CanShowMenu(menuID string, role Role) bool {
	if role == "" {
		return false
	}
	id, ok := p.menus[menuID]
	if !ok {
		return false
	}
	return p.HasPermission(role, id)
}

// CanEditPersonnel reports whether the current user may edit the target
// person. Admins may edit anyone; department managers only people in their
// own department.
func (p *Policy) CanEditPersonnel(currentRole, targetRole Role, currentDept, targetDept string) bool {
	if currentRole == RoleAdmin {
		return true
	}
	if currentRole == RoleDepartmentManager {
		return currentDept != "" && targetDept == currentDept
	}
	return false
}

// CanDeletePersonnel reports whether the role may delete personnel records.
func (p *Policy) CanDeletePersonnel(role Role) bool {
	return role == RoleAdmin
}

// CanEditPersonnelRole reports whether the role may change another user's role.
func (p *Policy) CanEditPersonnelRole(role Role) bool {
	return role == RoleAdmin
}
