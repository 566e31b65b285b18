package auth

const (
	PermEmployeesRead      = "core.employees.read"
	PermEmployeesWrite     = "core.employees.write"
	PermCyclesRead         = "core.cycles.read"
	PermCyclesWrite        = "core.cycles.write"
	PermTemplatesRead      = "templates.read"
	PermTemplatesWrite     = "templates.write"
	PermAppraisalsRead     = "appraisals.read"
	PermAppraisalsWrite    = "appraisals.write"
	PermAppraisalsSign     = "appraisals.sign"
	PermAppraisalsFinalize = "appraisals.finalize"
	PermFinalReviewRead    = "finalreview.read"
	PermFinalReviewSign    = "finalreview.sign"
	PermFinalReviewLock    = "finalreview.lock"
	PermSelfAppraisalRead  = "selfappraisal.read"
	PermSelfAppraisalWrite = "selfappraisal.write"
	PermSelfAppraisalAdmin = "selfappraisal.admin"
	PermAuditRead          = "audit.read"
	PermSystemAdmin        = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermCyclesRead,
	PermCyclesWrite,
	PermTemplatesRead,
	PermTemplatesWrite,
	PermAppraisalsRead,
	PermAppraisalsWrite,
	PermAppraisalsSign,
	PermAppraisalsFinalize,
	PermFinalReviewRead,
	PermFinalReviewSign,
	PermFinalReviewLock,
	PermSelfAppraisalRead,
	PermSelfAppraisalWrite,
	PermSelfAppraisalAdmin,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermCyclesRead,
		PermTemplatesRead,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsSign,
		PermFinalReviewRead,
		PermFinalReviewSign,
		PermSelfAppraisalRead,
		PermSelfAppraisalWrite,
	},
	RoleSupervisor: {
		PermEmployeesRead,
		PermCyclesRead,
		PermTemplatesRead,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsSign,
		PermFinalReviewRead,
		PermFinalReviewSign,
		PermSelfAppraisalRead,
		PermSelfAppraisalWrite,
	},
	RoleReviewer: {
		PermEmployeesRead,
		PermCyclesRead,
		PermTemplatesRead,
		PermAppraisalsRead,
		PermAppraisalsSign,
		PermFinalReviewRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCyclesRead,
		PermCyclesWrite,
		PermTemplatesRead,
		PermTemplatesWrite,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsSign,
		PermAppraisalsFinalize,
		PermFinalReviewRead,
		PermFinalReviewSign,
		PermFinalReviewLock,
		PermSelfAppraisalRead,
		PermSelfAppraisalWrite,
		PermSelfAppraisalAdmin,
		PermAuditRead,
	},
	RoleAdmin: {
		PermSystemAdmin,
	},
}
