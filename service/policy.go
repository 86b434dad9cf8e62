package service

import (
	"tabulator/app_error"
	"tabulator/repository"
	"tabulator/utils"
)

type Role string

const (
	RoleJudge       Role = "judge"
	RoleOrganizer   Role = "organizer"
	RoleTallyMaster Role = "tally_master"
	RoleAuditor     Role = "auditor"
	RoleBoard       Role = "board"
)

func (r Role) Valid() bool {
	return utils.Contains([]Role{RoleJudge, RoleOrganizer, RoleTallyMaster, RoleAuditor, RoleBoard}, r)
}

// Actor is the already authenticated caller of an engine operation.
type Actor struct {
	ID   int
	Role Role
}

// Role sets behind the capability checks below. The HTTP layer gates routes
// with the same sets.
var (
	DeductionRequesters = []Role{RoleJudge, RoleOrganizer, RoleTallyMaster, RoleBoard}
	DeductionApprovers  = []Role{RoleTallyMaster, RoleAuditor, RoleOrganizer, RoleBoard}
	CompetitionEditors  = []Role{RoleOrganizer, RoleBoard}
)

// CanSubmitScore allows judges to write only their own scores.
func CanSubmitScore(actor Actor, judgeId int) bool {
	return actor.Role == RoleJudge && actor.ID == judgeId
}

func CanRequestDeduction(role Role) bool {
	return utils.Contains(DeductionRequesters, role)
}

func CanApproveDeduction(role Role) bool {
	return utils.Contains(DeductionApprovers, role)
}

// CanSign allows an assigned judge to sign for themselves only.
func CanSign(actor Actor, judgeId int, assigned bool) bool {
	return assigned && actor.Role == RoleJudge && actor.ID == judgeId
}

func CanConfigureCompetition(role Role) bool {
	return utils.Contains(CompetitionEditors, role)
}

// Policy carries the role rules that are deployment decisions rather than
// fixed capabilities.
type Policy struct {
	// AllowSelfApproval lets an actor resolve a deduction they requested
	// themselves, provided their role can approve at all.
	AllowSelfApproval bool
}

func DefaultPolicy() Policy {
	return Policy{AllowSelfApproval: true}
}

func (p Policy) AuthorizeResolution(actor Actor, deduction *repository.Deduction) error {
	if !CanApproveDeduction(actor.Role) {
		return app_error.Authorization("role %q cannot resolve deductions", actor.Role)
	}
	if !p.AllowSelfApproval && deduction.RequestedBy == actor.ID {
		return app_error.Authorization("deduction %d cannot be resolved by its requester", deduction.ID)
	}
	return nil
}
