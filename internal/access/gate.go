package access

import (
	"fmt"

	"github.com/maxaizer/placement-portal/internal/failures"
)

type Operation string

const (
	OpReviewCompany        Operation = "company.review"
	OpBlacklistCompany     Operation = "company.blacklist"
	OpSearchCompanies      Operation = "company.search"
	OpListPendingCompanies Operation = "company.list_pending"

	OpSetStudentActive     Operation = "student.set_active"
	OpSearchStudents       Operation = "student.search"
	OpUpdateStudentProfile Operation = "student.update_profile"
	OpViewStudentProfile   Operation = "student.view_profile"
	OpListActiveStudents   Operation = "student.list_active"

	OpReviewJob      Operation = "job.review"
	OpCreateJob      Operation = "job.create"
	OpUpdateJob      Operation = "job.update"
	OpDeleteJob      Operation = "job.delete"
	OpSetJobStatus   Operation = "job.set_status"
	OpViewJob        Operation = "job.view"
	OpListCompanyJob Operation = "job.list_company"
	OpListAllJobs    Operation = "job.list_all"

	OpApply                   Operation = "application.apply"
	OpUpdateApplicationStatus Operation = "application.update_status"
	OpListStudentApplications Operation = "application.list_student"
	OpListCompanyApplications Operation = "application.list_company"
	OpListAllApplications     Operation = "application.list_all"
	OpListPlacements          Operation = "placement.list"
	OpViewPlacement           Operation = "placement.view"

	OpViewDashboard Operation = "admin.dashboard"
)

// Target names the owners of the entity an operation acts on. Zero fields mean
// "no owner of that kind".
type Target struct {
	CompanyID uint
	StudentID uint
}

func CompanyTarget(companyID uint) Target {
	return Target{CompanyID: companyID}
}

func StudentTarget(studentID uint) Target {
	return Target{StudentID: studentID}
}

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonWrongRole       Reason = "wrong_role"
	ReasonNotOwner        Reason = "not_owner"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into the failure kind callers surface: Unauthorized for a
// missing identity, Forbidden for a valid identity without rights.
func (d Decision) Err(p Principal, op Operation) error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return failures.New(failures.KindUnauthorized, fmt.Sprintf("%s requires a signed-in account", op))
	case d.Reason == ReasonNotOwner:
		return failures.New(failures.KindForbidden, fmt.Sprintf("%s may not %s on another account's data", p, op))
	default:
		return failures.New(failures.KindForbidden, fmt.Sprintf("%s may not %s", p, op))
	}
}

type scope int

const (
	scopeNone scope = iota
	scopeOwn
	scopeAny
)

// rule lists, per role, how far an operation reaches.
type rule struct {
	admin   scope
	company scope
	student scope
}

var rules = map[Operation]rule{
	OpReviewCompany:        {admin: scopeAny},
	OpBlacklistCompany:     {admin: scopeAny},
	OpSearchCompanies:      {admin: scopeAny},
	OpListPendingCompanies: {admin: scopeAny},

	OpSetStudentActive:     {admin: scopeAny},
	OpSearchStudents:       {admin: scopeAny},
	OpUpdateStudentProfile: {student: scopeOwn},
	OpViewStudentProfile:   {admin: scopeAny, company: scopeAny, student: scopeOwn},
	OpListActiveStudents:   {admin: scopeAny, company: scopeAny},

	OpReviewJob:      {admin: scopeAny},
	OpCreateJob:      {company: scopeOwn},
	OpUpdateJob:      {company: scopeOwn},
	OpDeleteJob:      {company: scopeOwn},
	OpSetJobStatus:   {company: scopeOwn},
	OpViewJob:        {admin: scopeAny, company: scopeOwn},
	OpListCompanyJob: {admin: scopeAny, company: scopeOwn},
	OpListAllJobs:    {admin: scopeAny},

	OpApply:                   {student: scopeOwn},
	OpUpdateApplicationStatus: {company: scopeOwn},
	OpListStudentApplications: {admin: scopeAny, student: scopeOwn},
	OpListCompanyApplications: {admin: scopeAny, company: scopeOwn},
	OpListAllApplications:     {admin: scopeAny},
	OpListPlacements:          {admin: scopeAny},
	OpViewPlacement:           {admin: scopeAny, company: scopeOwn, student: scopeOwn},

	OpViewDashboard: {admin: scopeAny},
}

type policy interface {
	decide(accountID uint, op Operation, target Target) Decision
}

type anonymousPolicy struct{}

func (anonymousPolicy) decide(uint, Operation, Target) Decision {
	return deny(ReasonUnauthenticated)
}

type adminPolicy struct{}

func (adminPolicy) decide(_ uint, op Operation, _ Target) Decision {
	if rules[op].admin == scopeAny {
		return allow()
	}
	return deny(ReasonWrongRole)
}

type companyPolicy struct{}

func (companyPolicy) decide(accountID uint, op Operation, target Target) Decision {
	return decideScoped(rules[op].company, accountID, target.CompanyID)
}

type studentPolicy struct{}

func (studentPolicy) decide(accountID uint, op Operation, target Target) Decision {
	return decideScoped(rules[op].student, accountID, target.StudentID)
}

func decideScoped(s scope, accountID, ownerID uint) Decision {
	switch s {
	case scopeAny:
		return allow()
	case scopeOwn:
		if ownerID != 0 && ownerID == accountID {
			return allow()
		}
		return deny(ReasonNotOwner)
	default:
		return deny(ReasonWrongRole)
	}
}

var policies = map[Role]policy{
	RoleAnonymous: anonymousPolicy{},
	RoleAdmin:     adminPolicy{},
	RoleCompany:   companyPolicy{},
	RoleStudent:   studentPolicy{},
}

// CanPerform decides whether p may run op against target. It has no side effects.
func CanPerform(p Principal, op Operation, target Target) Decision {
	if p.IsAnonymous() {
		return policies[RoleAnonymous].decide(0, op, target)
	}
	pol, ok := policies[p.Role]
	if !ok {
		return deny(ReasonUnauthenticated)
	}
	return pol.decide(p.AccountID, op, target)
}

// Authorize is CanPerform followed by Decision.Err.
func Authorize(p Principal, op Operation, target Target) error {
	return CanPerform(p, op, target).Err(p, op)
}

// AuthorizeRole rejects callers whose role can never perform op. It is used
// before the target entity is loaded, so ownership is not checked here.
func AuthorizeRole(p Principal, op Operation) error {
	d := CanPerform(p, op, Target{})
	if d.Allowed || d.Reason == ReasonNotOwner {
		return nil
	}
	return d.Err(p, op)
}
