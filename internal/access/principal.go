package access

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAnonymous Role = ""
	RoleAdmin     Role = "admin"
	RoleCompany   Role = "company"
	RoleStudent   Role = "student"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCompany:
		return RoleCompany, nil
	case RoleStudent:
		return RoleStudent, nil
	case RoleAnonymous:
		return RoleAnonymous, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Principal is the caller of an operation. It is passed explicitly into every
// service call; there is no ambient session.
type Principal struct {
	AccountID uint
	Role      Role
}

func Anonymous() Principal {
	return Principal{}
}

func Admin(id uint) Principal {
	return Principal{AccountID: id, Role: RoleAdmin}
}

func Company(id uint) Principal {
	return Principal{AccountID: id, Role: RoleCompany}
}

func Student(id uint) Principal {
	return Principal{AccountID: id, Role: RoleStudent}
}

func (p Principal) IsAnonymous() bool {
	return p.Role == RoleAnonymous || p.AccountID == 0
}

func (p Principal) String() string {
	if p.IsAnonymous() {
		return "anonymous"
	}
	return fmt.Sprintf("%s#%d", p.Role, p.AccountID)
}

// Session is what a successful login hands back to the calling layer.
type Session struct {
	Principal Principal
	Token     string
	ExpiresAt time.Time
}
