package authorization

type Role string

const (
	// RoleAdmin issues without quota and manages quotas and revocations.
	RoleAdmin Role = "admin"
	// RoleIssuer issues against a remaining-grants counter.
	RoleIssuer Role = "issuer"
	// RoleNone holds no issuing permission.
	RoleNone Role = "none"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) CanIssue() bool {
	return r == RoleAdmin || r == RoleIssuer
}

// QuotaBound reports whether issuance by this role consumes a grant.
func (r Role) QuotaBound() bool {
	return r == RoleIssuer
}

// Directory resolves an actor ID to its configured role. Backed by the
// deployment config; an actor in both lists counts as admin.
type Directory struct {
	admins  map[string]struct{}
	issuers map[string]struct{}
}

// NewDirectory builds a role directory from configured ID lists.
func NewDirectory(adminIDs, issuerIDs []string) *Directory {
	d := &Directory{
		admins:  make(map[string]struct{}, len(adminIDs)),
		issuers: make(map[string]struct{}, len(issuerIDs)),
	}
	for _, id := range adminIDs {
		d.admins[id] = struct{}{}
	}
	for _, id := range issuerIDs {
		d.issuers[id] = struct{}{}
	}
	return d
}

// RoleOf returns the actor's role.
func (d *Directory) RoleOf(actorID string) Role {
	if _, ok := d.admins[actorID]; ok {
		return RoleAdmin
	}
	if _, ok := d.issuers[actorID]; ok {
		return RoleIssuer
	}
	return RoleNone
}
