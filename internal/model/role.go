package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of account kinds. Every decision point (dashboard
// redirect, signup schema, subdomain allow-list) switches on this type so the
// three lists cannot drift apart.
type Role int

const (
	RoleUnknown Role = iota
	RoleDoctor
	RolePharmacist
	RolePatient
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleDoctor, RolePharmacist, RolePatient}

func (r Role) String() string {
	switch r {
	case RoleDoctor:
		return "doctor"
	case RolePharmacist:
		return "pharmacist"
	case RolePatient:
		return "patient"
	case RoleUnknown:
		return ""
	}
	return ""
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePharmacist, RolePatient:
		return true
	case RoleUnknown:
		return false
	}
	return false
}

// Subdomain is the host label and path prefix that serves the role's portal.
func (r Role) Subdomain() string {
	switch r {
	case RoleDoctor:
		return "doctor"
	case RolePharmacist:
		return "pharmacy"
	case RolePatient:
		return "patient"
	case RoleUnknown:
		return ""
	}
	return ""
}

// DashboardPath is where a signed-in user with this role lands. Unknown roles
// fall back to the patient dashboard.
func (r Role) DashboardPath() string {
	switch r {
	case RoleDoctor, RolePharmacist:
		return "/" + r.Subdomain()
	case RolePatient, RoleUnknown:
		return "/" + RolePatient.Subdomain()
	}
	return "/" + RolePatient.Subdomain()
}

// ParseRole converts the stored/submitted role name.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "doctor":
		return RoleDoctor, nil
	case "pharmacist":
		return RolePharmacist, nil
	case "patient":
		return RolePatient, nil
	}
	return RoleUnknown, fmt.Errorf("invalid role %q", s)
}

// RoleForSubdomain maps a host label onto the role whose portal it serves.
func RoleForSubdomain(label string) (Role, bool) {
	for _, r := range Roles {
		if r.Subdomain() == label {
			return r, true
		}
	}
	return RoleUnknown, false
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, nil
	}
	return r.String(), nil
}

// Scan tolerates unknown values so a bad row degrades to RoleUnknown instead of
// failing the whole query.
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = RoleUnknown
	case string:
		*r, _ = ParseRole(v)
	case []byte:
		*r, _ = ParseRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	return nil
}
