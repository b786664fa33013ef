package model

// Portal describes a role's sign-up entry point.
type Portal struct {
	Role        Role     `json:"role"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SignupPath  string   `json:"signup_path"`
	Fields      []string `json:"fields"`
}

// Portals lists the sign-up portals in display order.
func Portals() []Portal {
	portals := make([]Portal, 0, len(Roles))
	for _, r := range Roles {
		p, _ := PortalFor(r)
		portals = append(portals, p)
	}
	return portals
}

// PortalFor returns the portal for r.
func PortalFor(r Role) (Portal, bool) {
	base := []string{"email", "password", MetaFullName}
	switch r {
	case RoleDoctor:
		return Portal{
			Role:        r,
			Title:       "Doctors Clinic",
			Description: "Issue prescriptions and manage patient health digitally.",
			SignupPath:  "/signup/doctor",
			Fields:      append(base, MetaClinicName),
		}, true
	case RolePharmacist:
		return Portal{
			Role:        r,
			Title:       "Pharmacist Portal",
			Description: "Manage incoming orders and verify prescriptions in real-time.",
			SignupPath:  "/signup/pharmacy",
			Fields:      append(base, MetaPharmacyName),
		}, true
	case RolePatient:
		return Portal{
			Role:        r,
			Title:       "Patient Portal",
			Description: "Track your prescriptions and order from your favorite pharmacy.",
			SignupPath:  "/signup/patient",
			Fields:      base,
		}, true
	case RoleUnknown:
	}
	return Portal{}, false
}
