package model

import "fmt"

// Role is the closed set of user roles known to the portal. Keeping this a
// typed enumeration means a missing policy entry is a reviewable omission
// instead of a silent empty allowlist.
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleCaregiver    Role = "caregiver"
	RoleReceptionist Role = "receptionist"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleCaregiver, RoleReceptionist, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// ResourceType enumerates the response shapes subject to field-level access
// control.
type ResourceType string

const (
	ResourceVitals         ResourceType = "vitals"
	ResourcePrescriptions  ResourceType = "prescriptions"
	ResourceAppointments   ResourceType = "appointments"
	ResourcePayments       ResourceType = "payments"
	ResourceDocuments      ResourceType = "documents"
	ResourcePatientProfile ResourceType = "patient_profile"
)
