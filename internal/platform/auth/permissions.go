package auth

import "sort"

// Role names recognized by the permission table.
const (
	RoleSuperAdmin    = "SUPER_ADMIN"
	RoleHospitalAdmin = "HOSPITAL_ADMIN"
	RoleDoctor        = "DOCTOR"
	RoleNurse         = "NURSE"
	RolePharmacist    = "PHARMACIST"
	RoleReceptionist  = "RECEPTIONIST"
)

// rolePermissions is the authoritative role to permission mapping. Permissions
// are RESOURCE:ACTION capability tokens. The table is consulted on every login
// and every refresh; permissions are never cached inside a refresh token.
var rolePermissions = map[string][]string{
	RoleSuperAdmin: {
		"PATIENT:CREATE", "PATIENT:READ", "PATIENT:UPDATE", "PATIENT:DELETE",
		"PRESCRIPTION:CREATE", "PRESCRIPTION:READ", "PRESCRIPTION:UPDATE", "PRESCRIPTION:DISPENSE",
		"USER:CREATE", "USER:READ", "USER:UPDATE", "USER:DELETE", "USER:MANAGE",
	},
	RoleHospitalAdmin: {
		"USER:CREATE", "USER:READ", "USER:UPDATE", "USER:DELETE",
	},
	RoleDoctor: {
		"PATIENT:CREATE", "PATIENT:READ", "PATIENT:UPDATE",
		"PRESCRIPTION:CREATE", "PRESCRIPTION:READ",
	},
	RoleNurse: {
		"PATIENT:CREATE", "PATIENT:READ", "PATIENT:UPDATE",
	},
	RolePharmacist: {
		"PRESCRIPTION:READ", "PRESCRIPTION:DISPENSE",
	},
	RoleReceptionist: {
		"PATIENT:CREATE", "PATIENT:READ",
	},
}

// KnownRole reports whether the role name appears in the permission table.
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// ResolvePermissions derives the effective permission set for a role list as
// the union over the static table. The result is deduplicated and sorted, so
// it is independent of role order. Unknown role names contribute nothing.
func ResolvePermissions(roles []string) []string {
	set := make(map[string]struct{})
	for _, role := range roles {
		for _, perm := range rolePermissions[role] {
			set[perm] = struct{}{}
		}
	}

	perms := make([]string, 0, len(set))
	for perm := range set {
		perms = append(perms, perm)
	}
	sort.Strings(perms)
	return perms
}
