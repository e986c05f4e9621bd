// Package errcode defines the stable error codes returned to API callers.
// Collaborating frontends key their messaging off these strings, so the
// values are part of the external contract and must not change.
package errcode

const (
	// CoppaConsentRequired – the request came from an under-13 student whose
	// parental consent is missing, pending past its link expiry, denied,
	// expired or revoked.
	CoppaConsentRequired = "COPPA_CONSENT_REQUIRED"

	// CoppaEnforcementError – the consent state could not be resolved. The
	// gate fails secure: access is denied, but callers can show a different
	// message than a plain denial.
	CoppaEnforcementError = "COPPA_ENFORCEMENT_ERROR"

	// InsufficientPrivileges – the actor's role does not permit the
	// operation.
	InsufficientPrivileges = "INSUFFICIENT_PRIVILEGES"

	// CrossSchoolAccessDenied – a non-admin counselor targeted another
	// school's data.
	CrossSchoolAccessDenied = "CROSS_SCHOOL_ACCESS_DENIED"

	// NotFound – the referenced entity does not exist.
	NotFound = "NOT_FOUND"

	// InvalidState – the workflow transition is not legal from the item's
	// current state (e.g. resolving an already-resolved item).
	InvalidState = "INVALID_STATE"
)
