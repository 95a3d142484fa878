package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist, falling back
// to defaultField for anything not on the list. This keeps caller-supplied
// sort columns out of raw SQL.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// LeaseSortFields contains allowed sort fields for leases
var LeaseSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"start_date":   true,
	"end_date":     true,
	"monthly_rent": true,
	"status":       true,
}

// RentPaymentSortFields contains allowed sort fields for rent payments
var RentPaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"payment_date": true,
	"due_date":     true,
	"amount":       true,
	"status":       true,
}

// PropertySortFields contains allowed sort fields for properties
var PropertySortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"city":        true,
	"total_units": true,
	"asking_rent": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}
