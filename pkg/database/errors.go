package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/gymflow/gymflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "email_format"):
		return errors.Validation(map[string]string{
			"email": "must be a valid email address",
		})

	case strings.Contains(constraint, "membership_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: active, frozen, cancelled, expired, pending",
		})

	case strings.Contains(constraint, "net_amount_check"):
		return errors.Validation(map[string]string{
			"net_amount": "must equal amount minus discount plus tax",
		})

	case strings.Contains(constraint, "points_balance_nonnegative"):
		return errors.Validation(map[string]string{
			"balance": "loyalty point balance cannot go negative",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "email"):
		return "a user with this email already exists"
	case strings.Contains(constraint, "schema_name"):
		return "a gym with this schema name already exists"
	case strings.Contains(constraint, "member_number"):
		return "a member with this member number already exists"
	default:
		return "a record with these values already exists"
	}
}
