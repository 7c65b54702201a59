// Package v1 provides the loaner business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for lookups, credentials and
// permissions. Booking rule violations come from the booking package
// (booking.ErrIllegalTransition, booking.ErrInvalidDateRange,
// booking.ErrUnknownAction). All of them are wrapped with context using
// fmt.Errorf("%w") and checked with errors.Is in handlers:
//
//	switch {
//	case errors.Is(err, logicv1.ErrBookingNotFound):
//	    c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
//	case errors.Is(err, booking.ErrIllegalTransition):
//	    c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for loaner operations.
var (
	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 404 Not Found (401 on login, to hide user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the email already exists in the system.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrEquipmentNotFound indicates the equipment item does not exist.
	// HTTP Status: 404 Not Found
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrBookingNotFound indicates the booking does not exist under the
	// given equipment.
	// HTTP Status: 404 Not Found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrForbidden indicates the caller's role does not allow the operation.
	// HTTP Status: 403 Forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates a request value could not be interpreted.
	// HTTP Status: 400 Bad Request
	ErrInvalidInput = errors.New("invalid input")
)
