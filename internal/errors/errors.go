// Package errors provides categorized errors for the campaign economics engine.
package errors

import (
	"fmt"
	"net/http"

	"github.com/fanbacker/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryDatabase represents database errors
	CategoryDatabase ErrorCategory = "database"
	// CategoryCache represents cache errors
	CategoryCache ErrorCategory = "cache"
	// CategoryValidation represents validation errors
	CategoryValidation ErrorCategory = "validation"
	// CategoryAuthorization represents authorization errors
	CategoryAuthorization ErrorCategory = "authorization"
	// CategoryNotFound represents not found errors
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryConflict represents conflict errors
	CategoryConflict ErrorCategory = "conflict"
	// CategoryBusinessRule represents economics rule rejections
	CategoryBusinessRule ErrorCategory = "business_rule"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// User Input Errors (4xx)

// NewInvalidParameterError creates an invalid parameter error
func NewInvalidParameterError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_PARAMETER",
		Message:    fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// NewInvalidAmountError creates an invalid monetary amount error
func NewInvalidAmountError(reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_AMOUNT",
		Message:    reason,
	}
}

// NewInvalidConfigurationError creates an error for an impossible campaign
// or policy configuration.
func NewInvalidConfigurationError(reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_CONFIGURATION",
		Message:    reason,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       "CONFLICT",
		Message:    message,
	}
}

// Economics Rule Errors (4xx)

// NewInsufficientFundsError creates an error for a wallet debit exceeding balance
func NewInsufficientFundsError(balance, required types.Money) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "INSUFFICIENT_FUNDS",
		Message:    "wallet balance is insufficient for this operation",
		Details: map[string]interface{}{
			"balance":  balance.Rupees(),
			"required": required.Rupees(),
		},
	}
}

// NewInsufficientInventoryError creates an error for a purchase exceeding
// the campaign's remaining partitions
func NewInsufficientInventoryError(requested, available int64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusConflict,
		Code:       "INSUFFICIENT_INVENTORY",
		Message:    fmt.Sprintf("only %d partitions remain", available),
		Details: map[string]interface{}{
			"requested": requested,
			"available": available,
		},
	}
}

// NewBelowMinimumPurchaseError creates an error for a purchase below the
// campaign's per-user partition minimum
func NewBelowMinimumPurchaseError(requested, minimum int64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "BELOW_MINIMUM",
		Message:    fmt.Sprintf("minimum purchase is %d partitions", minimum),
		Details: map[string]interface{}{
			"requested": requested,
			"minimum":   minimum,
		},
	}
}

// NewBelowMinimumAmountError creates an error for a rupee investment below
// the platform minimum
func NewBelowMinimumAmountError(amount, minimum float64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "BELOW_MINIMUM_INVESTMENT",
		Message:    "investment amount is below the platform minimum",
		Details: map[string]interface{}{
			"amount":  amount,
			"minimum": minimum,
		},
	}
}

// NewExceedsCampaignCapacityError creates an error for an investment above
// the campaign's budget capacity
func NewExceedsCampaignCapacityError(amount, capacity float64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "EXCEEDS_CAMPAIGN_CAPACITY",
		Message:    "investment amount exceeds the campaign's budget capacity",
		Details: map[string]interface{}{
			"amount":   amount,
			"capacity": capacity,
		},
	}
}

// NewCampaignNotActiveError creates an error for operating on a campaign
// outside its live window
func NewCampaignNotActiveError(campaignID string, status types.FundingStatus) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "CAMPAIGN_NOT_ACTIVE",
		Message:    "campaign is not open for this operation",
		Details: map[string]interface{}{
			"campaignId": campaignID,
			"status":     status,
		},
	}
}

// NewSelfInvestmentError creates an error for an artist buying into their own campaign
func NewSelfInvestmentError() *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "SELF_INVESTMENT_FORBIDDEN",
		Message:    "artists cannot invest in their own campaigns",
	}
}

// NewAlreadyDistributedError creates an error for replaying a settled revenue event
func NewAlreadyDistributedError(reportingEventID string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       "ALREADY_DISTRIBUTED",
		Message:    "revenue event has already been distributed",
		Details: map[string]interface{}{
			"reportingEventId": reportingEventID,
		},
	}
}

// NewNoInvestorsError creates an error for distributing on a campaign with no holdings
func NewNoInvestorsError(campaignID string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "NO_INVESTORS",
		Message:    "campaign has no investors to distribute to",
		Details: map[string]interface{}{
			"campaignId": campaignID,
		},
	}
}

// NewInvalidStateTransitionError creates an error for an illegal lifecycle move
func NewInvalidStateTransitionError(from, to types.FundingStatus) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryBusinessRule,
		StatusCode: http.StatusConflict,
		Code:       "INVALID_STATE_TRANSITION",
		Message:    fmt.Sprintf("cannot move campaign from %s to %s", from, to),
		Details: map[string]interface{}{
			"from": from,
			"to":   to,
		},
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "rate limit exceeded",
		Details: map[string]interface{}{
			"retryAfter": retryAfter,
		},
	}
}

// System Errors (5xx)

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryDatabase,
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("database error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewCacheError creates a cache error
func NewCacheError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCache,
		StatusCode: http.StatusInternalServerError,
		Code:       "CACHE_ERROR",
		Message:    fmt.Sprintf("cache error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// GetHTTPStatusCode returns the HTTP status for an error, 500 when the
// error carries no category.
func GetHTTPStatusCode(err error) int {
	if ce := Categorize(err); ce != nil {
		return ce.StatusCode
	}
	return http.StatusInternalServerError
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	// If already categorized, return as-is
	if catErr, ok := err.(*CategorizedError); ok {
		return catErr
	}

	// If it's a ServiceError, convert it
	if svcErr, ok := err.(*types.ServiceError); ok {
		return categorizeServiceError(svcErr)
	}

	// Default to internal error
	return NewInternalError("unexpected error", err)
}

// categorizeServiceError maps service error codes onto categories and
// HTTP status codes.
func categorizeServiceError(err *types.ServiceError) *CategorizedError {
	status := http.StatusInternalServerError
	category := CategorySystem

	switch err.Code {
	case "INVALID_PARAMETER", "INVALID_AMOUNT", "INVALID_CONFIGURATION":
		status, category = http.StatusBadRequest, CategoryValidation
	case "NOT_FOUND", "USER_NOT_FOUND", "CAMPAIGN_NOT_FOUND", "WALLET_NOT_FOUND":
		status, category = http.StatusNotFound, CategoryNotFound
	case "UNAUTHORIZED":
		status, category = http.StatusUnauthorized, CategoryAuthorization
	case "FORBIDDEN", "SELF_INVESTMENT_FORBIDDEN":
		status, category = http.StatusForbidden, CategoryAuthorization
	case "INSUFFICIENT_FUNDS", "BELOW_MINIMUM", "BELOW_MINIMUM_INVESTMENT",
		"EXCEEDS_CAMPAIGN_CAPACITY", "CAMPAIGN_NOT_ACTIVE", "NO_INVESTORS":
		status, category = http.StatusUnprocessableEntity, CategoryBusinessRule
	case "INSUFFICIENT_INVENTORY", "ALREADY_DISTRIBUTED", "INVALID_STATE_TRANSITION", "CONFLICT":
		status, category = http.StatusConflict, CategoryConflict
	case "RATE_LIMIT_EXCEEDED":
		status, category = http.StatusTooManyRequests, CategoryRateLimit
	}

	return &CategorizedError{
		Category:   category,
		StatusCode: status,
		Code:       err.Code,
		Message:    err.Message,
		Details:    err.Details,
	}
}
