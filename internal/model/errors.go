package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrRuleViolation is wrapped by every RuleError.
	ErrRuleViolation = errors.New("business rule violation")
)

// ValidationError collects per-field input problems.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Add records a problem for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns e as an error when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a single-field validation error.
func Invalid(field, msg string) error {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

// Rule violation codes.
const (
	CodeInvalidTransition    = "invalid_transition"
	CodeUnpaidItems          = "unpaid_items"
	CodeOrderNotAllowed      = "order_not_allowed"
	CodeNothingToPay         = "nothing_to_pay"
	CodeFloorCapacity        = "floor_capacity"
	CodeFloorInactive        = "floor_inactive"
	CodeFloorInUse           = "floor_in_use"
	CodeCategoryInUse        = "category_in_use"
	CodeTableInUse           = "table_in_use"
	CodeTableExists          = "table_exists"
	CodeMenuItemInUse        = "menu_item_in_use"
	CodeMenuItemUnavailable  = "menu_item_unavailable"
	CodeTransferSourceStatus = "transfer_source_status"
	CodeTransferTargetStatus = "transfer_target_status"
	CodeTransferSeats        = "transfer_seats"
	CodeTransferSameTable    = "transfer_same_table"
	CodeTransferInactive     = "transfer_target_inactive"
)

// RuleError reports an operation refused by a business rule.
type RuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return ErrRuleViolation }

// Violation builds a RuleError.
func Violation(code, format string, args ...any) error {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRule reports whether err is a RuleError carrying code.
func IsRule(err error, code string) bool {
	var re *RuleError
	return errors.As(err, &re) && re.Code == code
}
