package services

import (
	"errors"

	"kharcha/internal/core"
	"kharcha/internal/ledger"
	"kharcha/internal/storage"
	"kharcha/internal/transfer"
)

// User-facing sentences.
const (
	MessageInvalidExpense = "Please fill in all required fields with valid values."
	MessageInvalidBudget  = "Enter a valid budget amount."
	MessageConfirmDelete  = "Delete this expense?"
	MessageExpenseAdded   = "Expense added successfully."
	MessageExpenseUpdated = "Expense updated successfully."
	MessageNotFound       = "Expense not found."
	MessageDuplicate      = "Some imported expenses already exist."
	MessageInvalidTheme   = "Theme must be light or dark."
	MessageInvalidMonth   = "Enter a month as YYYY-MM."
	MessageCorrupt        = "Stored expenses could not be read."
	MessageMalformed      = "The import file could not be read."
	MessageUnexpected     = "Something went wrong. Please try again."
)

// UserMessage maps err to the sentence shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrMissingID):
		return MessageInvalidExpense
	case errors.Is(err, core.ErrInvalidBudget):
		return MessageInvalidBudget
	case errors.Is(err, ErrConfirmationRequired):
		return MessageConfirmDelete
	case errors.Is(err, ledger.ErrNotFound):
		return MessageNotFound
	case errors.Is(err, ledger.ErrDuplicateID):
		return MessageDuplicate
	case errors.Is(err, core.ErrInvalidTheme):
		return MessageInvalidTheme
	case errors.Is(err, core.ErrInvalidMonth):
		return MessageInvalidMonth
	case errors.Is(err, transfer.ErrMalformed):
		return MessageMalformed
	case errors.Is(err, storage.ErrCorrupt):
		return MessageCorrupt
	default:
		return MessageUnexpected
	}
}

// IsValidation reports whether err is a rejected user input.
func IsValidation(err error) bool {
	switch UserMessage(err) {
	case MessageInvalidExpense, MessageInvalidBudget, MessageInvalidTheme, MessageInvalidMonth:
		return true
	}
	return false
}
