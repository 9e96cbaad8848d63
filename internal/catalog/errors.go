package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Session operations.
var (
	// ErrSubmitInFlight means the session is mid-submission; edits and
	// further submits are rejected until it settles.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrNothingToSubmit means the edit cache is empty or holds invalid
	// cells.
	ErrNothingToSubmit = errors.New("no valid changes to submit")

	// ErrRowNotFound means the product or variation is not in the current
	// page, so no edit may attach to it.
	ErrRowNotFound = errors.New("row not found in current page")

	// ErrListingRemoved means the product has been taken down and its rows
	// are read-only.
	ErrListingRemoved = errors.New("listing removed, row is read-only")

	// ErrSessionNotFound means the session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// UserMessage is a merchant-facing rendering of an error, with a code the
// merchant can quote to support.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive substring
// match) to merchant messages. First match wins, so specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Session errors (SES001-SES099)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your editing session has expired",
			Action:  "Reload the page to start a new session",
			Code:    "SES001",
		},
	},
	{
		pattern: "submission already in flight",
		msg: UserMessage{
			Message: "Your changes are still being saved",
			Action:  "Wait for the current save to finish",
			Code:    "SES002",
		},
	},
	{
		pattern: "row not found",
		msg: UserMessage{
			Message: "That row is no longer on this page",
			Action:  "Refresh the table and try again",
			Code:    "SES003",
		},
	},
	{
		pattern: "listing removed",
		msg: UserMessage{
			Message: "This listing has been removed and cannot be edited",
			Action:  "Removed listings are read-only",
			Code:    "SES004",
		},
	},
	// =========================================================================
	// Submission errors (SUB001-SUB099)
	// =========================================================================
	{
		pattern: "no valid changes",
		msg: UserMessage{
			Message: "There is nothing to save",
			Action:  "Fix any highlighted cells or make a change first",
			Code:    "SUB001",
		},
	},
	{
		pattern: "price must be at least",
		msg: UserMessage{
			Message: "One or more prices are below the minimum",
			Action:  fmt.Sprintf("Prices must be at least %.2f", MinPriceAmount),
			Code:    "SUB002",
		},
	},
	{
		pattern: "inventory cannot be negative",
		msg: UserMessage{
			Message: "One or more inventory counts are negative",
			Action:  "Inventory must be zero or more",
			Code:    "SUB003",
		},
	},
	// =========================================================================
	// Database and transport errors (DB001-DB099)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the catalog service",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The catalog was busy with conflicting updates",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Check your connection and try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller page size or try again later",
			Code:    "DB006",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "Something went wrong",
	Action:  "Please try again, and contact support if the problem persists",
	Code:    "ERR000",
}

// MapError translates a technical error into a merchant-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
