package core

// error_messages.go maps technical errors to messages an operator can act on.
//
// Error codes are grouped by category:
//
//	WB001  - Sheet not found            Patterns: "sheet not found"
//	WB002  - Missing columns            Patterns: "missing required columns"
//	WB003  - Not a workbook             Patterns: "not a valid zip file", "unsupported workbook"
//	WB004  - Source unavailable         Patterns: "fetch workbook", "no such file"
//	WB005  - Workbook too large         Patterns: "too large"
//
//	GEN001 - Unknown dialect            Patterns: "unknown sql dialect"
//	GEN002 - Nothing to import          Patterns: "no vendors, items or boms"
//	GEN003 - Script not written         Patterns: "write script"
//
//	DB001  - Schema missing             Patterns: "does not exist", "no such table"
//	DB002  - Required value missing     Patterns: "not-null", "not null constraint"
//	DB003  - Foreign key                Patterns: "foreign key"
//	DB004  - Duplicate key              Patterns: "duplicate key", "unique constraint"
//	DB005  - Connection refused         Patterns: "connection refused"
//	DB006  - Timeout                    Patterns: "deadline exceeded", "timeout"
//
//	REQ001 - No file                    Patterns: "no file provided"
//	REQ002 - Busy                       Patterns: "too many generations"
//	RATE001 - Rate limited              Patterns: "rate limit"
//
//	ERR000 - Unknown error (fallback)
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgSheetNotFound = UserMessage{
		Message: "A required sheet is missing from the workbook",
		Action:  "Check the sheet names against the layout (GET /api/layout or --layout)",
		Code:    "WB001",
	}
	msgMissingColumns = UserMessage{
		Message: "A required column is missing from a sheet",
		Action:  "Check the header row and column names against the layout",
		Code:    "WB002",
	}
	msgNotWorkbook = UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Save the file as .xlsx and try again",
		Code:    "WB003",
	}
	msgSourceUnavailable = UserMessage{
		Message: "The workbook could not be retrieved",
		Action:  "Check the path or URL and your access to it",
		Code:    "WB004",
	}
	msgTooLarge = UserMessage{
		Message: "The workbook exceeds the maximum upload size",
		Action:  "Remove unused sheets or raise SERVER_MAX_UPLOAD_SIZE",
		Code:    "WB005",
	}
	msgUnknownDialect = UserMessage{
		Message: "The requested SQL dialect is not supported",
		Action:  "Use postgres or sqlite",
		Code:    "GEN001",
	}
	msgEmptyWorkbook = UserMessage{
		Message: "The workbook contains nothing to import",
		Action:  "Check that the data starts below the configured header row",
		Code:    "GEN002",
	}
	msgWriteScript = UserMessage{
		Message: "The SQL script could not be written",
		Action:  "Check that the output directory exists and is writable",
		Code:    "GEN003",
	}
	msgSchemaMissing = UserMessage{
		Message: "The target database is missing a table or column",
		Action:  "Run the inventory schema migrations before applying",
		Code:    "DB001",
	}
	msgNotNull = UserMessage{
		Message: "The target database requires a value the workbook does not provide",
		Action:  "Compare the target schema with the generated statements",
		Code:    "DB002",
	}
	msgForeignKey = UserMessage{
		Message: "A referenced record does not exist",
		Action:  "Apply the full batch rather than individual statements",
		Code:    "DB003",
	}
	msgDuplicate = UserMessage{
		Message: "A record with the same key already exists",
		Action:  "Check for code collisions in the generation warnings",
		Code:    "DB004",
	}
	msgConnRefused = UserMessage{
		Message: "Unable to connect to database",
		Action:  "Check DATABASE_URL and that the database is running",
		Code:    "DB005",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Try again later or raise the apply timeout",
		Code:    "DB006",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// Workbook
	{pattern: "sheet not found", msg: msgSheetNotFound},
	{pattern: "missing required columns", msg: msgMissingColumns},
	{pattern: "not a valid zip file", msg: msgNotWorkbook},
	{pattern: "unsupported workbook", msg: msgNotWorkbook},
	{pattern: "fetch workbook", msg: msgSourceUnavailable},
	{pattern: "no such file", msg: msgSourceUnavailable},
	{pattern: "too large", msg: msgTooLarge},

	// Generation
	{pattern: "unknown sql dialect", msg: msgUnknownDialect},
	{pattern: "no vendors, items or boms", msg: msgEmptyWorkbook},
	{pattern: "write script", msg: msgWriteScript},

	// Database
	{pattern: "no such table", msg: msgSchemaMissing},
	{pattern: "does not exist", msg: msgSchemaMissing},
	{pattern: "not-null", msg: msgNotNull},
	{pattern: "not null constraint", msg: msgNotNull},
	{pattern: "foreign key", msg: msgForeignKey},
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique constraint", msg: msgDuplicate},
	{pattern: "connection refused", msg: msgConnRefused},
	{pattern: "deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},

	// Requests
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No workbook was uploaded",
			Action:  "Attach the workbook as the 'file' form field",
			Code:    "REQ001",
		},
	},
	{
		pattern: "too many generations",
		msg: UserMessage{
			Message: "The server is busy generating other scripts",
			Action:  "Please wait a moment and try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("read RM: %w", workbook.ErrSheetNotFound)
//	msg := MapError(err)
//	// msg.Code == "WB001"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
