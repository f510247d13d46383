package core

// # Error Codes Reference
//
// Errors are mapped to user-facing messages carrying a code that can be quoted
// to support. Sentinel errors are matched with errors.Is first; message
// patterns catch errors that arrive without a sentinel in their chain.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: upload exceeds the configured size ceiling
//	FILE002 - Unsupported type: extension is not one of the enabled types
//	FILE003 - Encoding error: content is not valid UTF-8 for a strict format
//	FILE004 - No file: the request carried no file part
//	FILE005 - Empty file: the upload has zero bytes
//	FILE006 - Malformed document: structured content failed to parse
//
// # Analysis Errors (PARSE001-PARSE099)
//
//	PARSE001 - Parse error: the analyzer could not extract facts
//
// # Job Errors (JOB001-JOB099)
//
//	JOB001 - Job not found: unknown id, or the job was deleted
//	JOB002 - Invalid status: listing filter is not a known job status
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: too many requests from this client
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check application logs for the technical error

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPayloadTooLarge     = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("empty file")
	ErrNoFile              = errors.New("no file provided")
	ErrParse               = errors.New("parse error")
	ErrDecode              = fmt.Errorf("%w: encoding error", ErrParse)
	ErrMalformedDocument   = fmt.Errorf("%w: malformed document", ErrParse)
	ErrNotFound            = errors.New("job not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidStatus       = errors.New("invalid job status")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Upload a smaller file",
		Code:    "FILE001",
	}
	msgUnsupported = UserMessage{
		Message: "File type is not supported",
		Action:  "Upload a .sql, .json, .txt or .csv file",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save file as UTF-8 encoding",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Attach the file in the 'file' form field",
		Code:    "FILE004",
	}
	msgEmpty = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with content",
		Code:    "FILE005",
	}
	msgMalformed = UserMessage{
		Message: "File content is malformed",
		Action:  "Check the file is well-formed for its type",
		Code:    "FILE006",
	}
	msgParse = UserMessage{
		Message: "File could not be analyzed",
		Action:  "Check the file content and try again",
		Code:    "PARSE001",
	}
	msgNotFound = UserMessage{
		Message: "Job not found",
		Action:  "The job may have been deleted. Submit the file again",
		Code:    "JOB001",
	}
	msgInvalidStatus = UserMessage{
		Message: "Unknown job status",
		Action:  "Filter by pending, processing, completed or failed",
		Code:    "JOB002",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// sentinelMessages is checked in order; more specific sentinels come first
// because ErrDecode and ErrMalformedDocument also match ErrParse.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrPayloadTooLarge, msgTooLarge},
	{ErrUnsupportedFileType, msgUnsupported},
	{ErrDecode, msgEncoding},
	{ErrNoFile, msgNoFile},
	{ErrEmptyFile, msgEmpty},
	{ErrMalformedDocument, msgMalformed},
	{ErrParse, msgParse},
	{ErrNotFound, msgNotFound},
	{ErrInvalidStatus, msgInvalidStatus},
	{ErrRateLimited, msgRateLimited},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that lost their sentinel, e.g. stored job error strings.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{pattern: "file too large", msg: msgTooLarge},
	{pattern: "request body too large", msg: msgTooLarge},
	{pattern: "unsupported file type", msg: msgUnsupported},
	{pattern: "encoding error", msg: msgEncoding},
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "empty file", msg: msgEmpty},
	{pattern: "malformed document", msg: msgMalformed},
	{pattern: "parse error", msg: msgParse},
	{pattern: "job not found", msg: msgNotFound},
	{pattern: "invalid job status", msg: msgInvalidStatus},
	{pattern: "rate limit", msg: msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinels in the error chain win over message patterns. If nothing
// matches, a generic fallback with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
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

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
