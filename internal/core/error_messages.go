// Package core provides the business logic for the CSV bulk migration engine.
//
// # Error Classification Reference
//
// This file classifies driver-level SQL Server errors into the classes
// external testConnection/submitJob callers rely on. SQL Server
// reports most of these as numeric error codes on the wire; go-mssqldb
// surfaces them as *mssql.Error with a Number field. A handful of TLS
// failures never reach that type and are matched on substring instead.
//
// # Connection Error Classes
//
//	host unresolved         - code 2
//	network unreachable     - code 53
//	authentication failed   - code 18456
//	database not accessible - code 4060
//	server refused/timed out - codes 233, 10060, 10061
//	SSL trust mismatch      - "ssl", "certificate", principal-name substrings, or -2146893022
//
// Anything else falls back to a generic "other" class carrying the driver's
// own message.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
)

// ConnectionErrorClass is the result of classifying a testConnection failure.
type ConnectionErrorClass string

const (
	ClassOK                   ConnectionErrorClass = "ok"
	ClassHostUnresolved       ConnectionErrorClass = "host_unresolved"
	ClassNetworkUnreachable   ConnectionErrorClass = "network_unreachable"
	ClassAuthenticationFailed ConnectionErrorClass = "authentication_failed"
	ClassDatabaseNotAccessible ConnectionErrorClass = "database_not_accessible"
	ClassServerRefusedOrTimedOut ConnectionErrorClass = "server_refused_or_timed_out"
	ClassSSLTrustMismatch     ConnectionErrorClass = "ssl_trust_mismatch"
	ClassOther                ConnectionErrorClass = "other"
)

type codeMapping struct {
	code  int32
	class ConnectionErrorClass
}

var codeMappings = []codeMapping{
	{2, ClassHostUnresolved},
	{53, ClassNetworkUnreachable},
	{18456, ClassAuthenticationFailed},
	{4060, ClassDatabaseNotAccessible},
	{233, ClassServerRefusedOrTimedOut},
	{10060, ClassServerRefusedOrTimedOut},
	{10061, ClassServerRefusedOrTimedOut},
}

var sslSubstrings = []string{"ssl", "certificate", "principal name", "-2146893022"}

// ClassifyConnectionError maps a connection/ping failure to one of the
// classes above, plus a human-readable message.
func ClassifyConnectionError(err error) (ConnectionErrorClass, string) {
	if err == nil {
		return ClassOK, ""
	}

	lower := strings.ToLower(err.Error())
	for _, s := range sslSubstrings {
		if strings.Contains(lower, s) {
			return ClassSSLTrustMismatch, "TLS certificate does not match the server's principal name"
		}
	}

	var mssqlErr mssql.Error
	if errors.As(err, &mssqlErr) {
		for _, m := range codeMappings {
			if mssqlErr.Number == m.code {
				return m.class, mssqlErr.Message
			}
		}
	}

	// -2146893022 surfaces as a plain numeric substring from some TLS stacks
	// that never construct an mssql.Error.
	if strings.Contains(err.Error(), strconv.Itoa(-2146893022)) {
		return ClassSSLTrustMismatch, err.Error()
	}

	return ClassOther, err.Error()
}

// UserMessage is a support-facing description of a JobError: what happened
// and what a support engineer should do about it.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered specific-before-general: the first substring
// match wins, so narrower patterns must precede broader ones.
var errorPatterns = []errorPattern{
	{"violation of primary key", UserMessage{
		Message: "A row with this primary key already exists",
		Action:  "Review the destination table for pre-existing rows with the same key",
		Code:    "DB001",
	}},
	{"violation of unique key", UserMessage{
		Message: "A value that must be unique already exists",
		Action:  "Check the source file for duplicate values in a unique column",
		Code:    "DB002",
	}},
	{"foreign key constraint", UserMessage{
		Message: "Referenced row does not exist",
		Action:  "Load parent tables before dependent tables",
		Code:    "DB003",
	}},
	{"bulk load data conversion error", UserMessage{
		Message: "A row's value could not be converted to the destination column's type",
		Action:  "Check the inferred column type against the source file's values",
		Code:    "DB004",
	}},
	{"login failed", UserMessage{
		Message: "Authentication with the destination database failed",
		Action:  "Verify the connection string's credentials",
		Code:    "DB005",
	}},
	{"cannot open database", UserMessage{
		Message: "The destination database is not accessible",
		Action:  "Verify the database name and that the account has access",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "The destination database was busy with conflicting operations",
		Action:  "Resubmit the job; deadlocks are transient",
		Code:    "DB007",
	}},
	{"timeout", UserMessage{
		Message: "An operation against the destination database timed out",
		Action:  "Reduce the batch size or check network latency to the database",
		Code:    "DB008",
	}},
	{"could not open a connection", UserMessage{
		Message: "Could not establish a connection to the destination database",
		Action:  "Verify the server address and that it accepts connections",
		Code:    "DB009",
	}},
	{"columns, got", UserMessage{
		Message: "A line's column count did not match the header",
		Action:  "Check the source file for malformed rows",
		Code:    "FILE001",
	}},
	{"empty or missing header", UserMessage{
		Message: "The file has no header row",
		Action:  "Add a header row or remove the file from the root folder",
		Code:    "FILE002",
	}},
	{"could not detect a consistent delimiter", UserMessage{
		Message: "The file's column delimiter could not be determined",
		Action:  "Re-export the file with one of the supported delimiters",
		Code:    "FILE003",
	}},
	{"cannot open file", UserMessage{
		Message: "The file could not be opened",
		Action:  "Verify the file exists and is readable",
		Code:    "FILE004",
	}},
	{"cancelled", UserMessage{
		Message: "The job was cancelled",
		Action:  "Resubmit the job if the work should continue",
		Code:    "JOB001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the job's errors for technical detail",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message by
// searching the patterns above for the first case-insensitive match.
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

// FormatUserError formats "Message (Code: XXX). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern rather than
// falling back to the generic ERR000 message. fileWorker uses this to decide
// whether a file failure is expected operator noise (Warn) or something
// worth escalating (Error).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
