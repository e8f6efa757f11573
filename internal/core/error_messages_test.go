package core

import (
	"errors"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"
)

func TestClassifyConnectionError_OK(t *testing.T) {
	class, msg := ClassifyConnectionError(nil)
	if class != ClassOK || msg != "" {
		t.Errorf("ClassifyConnectionError(nil) = (%v, %q), want (%v, \"\")", class, msg, ClassOK)
	}
}

func TestClassifyConnectionError_MssqlCode(t *testing.T) {
	err := mssql.Error{Number: 18456, Message: "Login failed for user 'app'"}
	class, msg := ClassifyConnectionError(err)
	if class != ClassAuthenticationFailed {
		t.Errorf("class = %v, want %v", class, ClassAuthenticationFailed)
	}
	if msg != "Login failed for user 'app'" {
		t.Errorf("msg = %q, want driver message", msg)
	}
}

func TestClassifyConnectionError_SSLSubstring(t *testing.T) {
	err := errors.New("x509: certificate signed by unknown authority")
	class, _ := ClassifyConnectionError(err)
	if class != ClassSSLTrustMismatch {
		t.Errorf("class = %v, want %v", class, ClassSSLTrustMismatch)
	}
}

func TestClassifyConnectionError_Unknown(t *testing.T) {
	err := errors.New("something unexpected happened")
	class, msg := ClassifyConnectionError(err)
	if class != ClassOther {
		t.Errorf("class = %v, want %v", class, ClassOther)
	}
	if msg != err.Error() {
		t.Errorf("msg = %q, want %q", msg, err.Error())
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"primary key", errors.New("Violation of PRIMARY KEY constraint"), "DB001"},
		{"unique key", errors.New("Violation of UNIQUE KEY constraint"), "DB002"},
		{"foreign key", errors.New("The FOREIGN KEY constraint failed"), "DB003"},
		{"login failed", errors.New("Login failed for user 'app'"), "DB005"},
		{"deadlock", errors.New("Transaction was deadlocked"), "DB007"},
		{"timeout", errors.New("operation timeout expired"), "DB008"},
		{"unmatched falls back", errors.New("disk is on fire"), "ERR000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.code {
				t.Errorf("MapError(%q).Code = %q, want %q", tt.err, got.Code, tt.code)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	got := MapError(nil)
	if got != (UserMessage{}) {
		t.Errorf("MapError(nil) = %+v, want zero value", got)
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("login failed for user")
	got := FormatUserError(err)
	want := "Authentication with the destination database failed (Code: DB005). Verify the connection string's credentials"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if !IsUserFacing(errors.New("deadlock detected")) {
		t.Error("IsUserFacing(deadlock) = false, want true")
	}
	if IsUserFacing(errors.New("something obscure")) {
		t.Error("IsUserFacing(unmatched) = true, want false")
	}
}

