package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code       Code
		httpStatus int
		retryable  bool
	}{
		{CodeValidation, http.StatusBadRequest, false},
		{CodeUnauthorized, http.StatusUnauthorized, false},
		{CodeForbidden, http.StatusForbidden, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeConflict, http.StatusConflict, false},
		{CodeInternal, http.StatusInternalServerError, true},
		{CodeDependency, http.StatusServiceUnavailable, true},
	}

	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.httpStatus {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.httpStatus, meta.HTTPStatus)
		}
		if meta.Retryable != tc.retryable {
			t.Fatalf("code %s: expected retryable %v", tc.code, tc.retryable)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "downstream failed")

	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: downstream failed" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsExtractsTypedError(t *testing.T) {
	inner := New(CodeValidation, "bad input").WithDetails(map[string]string{"code": "is required"})
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Details() == nil {
		t.Fatal("expected details to survive wrapping")
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
