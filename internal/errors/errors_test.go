package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructorsSetCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		typ  ErrorType
		code int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("Sensor not found", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("dup", nil), ErrorTypeConflict, http.StatusConflict},
		{"store", NewStoreUnavailableError("redis", "boom", nil), ErrorTypeUnavailable, http.StatusInternalServerError},
		{"internal", NewInternalError("oops", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.typ {
				t.Errorf("type = %q, want %q", tt.err.Type, tt.typ)
			}
			if tt.err.Code != tt.code {
				t.Errorf("code = %d, want %d", tt.err.Code, tt.code)
			}
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	base := NewNotFoundError("Sensor not found", nil)
	wrapped := fmt.Errorf("lookup: %w", base)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false, want true")
	}
	if IsConflict(wrapped) {
		t.Error("IsConflict(wrapped) = true, want false")
	}
	if IsNotFound(stderrors.New("plain")) {
		t.Error("IsNotFound(plain) = true, want false")
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreUnavailableError("timescale", "failed to upsert reading", cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is did not reach the cause")
	}
	if !IsStoreUnavailable(err) {
		t.Error("IsStoreUnavailable = false")
	}
}

func TestWithStepAppearsInMessage(t *testing.T) {
	err := NewStoreUnavailableError("redis", "failed to set latest reading", nil).WithStep("record.cache")
	if !strings.Contains(err.Error(), "record.cache") {
		t.Errorf("Error() = %q, want step name", err.Error())
	}
}

func TestPublicHidesStoreInternals(t *testing.T) {
	cause := stderrors.New(`pq: syntax error at "SELECT"`)
	err := NewStoreUnavailableError("timescale", "failed to query SELECT * FROM sensor_data", cause).
		WithStep("record.timeseries").
		WithRequestID("req_1")

	body, marshalErr := json.Marshal(err.Public())
	if marshalErr != nil {
		t.Fatal(marshalErr)
	}
	s := string(body)
	if strings.Contains(s, "SELECT") {
		t.Errorf("public body leaks query text: %s", s)
	}
	if !strings.Contains(s, "record.timeseries") {
		t.Errorf("public body lost step: %s", s)
	}
	if !strings.Contains(s, "req_1") {
		t.Errorf("public body lost request id: %s", s)
	}
}

func TestPublicKeepsClientErrors(t *testing.T) {
	err := NewNotFoundError("Sensor not found", nil)
	if got := err.Public().Message; got != "Sensor not found" {
		t.Errorf("message = %q, want %q", got, "Sensor not found")
	}
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(stderrors.New("boom"))
	if got.Type != ErrorTypeInternal {
		t.Errorf("type = %q, want internal", got.Type)
	}

	conflict := NewConflictError("dup", nil)
	if FromError(fmt.Errorf("x: %w", conflict)) != conflict {
		t.Error("FromError did not return the wrapped APIError")
	}
}
