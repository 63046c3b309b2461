package jsonresp_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"go.uber.org/zap"
)

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonresp.Error(rec, http.StatusBadRequest, "duplicate_request", "already a member")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
	var body jsonresp.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "duplicate_request" || body.Message != "already a member" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestServerError_HidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonresp.ServerError(rec, zap.NewNop(), "insert", errors.New("connection refused 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("expected driver detail to be hidden")
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	if err := jsonresp.Decode(req, &dst); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dst.Name != "x" {
		t.Errorf("Name: got %q", dst.Name)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	if err := jsonresp.Decode(req, &dst); err == nil {
		t.Error("expected error for trailing data")
	}
}
