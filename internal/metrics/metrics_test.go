package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordDegradedRead(t *testing.T) {
	before := DegradedReadCount("compliance")
	RecordDegradedRead("compliance")
	after := DegradedReadCount("compliance")

	if after != before+1 {
		t.Errorf("expected counter to rise by 1, got %v -> %v", before, after)
	}
}

func TestDegradedReadCountUnknownLabel(t *testing.T) {
	if got := DegradedReadCount("unseen"); got != 0 {
		t.Errorf("expected 0 for untouched label, got %v", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	RecordDose("taken")
	RecordStoreFailure()
	RecordHTTPRequest("/api/health", "200")
	RecordPruned(3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	expected := []string{
		"medtrack_tracker_records_total",
		"medtrack_store_failures_total",
		"medtrack_api_requests_total",
		"medtrack_store_pruned_records_total",
	}
	for _, name := range expected {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}
