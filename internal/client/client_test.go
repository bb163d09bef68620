package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labsyncpro/labsyncpro/internal/planner"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"items": []planner.Lab{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	if _, err := c.ListLabs(context.Background()); err != nil {
		t.Fatalf("ListLabs: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestClientDecodesListResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/labs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"items": []planner.Lab{
			{ID: 2, Name: "Computer Lab 2", Code: "CL2", ComputerCount: 19, SeatCount: 24},
		}})
	}))
	defer srv.Close()

	labs, err := New(srv.URL, "t").ListLabs(context.Background())
	if err != nil {
		t.Fatalf("ListLabs: %v", err)
	}
	if len(labs) != 1 || labs[0].Code != "CL2" || labs[0].ComputerCount != 19 {
		t.Errorf("labs = %+v", labs)
	}
}

func TestClientTurnsErrorBodyIntoServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "seat is already assigned in this schedule"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").AssignSeat(context.Background(), 1, 2, 3)
	var se *planner.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *planner.ServerError, got %T: %v", err, err)
	}
	if se.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", se.Status)
	}
	if se.Message != "seat is already assigned in this schedule" {
		t.Errorf("message = %q", se.Message)
	}
}

func TestClientFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := New(srv.URL, "t").DeleteSeatAssignment(context.Background(), 5)
	var se *planner.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *planner.ServerError, got %T: %v", err, err)
	}
	if se.Message != "request failed with status 502" {
		t.Errorf("message = %q", se.Message)
	}
}

func TestClientResolvePostsPairAndUnwrapsSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/schedules/resolve" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]uint64
		json.NewDecoder(r.Body).Decode(&body)
		if body["class_id"] != 7 || body["lab_id"] != 2 {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{"schedule": planner.Schedule{
			ID: 12, ClassID: 7, LabID: 2, ScheduledDate: "2026-03-10", StartTime: "09:00", EndTime: "17:00",
		}})
	}))
	defer srv.Close()

	s, err := New(srv.URL, "t").Resolve(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.ID != 12 || s.StartTime != "09:00" || s.ScheduledDate != "2026-03-10" {
		t.Errorf("schedule = %+v", s)
	}
}

func TestClientNetworkErrorIsNotServerError(t *testing.T) {
	// Closed server: the dial fails before any HTTP status exists.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, "t").ListLabs(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	var se *planner.ServerError
	if errors.As(err, &se) {
		t.Errorf("connection failure must not be a ServerError: %v", err)
	}
}

func TestClientDownloadsWorkbookBytes(t *testing.T) {
	payload := []byte("PK\x03\x04 not a real workbook")
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write(payload)
	}))
	defer srv.Close()

	data, err := New(srv.URL, "t").DownloadWorkbook(context.Background(), 2, 15)
	if err != nil {
		t.Fatalf("DownloadWorkbook: %v", err)
	}
	if gotPath != "/v1/capacity/labs/2/export" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "schedule_id=15" {
		t.Errorf("query = %q", gotQuery)
	}
	if string(data) != string(payload) {
		t.Errorf("body round trip mismatch: got %d bytes", len(data))
	}
}

func TestClientDownloadWorkbookSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "lab not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").DownloadWorkbook(context.Background(), 99, 0)
	var se *planner.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *planner.ServerError, got %T: %v", err, err)
	}
	if se.Status != http.StatusNotFound || se.Message != "lab not found" {
		t.Errorf("got %d %q", se.Status, se.Message)
	}
}
