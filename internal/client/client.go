// Package client is the HTTP client behind the planner's collaborator
// interfaces.  It talks JSON to the capacity planning API with a
// bearer token and translates non-2xx responses into
// planner.ServerError values whose message the UI shows verbatim.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labsyncpro/labsyncpro/internal/planner"
)

// Client calls the capacity planning API.  It satisfies the planner's
// Catalog, Directory, Scheduler and Ledger interfaces.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client for the API at baseURL authenticating with the
// given bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do performs one round trip.  A non-2xx status is returned as a
// *planner.ServerError carrying the server's `error` field, or a
// generic message when the body is not the expected JSON shape.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &planner.ServerError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListLabs implements planner.Catalog.
func (c *Client) ListLabs(ctx context.Context) ([]planner.Lab, error) {
	var resp struct {
		Items []planner.Lab `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/labs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetLab implements planner.Catalog.
func (c *Client) GetLab(ctx context.Context, id uint64) (planner.LabDetail, error) {
	var detail planner.LabDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/labs/%d", id), nil, &detail)
	return detail, err
}

// ListClasses implements planner.Directory.
func (c *Client) ListClasses(ctx context.Context, labID uint64) ([]planner.ClassSummary, error) {
	var resp struct {
		Items []planner.ClassSummary `json:"items"`
	}
	path := "/v1/classes"
	if labID != 0 {
		path = fmt.Sprintf("/v1/classes?lab_id=%d", labID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Roster implements planner.Directory.
func (c *Client) Roster(ctx context.Context, classID uint64) (planner.Roster, error) {
	var roster planner.Roster
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/capacity/classes/%d/roster", classID), nil, &roster)
	return roster, err
}

// FindSchedules implements planner.Scheduler (read-only lookup).
func (c *Client) FindSchedules(ctx context.Context, classID, labID uint64) ([]planner.Schedule, error) {
	var resp struct {
		Items []planner.Schedule `json:"items"`
	}
	path := fmt.Sprintf("/v1/schedules?class_id=%d&lab_id=%d", classID, labID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Resolve implements planner.Scheduler (idempotent create-if-missing).
func (c *Client) Resolve(ctx context.Context, classID, labID uint64) (planner.Schedule, error) {
	body := map[string]uint64{"class_id": classID, "lab_id": labID}
	var resp struct {
		Schedule planner.Schedule `json:"schedule"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/schedules/resolve", body, &resp)
	return resp.Schedule, err
}

// SeatAssignments implements planner.Ledger.
func (c *Client) SeatAssignments(ctx context.Context, labID, scheduleID uint64) ([]planner.SeatAssignment, error) {
	var resp struct {
		Items []planner.SeatAssignment `json:"items"`
	}
	path := fmt.Sprintf("/v1/capacity/labs/%d/seat-assignments", labID)
	if scheduleID != 0 {
		path += fmt.Sprintf("?schedule_id=%d", scheduleID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ComputerAssignments implements planner.Ledger.
func (c *Client) ComputerAssignments(ctx context.Context, classID, labID uint64) ([]planner.ComputerAssignment, error) {
	var resp struct {
		Items []planner.ComputerAssignment `json:"items"`
	}
	path := fmt.Sprintf("/v1/classes/%d/assignments?lab_id=%d", classID, labID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AssignSeat implements planner.Ledger.
func (c *Client) AssignSeat(ctx context.Context, scheduleID, seatID, userID uint64) (planner.SeatAssignment, error) {
	body := map[string]uint64{
		"schedule_id": scheduleID,
		"seat_id":     seatID,
		"user_id":     userID,
	}
	var a planner.SeatAssignment
	err := c.do(ctx, http.MethodPost, "/v1/capacity/seat-assignments", body, &a)
	return a, err
}

// AssignComputerToGroup implements planner.Ledger.
func (c *Client) AssignComputerToGroup(ctx context.Context, scheduleID, computerID, groupID uint64) (planner.ComputerAssignment, error) {
	body := map[string]uint64{
		"schedule_id": scheduleID,
		"computer_id": computerID,
		"group_id":    groupID,
	}
	var a planner.ComputerAssignment
	err := c.do(ctx, http.MethodPost, "/v1/assignments", body, &a)
	return a, err
}

// DeleteSeatAssignment implements planner.Ledger.
func (c *Client) DeleteSeatAssignment(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/capacity/seat-assignments/%d", id), nil, nil)
}

// DeleteComputerAssignment implements planner.Ledger.
func (c *Client) DeleteComputerAssignment(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/capacity/computer-assignments/%d", id), nil, nil)
}

// DownloadWorkbook fetches the capacity workbook for a lab as raw
// xlsx bytes.  A non-zero scheduleID narrows the export to that
// schedule's assignments.
func (c *Client) DownloadWorkbook(ctx context.Context, labID, scheduleID uint64) ([]byte, error) {
	path := fmt.Sprintf("/v1/capacity/labs/%d/export", labID)
	if scheduleID != 0 {
		path += fmt.Sprintf("?schedule_id=%d", scheduleID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &planner.ServerError{Status: resp.StatusCode, Message: msg}
	}
	return io.ReadAll(resp.Body)
}

// UnassignedStudents implements planner.Ledger.
func (c *Client) UnassignedStudents(ctx context.Context, classID, labID, scheduleID uint64) ([]planner.Student, error) {
	var resp struct {
		Items []planner.Student `json:"items"`
	}
	path := fmt.Sprintf("/v1/capacity/unassigned-students/%d/%d", classID, labID)
	if scheduleID != 0 {
		path += fmt.Sprintf("?schedule_id=%d", scheduleID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
