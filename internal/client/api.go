package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

// APIClient talks to the relay's HTTP surface. It implements Signaler and
// MeetingFetcher for the orchestrator and session loops.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type JoinResult struct {
	Participant ParticipantView `json:"participant"`
	Meeting     MeetingView     `json:"meeting"`
}

func (c *APIClient) CreateMeeting(ctx context.Context, name, password string, owner domain.OwnerCredentials, isPublic bool, maxParticipants int) (*MeetingView, error) {
	body := map[string]any{
		"name":             name,
		"password":         password,
		"is_public":        isPublic,
		"max_participants": maxParticipants,
		"owner_token":      owner.Token,
		"owner_principal":  owner.Principal,
	}
	var out struct {
		Meeting MeetingView `json:"meeting"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/meetings", body, &out); err != nil {
		return nil, err
	}
	return &out.Meeting, nil
}

func (c *APIClient) FetchMeeting(ctx context.Context, meetingID string) (*MeetingView, error) {
	var out struct {
		Meeting MeetingView `json:"meeting"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/meetings/"+url.PathEscape(meetingID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Meeting, nil
}

func (c *APIClient) ListMeetings(ctx context.Context, search string) ([]MeetingView, error) {
	path := "/api/meetings"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var out struct {
		Meetings []MeetingView `json:"meetings"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Meetings, nil
}

func (c *APIClient) Join(ctx context.Context, meetingID, nickname, password string, owner *domain.OwnerCredentials) (*JoinResult, error) {
	body := map[string]any{
		"nickname": nickname,
		"password": password,
	}
	if owner != nil {
		body["owner_token"] = owner.Token
		body["owner_principal"] = owner.Principal
	}
	var out JoinResult
	if err := c.do(ctx, http.MethodPost, "/api/meetings/"+url.PathEscape(meetingID)+"/join", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) EndMeeting(ctx context.Context, meetingID string, participantID uuid.UUID) error {
	body := map[string]any{
		"action":         "end",
		"participant_id": participantID.String(),
	}
	return c.do(ctx, http.MethodPut, "/api/meetings/"+url.PathEscape(meetingID), body, nil)
}

func (c *APIClient) VerifyOwner(ctx context.Context, meetingID string, owner domain.OwnerCredentials) (*uuid.UUID, error) {
	body := map[string]any{
		"owner_token":     owner.Token,
		"owner_principal": owner.Principal,
	}
	var out struct {
		IsOwner bool       `json:"is_owner"`
		HostID  *uuid.UUID `json:"host_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/meetings/"+url.PathEscape(meetingID)+"/verify-owner", body, &out); err != nil {
		return nil, err
	}
	return out.HostID, nil
}

func (c *APIClient) UpdateParticipant(ctx context.Context, participantID uuid.UUID, action string) (*ParticipantView, error) {
	body := map[string]any{"action": action}
	var out struct {
		Participant ParticipantView `json:"participant"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/participants/"+participantID.String(), body, &out); err != nil {
		return nil, err
	}
	return &out.Participant, nil
}

func (c *APIClient) SetMuted(ctx context.Context, participantID uuid.UUID, muted bool) (*ParticipantView, error) {
	body := map[string]any{"action": "mute", "is_muted": muted}
	var out struct {
		Participant ParticipantView `json:"participant"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/participants/"+participantID.String(), body, &out); err != nil {
		return nil, err
	}
	return &out.Participant, nil
}

func (c *APIClient) Deposit(ctx context.Context, meetingID string, from, to uuid.UUID, kind domain.SignalKind, payload json.RawMessage) error {
	body := map[string]any{
		"meeting_id":       meetingID,
		"from_participant": from.String(),
		"to_participant":   to.String(),
		"kind":             string(kind),
		"payload":          payload,
	}
	return c.do(ctx, http.MethodPost, "/api/signals", body, nil)
}

func (c *APIClient) Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]Signal, error) {
	path := fmt.Sprintf("/api/signals?meetingId=%s&participantId=%s",
		url.QueryEscape(meetingID), url.QueryEscape(recipient.String()))
	var out struct {
		Signals []Signal `json:"signals"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Signals, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromStatus(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorFromStatus folds the HTTP status back into the domain taxonomy so
// callers keep matching with errors.Is on either side of the wire.
func errorFromStatus(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = domain.ErrInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ErrInvalidCredentials
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusGone:
		kind = domain.ErrMeetingEnded
	case http.StatusConflict:
		kind = domain.ErrMeetingFull
	default:
		kind = domain.ErrStoreUnavailable
	}
	if payload.Error != "" {
		return fmt.Errorf("%w: %s", kind, payload.Error)
	}
	return fmt.Errorf("%w: status %d", kind, resp.StatusCode)
}
