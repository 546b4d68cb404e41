package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/api/http/converter"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/service"
)

type MeetingController struct {
	meetings service.MeetingInteractor
	roster   service.RosterInteractor
}

func NewMeetingController(meetings service.MeetingInteractor, roster service.RosterInteractor) *MeetingController {
	return &MeetingController{meetings: meetings, roster: roster}
}

func (c *MeetingController) CreateMeeting(ctx *gin.Context) {
	type request struct {
		Name            string `json:"name" binding:"required"`
		Password        string `json:"password" binding:"required"`
		IsPublic        *bool  `json:"is_public"`
		MaxParticipants int    `json:"max_participants"`
		OwnerToken      string `json:"owner_token" binding:"required"`
		OwnerPrincipal  string `json:"owner_principal" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	meeting, err := c.meetings.CreateMeeting(ctx.Request.Context(), service.CreateMeetingInput{
		Name:            req.Name,
		Password:        req.Password,
		Owner:           domain.OwnerCredentials{Token: req.OwnerToken, Principal: req.OwnerPrincipal},
		IsPublic:        isPublic,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"meeting": converter.MeetingToApi(meeting, nil)})
}

func (c *MeetingController) GetMeeting(ctx *gin.Context) {
	meetingID := ctx.Param("meetingID")

	meeting, err := c.meetings.GetActiveMeeting(ctx.Request.Context(), meetingID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	roster, err := c.roster.ListConnected(ctx.Request.Context(), meetingID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meeting": converter.MeetingToApi(meeting, roster)})
}

func (c *MeetingController) ListMeetings(ctx *gin.Context) {
	meetings, err := c.meetings.ListPublicMeetings(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	result := make([]*converter.MeetingResponse, 0, len(meetings))
	for _, meeting := range meetings {
		roster, err := c.roster.ListConnected(ctx.Request.Context(), meeting.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		resp := converter.MeetingToApi(meeting, roster)
		resp.Participants = nil // list view carries counts only
		result = append(result, resp)
	}

	ctx.JSON(http.StatusOK, gin.H{"meetings": result})
}

func (c *MeetingController) UpdateMeeting(ctx *gin.Context) {
	type request struct {
		Action        string `json:"action" binding:"required"`
		ParticipantID string `json:"participant_id"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if req.Action != "end" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	requesterID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	if err := c.meetings.EndMeeting(ctx.Request.Context(), ctx.Param("meetingID"), requesterID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *MeetingController) JoinMeeting(ctx *gin.Context) {
	type request struct {
		Nickname       string `json:"nickname" binding:"required"`
		Password       string `json:"password" binding:"required"`
		OwnerToken     string `json:"owner_token"`
		OwnerPrincipal string `json:"owner_principal"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	in := service.JoinInput{
		MeetingID: ctx.Param("meetingID"),
		Nickname:  req.Nickname,
		Password:  req.Password,
	}
	if req.OwnerToken != "" || req.OwnerPrincipal != "" {
		in.Owner = &domain.OwnerCredentials{Token: req.OwnerToken, Principal: req.OwnerPrincipal}
	}

	participant, meeting, err := c.roster.Join(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"participant": converter.ParticipantToApi(participant),
		"meeting":     converter.MeetingToApi(meeting, nil),
	})
}

func (c *MeetingController) VerifyOwner(ctx *gin.Context) {
	type request struct {
		OwnerToken     string `json:"owner_token" binding:"required"`
		OwnerPrincipal string `json:"owner_principal" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	meeting, err := c.meetings.VerifyOwner(ctx.Request.Context(), ctx.Param("meetingID"), domain.OwnerCredentials{
		Token:     req.OwnerToken,
		Principal: req.OwnerPrincipal,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"is_owner": true, "host_id": meeting.HostID})
}
