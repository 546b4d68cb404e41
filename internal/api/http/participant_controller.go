package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/api/http/converter"
	"github.com/qb9r2873g/voice-room/internal/service"
)

type ParticipantController struct {
	roster service.RosterInteractor
}

func NewParticipantController(roster service.RosterInteractor) *ParticipantController {
	return &ParticipantController{roster: roster}
}

func (c *ParticipantController) UpdateParticipant(ctx *gin.Context) {
	type request struct {
		Action      string `json:"action"`
		IsMuted     *bool  `json:"is_muted"`
		IsConnected *bool  `json:"is_connected"`
	}

	participantID, err := uuid.Parse(ctx.Param("participantID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rctx := ctx.Request.Context()
	var participant any

	switch {
	case req.Action == "mute":
		muted := true
		if req.IsMuted != nil {
			muted = *req.IsMuted
		}
		p, err := c.roster.SetMuted(rctx, participantID, muted)
		if err != nil {
			respondError(ctx, err)
			return
		}
		participant = converter.ParticipantToApi(p)
	case req.Action == "leave":
		p, err := c.roster.Leave(rctx, participantID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		participant = converter.ParticipantToApi(p)
	case req.Action == "reconnect":
		p, err := c.roster.Reconnect(rctx, participantID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		participant = converter.ParticipantToApi(p)
	case req.IsConnected != nil:
		p, err := c.roster.SetConnected(rctx, participantID, *req.IsConnected)
		if err != nil {
			respondError(ctx, err)
			return
		}
		participant = converter.ParticipantToApi(p)
	case req.IsMuted != nil:
		p, err := c.roster.SetMuted(rctx, participantID, *req.IsMuted)
		if err != nil {
			respondError(ctx, err)
			return
		}
		participant = converter.ParticipantToApi(p)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no valid update provided"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"participant": participant})
}

// LeaveParticipant marks the participant disconnected; repeating the call
// is a no-op success.
func (c *ParticipantController) LeaveParticipant(ctx *gin.Context) {
	participantID, err := uuid.Parse(ctx.Param("participantID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	if _, err := c.roster.Leave(ctx.Request.Context(), participantID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
