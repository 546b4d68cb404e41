package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/api/http/converter"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/service"
)

type SignalController struct {
	signals service.SignalInteractor
}

func NewSignalController(signals service.SignalInteractor) *SignalController {
	return &SignalController{signals: signals}
}

func (c *SignalController) DepositSignal(ctx *gin.Context) {
	type request struct {
		MeetingID string          `json:"meeting_id" binding:"required"`
		From      string          `json:"from_participant" binding:"required"`
		To        string          `json:"to_participant" binding:"required"`
		Kind      string          `json:"kind" binding:"required"`
		Payload   json.RawMessage `json:"payload" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	from, err := uuid.Parse(req.From)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender id"})
		return
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}

	signalID, err := c.signals.Deposit(ctx.Request.Context(), service.DepositInput{
		MeetingID: req.MeetingID,
		From:      from,
		To:        to,
		Kind:      domain.SignalKind(req.Kind),
		Payload:   req.Payload,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "signal_id": signalID})
}

func (c *SignalController) DrainSignals(ctx *gin.Context) {
	meetingID := ctx.Query("meetingId")
	participantID := ctx.Query("participantId")
	if meetingID == "" || participantID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "meetingId and participantId are required"})
		return
	}

	recipient, err := uuid.Parse(participantID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	signals, err := c.signals.Drain(ctx.Request.Context(), meetingID, recipient)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"signals": converter.SignalsToApi(signals)})
}
