package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(meetings *MeetingController, participants *ParticipantController, signals *SignalController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if meetings != nil {
		group := api.Group("/meetings")
		group.POST("", meetings.CreateMeeting)
		group.GET("", meetings.ListMeetings)
		group.GET("/:meetingID", meetings.GetMeeting)
		group.PUT("/:meetingID", meetings.UpdateMeeting)
		group.POST("/:meetingID/join", meetings.JoinMeeting)
		group.POST("/:meetingID/verify-owner", meetings.VerifyOwner)
	}

	if participants != nil {
		group := api.Group("/participants")
		group.PUT("/:participantID", participants.UpdateParticipant)
		group.DELETE("/:participantID", participants.LeaveParticipant)
	}

	if signals != nil {
		group := api.Group("/signals")
		group.POST("", signals.DepositSignal)
		group.GET("", signals.DrainSignals)
	}

	return router
}
