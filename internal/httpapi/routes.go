package httpapi

func (s *implServer) routes() {
	s.echo.GET("/health", s.health)

	m := s.echo.Group("/meetings")
	m.POST("", s.createMeeting)
	m.GET("", s.listMeetings)
	m.GET("/:id", s.getMeeting)
	m.GET("/:id/status", s.meetingStatus)
	m.GET("/:id/audio", s.meetingAudio)
	m.PATCH("/:id", s.updateMeeting)
	m.POST("/:id/retry", s.retryMeeting)
	m.DELETE("/:id", s.deleteMeeting)
	m.GET("/:id/export", s.exportMeeting)

	m.POST("/:id/callback", s.meetingCallback, s.requireCallbackToken)
	m.POST("/:id/segments/:segmentId/callback", s.segmentCallback, s.requireCallbackToken)

	sp := s.echo.Group("/speakers")
	sp.GET("", s.listSpeakers)
	sp.POST("", s.createSpeaker)
	sp.POST("/sync-from-pkl", s.syncSpeakers)
	sp.POST("/on-deleted", s.speakerDeleted, s.requireCallbackToken)
	sp.GET("/:id", s.getSpeaker)
	sp.PATCH("/:id", s.renameSpeaker)
	sp.DELETE("/:id", s.deleteSpeaker)
}
