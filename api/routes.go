package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	v1.Use(s.AuthMiddleware())

	// Answer reads, guarded by the access gate
	rounds := v1.Group("/rounds")
	{
		rounds.GET("/latest", s.handleLatestRound)
		rounds.GET("/:id", s.handleGetRound)
	}

	// Oracle and funding state is public
	oracles := v1.Group("/oracles")
	{
		oracles.GET("", s.handleListOracles)
		oracles.GET("/:address", s.handleGetOracle)
		oracles.GET("/:address/round-state", s.handleOracleRoundState)
	}

	v1.GET("/funds", s.handleFunds)
	v1.GET("/config", s.handleConfig)
}
