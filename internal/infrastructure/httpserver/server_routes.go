package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	books := api.Group("/books")
	books.GET("", s.listBooks, s.middleware.RateLimit.Handler())
	books.GET("/:id", s.getBook)
	books.GET("/:id/file", s.getBookFile)

	jwt := s.middleware.JWT
	admin := jwt.RequireRole(s.config.AdminRole)
	books.POST("", s.createBook, jwt.RequireJWT(), admin)
	books.PATCH("/:id", s.updateBook, jwt.RequireJWT(), admin)
	books.DELETE("/:id", s.deleteBook, jwt.RequireJWT(), admin)

	cache := api.Group("/admin/cache", jwt.RequireJWT(), admin)
	cache.GET("", s.getCacheSnapshot)
	cache.DELETE("", s.invalidateCacheKey)

	api.GET("/admin/audit", s.getAuditLogs, jwt.RequireJWT(), admin)
}
