// Package router builds the Echo instance.
//
// It installs the global middleware chain and mounts the API groups,
// mapping each path to its handler.
package router

import (
	"net/http"

	"github.com/blockitin/blockitin-ai/internal/handler"
	"github.com/blockitin/blockitin-ai/internal/middleware"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
		middlewares.Global.Gzip(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api", middlewares.RateLimit.Global())

	registerHealthRoutes(api, h)
	registerAuthRoutes(api, h, middlewares)
	registerChatRoutes(api, h, middlewares)
	registerChatbotRoutes(api, h, middlewares)
	registerDashboardRoutes(api, h, middlewares)
	registerSearchRoutes(api, h, middlewares)

	return router
}

func registerAuthRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	auth := api.Group("/auth", m.RateLimit.Auth())

	auth.POST("/register", handler.HandleWithMessage(h.Auth.Register, http.StatusCreated, "User registered successfully"))
	auth.POST("/login", handler.HandleWithMessage(h.Auth.Login, http.StatusOK, "Login successful"))
	auth.GET("/profile", handler.Handle(h.Auth.Profile, http.StatusOK), m.Auth.RequireAuth)
}

func registerChatRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	chat := api.Group("/chat", m.Auth.RequireAuth)

	chat.POST("/message", handler.Handle(h.Chat.SendMessage, http.StatusOK), m.RateLimit.Chat())
	chat.GET("/sessions", handler.Handle(h.Chat.Sessions, http.StatusOK))
	chat.POST("/sessions", handler.Handle(h.Chat.CreateSession, http.StatusCreated))
	chat.GET("/sessions/:sessionId/history", handler.Handle(h.Chat.History, http.StatusOK))
	chat.PUT("/sessions/:sessionId/end", handler.HandleWithMessage(h.Chat.EndSession, http.StatusOK, "Chat session ended successfully"))
	chat.GET("/sessions/:sessionId/suggestions", handler.Handle(h.Chat.Suggestions, http.StatusOK))
	chat.POST("/analyze-intent", handler.Handle(h.Chat.AnalyzeIntent, http.StatusOK))
	chat.GET("/health", handler.Handle(h.Chat.SystemHealth, http.StatusOK))
	chat.POST("/initialize-sheets", handler.Handle(h.Chat.InitializeSheets, http.StatusOK))
}

func registerChatbotRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	chatbot := api.Group("/chatbot", m.Auth.RequireAPIKey)

	chatbot.POST("/chat", handler.Handle(h.Chatbot.Chat, http.StatusOK), m.RateLimit.Chat())
	chatbot.POST("/sheets", handler.Handle(h.Chatbot.Sheets, http.StatusOK))
	chatbot.GET("/history/:sessionId", handler.Handle(h.Chatbot.History, http.StatusOK))
	chatbot.GET("/analytics", handler.Handle(h.Chatbot.Analytics, http.StatusOK))
	chatbot.POST("/sheets/test", handler.Handle(h.Chatbot.TestSheets, http.StatusOK))
}

func registerDashboardRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	d := api.Group("/dashboard", m.Auth.RequireAPIKey)
	dh := h.Dashboard

	d.GET("/overview", handler.Handle(dh.Overview, http.StatusOK))

	d.GET("/credentials", handler.Handle(dh.Credentials, http.StatusOK))
	d.POST("/credentials/mint", handler.HandleWithMessage(dh.MintCredential, http.StatusOK, "NFT Credential minted successfully"))
	d.GET("/credentials/:id/verify", handler.Handle(dh.VerifyCredential, http.StatusOK))

	d.GET("/resume", handler.Handle(dh.Resume, http.StatusOK))
	d.POST("/resume/generate", handler.HandleWithMessage(dh.GenerateResume, http.StatusOK, "AI Resume generated successfully"))
	d.POST("/resume/optimize", handler.HandleWithMessage(dh.OptimizeResume, http.StatusOK, "Resume optimized for job posting"))

	d.GET("/health", handler.Handle(dh.HealthRecords, http.StatusOK))
	d.POST("/health/upload", handler.HandleWithMessage(dh.UploadHealthRecord, http.StatusOK, "Health record uploaded successfully"))
	d.POST("/health/share", handler.HandleWithMessage(dh.ShareHealthRecord, http.StatusOK, "Health record shared successfully"))
	d.GET("/health/wellness-score", handler.Handle(dh.WellnessScore, http.StatusOK))

	d.GET("/wellness", handler.Handle(dh.WellnessData, http.StatusOK))
	d.POST("/wellness/checkin", handler.HandleWithMessage(dh.WellnessCheckin, http.StatusOK, "Wellness check-in recorded"))

	d.GET("/attendance", handler.Handle(dh.Attendance, http.StatusOK))
	d.POST("/attendance/checkin", handler.HandleWithMessage(dh.AttendanceCheckin, http.StatusOK, "Attendance recorded successfully"))

	d.GET("/publishing", handler.Handle(dh.Publications, http.StatusOK))
	d.POST("/publishing/submit", handler.HandleWithMessage(dh.SubmitPublication, http.StatusOK, "Publication submitted successfully"))

	d.GET("/wallet", handler.Handle(dh.Wallet, http.StatusOK))
	d.POST("/wallet/connect", handler.HandleWithMessage(dh.ConnectWallet, http.StatusOK, "Wallet connected successfully"))

	d.GET("/assignments", handler.Handle(dh.Assignments, http.StatusOK))
	d.POST("/assignments", handler.HandleWithMessage(dh.CreateAssignment, http.StatusOK, "Assignment created successfully"))
	d.PUT("/assignments/:id", handler.HandleWithMessage(dh.UpdateAssignment, http.StatusOK, "Assignment updated successfully"))

	d.GET("/map/locations", handler.Handle(dh.Locations, http.StatusOK))
	d.POST("/map/navigate", handler.HandleWithMessage(dh.Navigate, http.StatusOK, "Navigation route calculated"))

	d.GET("/results", handler.Handle(dh.Results, http.StatusOK))
	d.POST("/results/calculate-gpa", handler.Handle(dh.CalculateGPA, http.StatusOK))
	d.GET("/results/transcript/:userId", handler.HandleWithMessage(dh.Transcript, http.StatusOK, "Transcript generated successfully"))

	d.GET("/search", handler.Handle(dh.Search, http.StatusOK))
	d.GET("/analytics", handler.Handle(dh.Analytics, http.StatusOK))
	d.POST("/export", handler.HandleWithMessage(dh.Export, http.StatusOK, "Dashboard data exported successfully"))
}

func registerSearchRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	search := api.Group("/search", m.Auth.RequireAPIKey)
	sh := h.Search

	search.GET("/advanced", handler.Handle(sh.Advanced, http.StatusOK))
	search.GET("/suggestions", handler.Handle(sh.Suggestions, http.StatusOK))
	search.POST("/filter", handler.Handle(sh.Filter, http.StatusOK))
	search.GET("/analytics", handler.Handle(sh.Analytics, http.StatusOK))
	search.GET("/popular", handler.Handle(sh.Popular, http.StatusOK))

	search.GET("/history/:userId", handler.Handle(sh.History, http.StatusOK))
	search.DELETE("/history/:userId", handler.HandleWithMessage(sh.ClearHistory, http.StatusOK, "Search history cleared successfully"))

	search.POST("/save", handler.HandleWithMessage(sh.Save, http.StatusOK, "Search saved successfully"))
	search.GET("/saved/:userId", handler.Handle(sh.Saved, http.StatusOK))
	search.DELETE("/saved/:searchId", handler.HandleWithMessage(sh.DeleteSaved, http.StatusOK, "Saved search deleted successfully"))

	search.POST("/index/rebuild", handler.HandleWithMessage(sh.RebuildIndex, http.StatusOK, "Search index rebuilt successfully"))
	search.POST("/export", handler.HandleWithMessage(sh.Export, http.StatusOK, "Search results exported successfully"))
}
