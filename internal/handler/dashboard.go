package handler

import (
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the /api/dashboard widgets.
type DashboardHandler struct {
	Handler
	dashboard *service.DashboardService
}

func NewDashboardHandler(s *server.Server, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		Handler:   NewHandler(s),
		dashboard: dashboard,
	}
}

func (h *DashboardHandler) Overview(c echo.Context, q *model.UserQuery) (*service.Overview, error) {
	return h.dashboard.Overview(c.Request().Context(), q.UserID), nil
}

// --- credentials ---

func (h *DashboardHandler) Credentials(c echo.Context, q *model.UserQuery) (*service.CredentialList, error) {
	return h.dashboard.Credentials(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) MintCredential(c echo.Context, p *model.MintCredentialPayload) (*service.MintResult, error) {
	return h.dashboard.MintCredential(c.Request().Context(), p)
}

func (h *DashboardHandler) VerifyCredential(c echo.Context, p *model.IDParam) (*service.Verification, error) {
	return h.dashboard.VerifyCredential(c.Request().Context(), p.ID), nil
}

// --- resume ---

func (h *DashboardHandler) Resume(c echo.Context, q *model.UserQuery) (*service.Resume, error) {
	return h.dashboard.Resume(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) GenerateResume(c echo.Context, p *model.GenerateResumePayload) (*service.GeneratedResume, error) {
	return h.dashboard.GenerateResume(c.Request().Context(), p), nil
}

func (h *DashboardHandler) OptimizeResume(c echo.Context, p *model.OptimizeResumePayload) (*service.ResumeOptimization, error) {
	return h.dashboard.OptimizeResume(c.Request().Context(), p), nil
}

// --- health passport and wellness ---

func (h *DashboardHandler) HealthRecords(c echo.Context, q *model.UserQuery) (*service.HealthPassport, error) {
	return h.dashboard.HealthRecords(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) UploadHealthRecord(c echo.Context, p *model.UploadHealthPayload) (*service.HealthUpload, error) {
	return h.dashboard.UploadHealthRecord(c.Request().Context(), p)
}

func (h *DashboardHandler) ShareHealthRecord(c echo.Context, p *model.ShareHealthPayload) (*service.HealthShare, error) {
	return h.dashboard.ShareHealthRecord(c.Request().Context(), p), nil
}

func (h *DashboardHandler) WellnessScore(c echo.Context, q *model.UserQuery) (*service.WellnessScore, error) {
	return h.dashboard.WellnessScore(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) WellnessData(c echo.Context, q *model.PeriodQuery) (*service.WellnessData, error) {
	return h.dashboard.WellnessData(c.Request().Context(), q), nil
}

func (h *DashboardHandler) WellnessCheckin(c echo.Context, p *model.WellnessCheckinPayload) (*service.CheckinResult, error) {
	return h.dashboard.RecordWellnessCheckin(c.Request().Context(), p)
}

// --- attendance ---

func (h *DashboardHandler) Attendance(c echo.Context, q *model.AttendanceQuery) (*service.AttendanceLog, error) {
	return h.dashboard.AttendanceLog(c.Request().Context(), q), nil
}

func (h *DashboardHandler) AttendanceCheckin(c echo.Context, p *model.AttendancePayload) (*service.AttendanceResult, error) {
	return h.dashboard.RecordAttendance(c.Request().Context(), p)
}

// --- publishing and wallet ---

func (h *DashboardHandler) Publications(c echo.Context, q *model.UserQuery) (*service.PublicationList, error) {
	return h.dashboard.Publications(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) SubmitPublication(c echo.Context, p *model.PublicationPayload) (*service.SubmissionResult, error) {
	return h.dashboard.SubmitPublication(c.Request().Context(), p)
}

func (h *DashboardHandler) Wallet(c echo.Context, q *model.UserQuery) (*service.WalletInfo, error) {
	return h.dashboard.WalletInfo(c.Request().Context(), q.UserID), nil
}

func (h *DashboardHandler) ConnectWallet(c echo.Context, p *model.WalletConnectPayload) (*service.WalletConnection, error) {
	return h.dashboard.ConnectWallet(c.Request().Context(), p), nil
}

// --- assignments ---

func (h *DashboardHandler) Assignments(c echo.Context, q *model.AssignmentQuery) (*service.AssignmentList, error) {
	return h.dashboard.Assignments(c.Request().Context(), q), nil
}

func (h *DashboardHandler) CreateAssignment(c echo.Context, p *model.CreateAssignmentPayload) (*service.AssignmentResult, error) {
	return h.dashboard.CreateAssignment(c.Request().Context(), p)
}

func (h *DashboardHandler) UpdateAssignment(c echo.Context, p *model.UpdateAssignmentPayload) (*service.AssignmentResult, error) {
	return h.dashboard.UpdateAssignment(c.Request().Context(), p)
}

// --- campus map ---

func (h *DashboardHandler) Locations(c echo.Context, q *model.CategoryQuery) (*service.LocationList, error) {
	return h.dashboard.CampusLocations(c.Request().Context(), q.Category), nil
}

func (h *DashboardHandler) Navigate(c echo.Context, p *model.NavigatePayload) (*service.Route, error) {
	return h.dashboard.Navigate(c.Request().Context(), p), nil
}

// --- academic results ---

func (h *DashboardHandler) Results(c echo.Context, q *model.ResultsQuery) (*service.AcademicResults, error) {
	return h.dashboard.AcademicResults(c.Request().Context(), q), nil
}

func (h *DashboardHandler) CalculateGPA(c echo.Context, p *model.GPAPayload) (*service.GPAResult, error) {
	return h.dashboard.CalculateGPA(c.Request().Context(), p), nil
}

func (h *DashboardHandler) Transcript(c echo.Context, q *model.TranscriptQuery) (*service.Transcript, error) {
	return h.dashboard.Transcript(c.Request().Context(), q), nil
}

// --- search, analytics, export ---

func (h *DashboardHandler) Search(c echo.Context, q *model.DashboardSearchQuery) (*service.DashboardSearchResult, error) {
	return h.dashboard.Search(c.Request().Context(), q)
}

func (h *DashboardHandler) Analytics(c echo.Context, q *model.PeriodQuery) (*service.DashboardAnalytics, error) {
	return h.dashboard.Analytics(c.Request().Context(), q), nil
}

func (h *DashboardHandler) Export(c echo.Context, p *model.ExportPayload) (*service.ExportResult, error) {
	return h.dashboard.Export(c.Request().Context(), p), nil
}
