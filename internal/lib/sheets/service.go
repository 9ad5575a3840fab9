package sheets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/rs/zerolog"
)

// Worksheet names and header rows.
const (
	SheetChatLogs         = "ChatLogs"
	SheetNavigationLogs   = "NavigationLogs"
	SheetAcademicData     = "AcademicData"
	SheetUserAnalytics    = "UserAnalytics"
	SheetAnalyticsReports = "AnalyticsReports"
	SheetEvents           = "Events"
)

var worksheetHeaders = []struct {
	name    string
	headers []string
}{
	{SheetChatLogs, []string{"Timestamp", "User", "Action", "Data", "Source"}},
	{SheetNavigationLogs, []string{"Timestamp", "UserId", "Type", "Section", "Action", "Query", "Source"}},
	{SheetAcademicData, []string{"Timestamp", "UserId", "Credentials", "GPA", "Wellness Score", "Assignments", "Health Records", "Sync Type"}},
	{SheetUserAnalytics, []string{"Timestamp", "UserId", "Total Messages", "Sessions Count", "Sheets Interactions", "Favorite Features", "Update Type"}},
	{SheetEvents, []string{"Timestamp", "UserId", "Action", "Data", "Source"}},
}

// Interaction is one chat exchange written to the ChatLogs sheet.
type Interaction struct {
	Action string
	Data   any
	User   string
	Source string
}

// UserAnalytics is a usage snapshot written to the UserAnalytics sheet.
type UserAnalytics struct {
	TotalMessages      int
	SessionsCount      int
	SheetsInteractions int
	FavoriteFeatures   []string
}

// Service writes domain rows to the spreadsheet. It uses the REST API when
// service-account credentials are configured and the webhook otherwise.
type Service struct {
	webhook  *Webhook
	workbook *Workbook
	logger   *zerolog.Logger
}

// NewService builds the webhook client and, when credentials are complete,
// the REST client. A bad private key is logged and the REST client skipped.
func NewService(cfg *config.Config, logger *zerolog.Logger) *Service {
	sheetsCfg := cfg.Integration.Sheets
	s := &Service{
		webhook: NewWebhook(sheetsCfg.WebhookURL, sheetsCfg.Timeout, logger),
		logger:  logger,
	}

	if sheetsCfg.WorkbookEnabled() {
		wb, err := NewWorkbook(sheetsCfg)
		if err != nil {
			logger.Error().Err(err).Msg("Google Sheets REST client disabled")
		} else {
			s.workbook = wb
		}
	}
	return s
}

// Configured reports whether any Sheets transport is set up.
func (s *Service) Configured() bool {
	return s.workbook != nil || s.webhook.Configured()
}

// Send delivers a raw action request. The webhook receives it as is; with
// only the REST client configured it becomes a row on the Events sheet.
func (s *Service) Send(ctx context.Context, req Request) model.SheetsResult {
	if s.webhook.Configured() || s.workbook == nil {
		return s.webhook.Send(ctx, req)
	}

	ts := req.Timestamp
	if ts == "" {
		ts = now()
	}
	return s.appendRow(ctx, SheetEvents, req.UserID, []any{ts, req.UserID, req.Action, jsonText(req.Data), req.Source})
}

// Fetch reads through the webhook.
func (s *Service) Fetch(ctx context.Context, action string, params map[string]string) model.SheetsResult {
	return s.webhook.Fetch(ctx, action, params)
}

// TestConnection checks the spreadsheet through whichever transport is in use.
func (s *Service) TestConnection(ctx context.Context) model.SheetsResult {
	if s.workbook == nil {
		return s.webhook.TestConnection(ctx)
	}

	meta, err := s.workbook.Metadata(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return failure("Failed to connect to Google Sheets")
	}
	return model.SheetsResult{
		Success: true,
		Message: "Successfully connected to Google Sheets",
		Data:    meta,
	}
}

// Healthy is TestConnection as a bool.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.TestConnection(ctx).Success
}

func (s *Service) appendRow(ctx context.Context, sheet, userID string, row []any) model.SheetsResult {
	if s.workbook == nil {
		return s.webhook.Send(ctx, Request{
			Action: "append_row",
			Data:   map[string]any{"sheet": sheet, "row": row},
			UserID: userID,
			Source: SourceChatbot,
		})
	}

	out, err := s.workbook.Append(ctx, sheet, row)
	if err != nil {
		s.logger.Error().Err(err).Str("sheet", sheet).Msg("failed to save to Google Sheets")
		return failure("Failed to save data to Google Sheets")
	}
	return model.SheetsResult{
		Success: true,
		Message: "Data successfully saved to Google Sheets",
		Data:    out,
	}
}

func now() string {
	return model.Timestamp(time.Now())
}

func jsonText(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *Service) LogChatInteraction(ctx context.Context, in Interaction) model.SheetsResult {
	return s.appendRow(ctx, SheetChatLogs, in.User, []any{now(), in.User, in.Action, jsonText(in.Data), in.Source})
}

func (s *Service) LogNavigation(ctx context.Context, userID, section, action, query string) model.SheetsResult {
	return s.appendRow(ctx, SheetNavigationLogs, userID, []any{now(), userID, "navigation", section, action, query, SourceChatbot})
}

func (s *Service) SyncAcademicData(ctx context.Context, userID string, data model.AcademicData) model.SheetsResult {
	return s.appendRow(ctx, SheetAcademicData, userID, []any{
		now(), userID, data.Credentials, data.GPA, data.WellnessScore, data.Assignments, data.HealthRecords, "Full Sync",
	})
}

func (s *Service) TrackUserAnalytics(ctx context.Context, userID string, a UserAnalytics) model.SheetsResult {
	features := a.FavoriteFeatures
	if features == nil {
		features = []string{}
	}
	return s.appendRow(ctx, SheetUserAnalytics, userID, []any{
		now(), userID, a.TotalMessages, a.SessionsCount, a.SheetsInteractions, jsonText(features), "Analytics Update",
	})
}

// AnalyticsReport summarizes the logged activity.
type AnalyticsReport struct {
	GeneratedAt       string `json:"generatedAt"`
	UserID            string `json:"userId"`
	TotalInteractions int    `json:"totalInteractions"`
	NavigationCount   int    `json:"navigationCount"`
	LastAcademicSync  string `json:"lastAcademicSync"`
	Summary           string `json:"summary"`
}

// GenerateAnalyticsReport counts the logged rows and appends the report to
// the AnalyticsReports sheet. Through the webhook the script builds it.
func (s *Service) GenerateAnalyticsReport(ctx context.Context, userID string) model.SheetsResult {
	if s.workbook == nil {
		return s.webhook.Send(ctx, Request{
			Action: "generate_analytics_report",
			Data:   map[string]any{"userId": userID},
			UserID: userID,
			Source: SourceChatbot,
		})
	}

	chatLogs, err := s.workbook.Read(ctx, SheetChatLogs, "A:E")
	if err != nil {
		return s.reportFailure(err)
	}
	navLogs, err := s.workbook.Read(ctx, SheetNavigationLogs, "A:G")
	if err != nil {
		return s.reportFailure(err)
	}
	academic, err := s.workbook.Read(ctx, SheetAcademicData, "A:H")
	if err != nil {
		return s.reportFailure(err)
	}

	report := AnalyticsReport{
		GeneratedAt:       now(),
		UserID:            userID,
		TotalInteractions: len(chatLogs),
		NavigationCount:   len(navLogs),
		LastAcademicSync:  "Never",
		Summary:           "Comprehensive analytics report generated",
	}
	if n := len(academic); n > 0 && len(academic[n-1]) > 0 {
		if ts, ok := academic[n-1][0].(string); ok {
			report.LastAcademicSync = ts
		}
	}

	if _, err := s.workbook.Append(ctx, SheetAnalyticsReports, []any{
		report.GeneratedAt, report.UserID, report.TotalInteractions, report.NavigationCount, report.LastAcademicSync, report.Summary,
	}); err != nil {
		return s.reportFailure(err)
	}

	return model.SheetsResult{
		Success: true,
		Message: "Analytics report generated successfully",
		Data:    report,
	}
}

func (s *Service) reportFailure(err error) model.SheetsResult {
	s.logger.Error().Err(err).Msg("failed to generate analytics report")
	return failure("Failed to generate analytics report")
}

// CreateWorksheetStructure makes sure the log sheets exist with headers.
func (s *Service) CreateWorksheetStructure(ctx context.Context) model.SheetsResult {
	if s.workbook == nil {
		sheets := make(map[string][]string, len(worksheetHeaders))
		for _, ws := range worksheetHeaders {
			sheets[ws.name] = ws.headers
		}
		return s.webhook.Send(ctx, Request{
			Action: "create_worksheet_structure",
			Data:   map[string]any{"sheets": sheets},
			UserID: "system",
			Source: SourceBackend,
		})
	}

	for _, ws := range worksheetHeaders {
		if err := s.workbook.EnsureSheet(ctx, ws.name, ws.headers); err != nil {
			s.logger.Error().Err(err).Str("sheet", ws.name).Msg("failed to ensure worksheet")
			return failure("Failed to create worksheet structure")
		}
	}
	return model.SheetsResult{Success: true, Message: "Worksheet structure created successfully"}
}
