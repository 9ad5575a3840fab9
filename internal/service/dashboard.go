package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	dashboardSource = "Dashboard Backend"

	// DefaultMintDelay is how long a credential stays in "minting".
	DefaultMintDelay = 30 * time.Second

	day = 24 * time.Hour
)

// EventPublisher delivers audit events to Sheets.
type EventPublisher interface {
	Publish(ctx context.Context, req sheets.Request)
}

// DashboardService backs the dashboard widgets.
type DashboardService struct {
	repos     *repository.Repositories
	events    EventPublisher
	queue     job.Enqueuer
	mintDelay time.Duration
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewDashboardService builds the service. Without a queue, mint completion
// runs on a process timer.
func NewDashboardService(repos *repository.Repositories, events EventPublisher, queue job.Enqueuer, logger *zerolog.Logger) *DashboardService {
	return &DashboardService{
		repos:     repos,
		events:    events,
		queue:     queue,
		mintDelay: DefaultMintDelay,
		logger:    logger,
		now:       time.Now,
	}
}

func (d *DashboardService) timestamp() string {
	return model.Timestamp(d.now())
}

func (d *DashboardService) publish(ctx context.Context, action, userID string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["timestamp"]; !ok {
		data["timestamp"] = d.timestamp()
	}
	d.events.Publish(ctx, sheets.Request{
		Action:    action,
		Data:      data,
		UserID:    userID,
		Timestamp: d.timestamp(),
		Source:    dashboardSource,
	})
}

func (d *DashboardService) access(ctx context.Context, userID, section string) {
	d.publish(ctx, "dashboard_access", userID, map[string]any{"userId": userID, "section": section})
}

// hexID is a UUID without dashes, used for mock chain addresses and hashes.
func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func percentPresent(records []model.AttendanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return float64(countPresent(records)) / float64(len(records)) * 100
}

func countPresent(records []model.AttendanceRecord) int {
	n := 0
	for _, r := range records {
		if r.Status == "present" {
			n++
		}
	}
	return n
}

// --- overview ---------------------------------------------------------------

type OverviewStats struct {
	NFTCredentials int     `json:"nftCredentials"`
	ResumeViews    int     `json:"resumeViews"`
	HealthRecords  int     `json:"healthRecords"`
	WellnessScore  int     `json:"wellnessScore"`
	Assignments    int     `json:"assignments"`
	Publications   int     `json:"publications"`
	AttendanceRate float64 `json:"attendanceRate"`
	GPA            float64 `json:"gpa"`
}

type Activity struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Time    string `json:"time"`
	Section string `json:"section"`
}

type QuickAction struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Section     string `json:"section"`
}

type Overview struct {
	UserID         string        `json:"userId"`
	Stats          OverviewStats `json:"stats"`
	RecentActivity []Activity    `json:"recentActivity"`
	QuickActions   []QuickAction `json:"quickActions"`
}

func (d *DashboardService) Overview(ctx context.Context, userID string) *Overview {
	d.access(ctx, userID, "overview")

	return &Overview{
		UserID: userID,
		Stats: OverviewStats{
			NFTCredentials: len(d.repos.Credentials.ListByUser(userID)),
			ResumeViews:    234,
			HealthRecords:  len(d.repos.HealthRecords.ListByUser(userID)),
			WellnessScore:  85,
			Assignments:    len(d.repos.Assignments.ListByUser(userID)),
			Publications:   len(d.repos.Publications.ListByUser(userID)),
			AttendanceRate: percentPresent(d.repos.Attendance.ListByUser(userID)),
			GPA:            3.85,
		},
		RecentActivity: []Activity{{
			ID:      "activity-1",
			Type:    "credential",
			Title:   "Computer Science Degree NFT Minted",
			Time:    "2 hours ago",
			Section: "credentials",
		}},
		QuickActions: []QuickAction{{
			ID:          "action-1",
			Title:       "Mint New Credential",
			Description: "Convert your achievements to NFTs",
			Action:      "mint_credential",
			Section:     "credentials",
		}},
	}
}

// --- credentials ------------------------------------------------------------

type CredentialList struct {
	Total       int                `json:"total"`
	Verified    int                `json:"verified"`
	Pending     int                `json:"pending"`
	Credentials []model.Credential `json:"credentials"`
}

func (d *DashboardService) Credentials(ctx context.Context, userID string) *CredentialList {
	d.access(ctx, userID, "credentials")

	creds := d.repos.Credentials.ListByUser(userID)
	out := &CredentialList{Total: len(creds), Credentials: creds}
	for _, c := range creds {
		switch c.Status {
		case model.StatusVerified:
			out.Verified++
		case model.StatusPending:
			out.Pending++
		}
	}
	return out
}

type MintResult struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	TransactionHash string `json:"transactionHash"`
	EstimatedTime   string `json:"estimatedTime"`
	Message         string `json:"message"`
}

// MintCredential stores the credential as minting and schedules its
// completion.
func (d *DashboardService) MintCredential(ctx context.Context, p *model.MintCredentialPayload) (*MintResult, error) {
	cred, err := d.repos.Credentials.Create(model.Credential{
		UserID:          p.UserID,
		Title:           p.Title,
		Institution:     p.Institution,
		Date:            p.Date,
		Type:            p.Type,
		Description:     p.Description,
		Status:          model.StatusMinting,
		TransactionHash: "0xabcd1234...",
	})
	if err != nil {
		return nil, err
	}

	d.scheduleMint(ctx, cred.ID, cred.UserID)

	return &MintResult{
		ID:              cred.ID,
		Status:          model.StatusMinting,
		TransactionHash: cred.TransactionHash,
		EstimatedTime:   fmt.Sprintf("%d seconds", int(d.mintDelay.Seconds())),
		Message:         "NFT credential is being minted on the blockchain",
	}, nil
}

func (d *DashboardService) scheduleMint(ctx context.Context, credentialID, userID string) {
	if d.queue != nil {
		task, err := job.NewCredentialMintTask(credentialID, userID, d.mintDelay)
		if err == nil {
			err = d.queue.Enqueue(ctx, task)
		}
		if err == nil {
			return
		}
		d.logger.Warn().Err(err).Str("credential_id", credentialID).Msg("enqueue mint failed, using timer")
	}

	time.AfterFunc(d.mintDelay, func() {
		if err := d.CompleteMint(context.Background(), credentialID); err != nil {
			d.logger.Error().Err(err).Str("credential_id", credentialID).Msg("failed to complete mint")
		}
	})
}

// CompleteMint marks a minting credential verified and gives it an address
// and IPFS hash. Credentials that are no longer minting are left alone.
func (d *DashboardService) CompleteMint(_ context.Context, credentialID string) error {
	_, err := d.repos.Credentials.Update(credentialID, func(c *model.Credential) {
		if c.Status != model.StatusMinting {
			return
		}
		c.Status = model.StatusVerified
		c.NFTAddress = "0x" + hexID()
		c.IPFSHash = "Qm" + hexID()
	})
	if err != nil {
		return fmt.Errorf("complete mint %s: %w", credentialID, err)
	}
	return nil
}

type Verification struct {
	ID               string `json:"id"`
	Verified         bool   `json:"verified"`
	VerificationDate string `json:"verificationDate,omitempty"`
	BlockchainHash   string `json:"blockchainHash,omitempty"`
	Issuer           string `json:"issuer,omitempty"`
	Recipient        string `json:"recipient,omitempty"`
}

func (d *DashboardService) VerifyCredential(_ context.Context, id string) *Verification {
	cred, err := d.repos.Credentials.Get(id)
	if err != nil || cred.Status != model.StatusVerified {
		return &Verification{ID: id}
	}
	return &Verification{
		ID:               id,
		Verified:         true,
		VerificationDate: d.timestamp(),
		BlockchainHash:   cred.NFTAddress,
		Issuer:           cred.Institution,
		Recipient:        "0x1111...2222",
	}
}

// --- resume -----------------------------------------------------------------

type ResumeContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Resume struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	PersonalInfo ResumeContact     `json:"personalInfo"`
	Education    []model.Education `json:"education"`
}

func (d *DashboardService) Resume(ctx context.Context, userID string) *Resume {
	d.access(ctx, userID, "resume")

	resume := &Resume{ID: "resume-1", UserID: userID, Education: []model.Education{}}
	if user, err := d.repos.Users.GetByID(userID); err == nil {
		resume.PersonalInfo = ResumeContact{Name: user.Name, Email: user.Email}
	}

	for _, c := range d.repos.Credentials.ListByUser(userID) {
		if c.Type != "degree" {
			continue
		}
		year := ""
		if t, ok := model.ParseDate(c.Date); ok {
			year = fmt.Sprint(t.Year())
		}
		resume.Education = append(resume.Education, model.Education{
			Degree:      c.Title,
			Institution: c.Institution,
			Year:        year,
			GPA:         "3.85/4.0",
		})
	}
	return resume
}

type GeneratedResume struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	AISuggestions []string `json:"aiSuggestions"`
	DownloadURL   string   `json:"downloadUrl"`
}

func (d *DashboardService) GenerateResume(ctx context.Context, p *model.GenerateResumePayload) *GeneratedResume {
	id := uuid.NewString()
	d.publish(ctx, "generate_resume", p.UserID, map[string]any{"userId": p.UserID, "resumeId": id})

	return &GeneratedResume{
		ID:     id,
		Status: "generated",
		AISuggestions: []string{
			"Added quantified achievements to increase impact",
			"Optimized keywords for ATS compatibility",
		},
		DownloadURL: "/api/dashboard/resume/" + id + "/download",
	}
}

type ResumeOptimization struct {
	MatchScore      int      `json:"matchScore"`
	Optimizations   []string `json:"optimizations"`
	MissingKeywords []string `json:"missingKeywords"`
}

func (d *DashboardService) OptimizeResume(_ context.Context, _ *model.OptimizeResumePayload) *ResumeOptimization {
	return &ResumeOptimization{
		MatchScore:      87,
		Optimizations:   []string{`Added "cloud computing" keyword 3 times`},
		MissingKeywords: []string{"Docker", "Kubernetes"},
	}
}

// --- health passport --------------------------------------------------------

type HealthPassport struct {
	UserID        string               `json:"userId"`
	TotalRecords  int                  `json:"totalRecords"`
	WellnessScore int                  `json:"wellnessScore"`
	LastCheckup   string               `json:"lastCheckup"`
	Records       []model.HealthRecord `json:"records"`
}

func (d *DashboardService) HealthRecords(ctx context.Context, userID string) *HealthPassport {
	d.access(ctx, userID, "health")

	records := d.repos.HealthRecords.ListByUser(userID)
	return &HealthPassport{
		UserID:        userID,
		TotalRecords:  len(records),
		WellnessScore: 85,
		LastCheckup:   "2024-01-10",
		Records:       records,
	}
}

type HealthUpload struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Encrypted bool   `json:"encrypted"`
	IPFSHash  string `json:"ipfsHash"`
	Message   string `json:"message"`
}

func (d *DashboardService) UploadHealthRecord(_ context.Context, p *model.UploadHealthPayload) (*HealthUpload, error) {
	record, err := d.repos.HealthRecords.Create(model.HealthRecord{
		UserID:      p.UserID,
		Type:        p.Type,
		Title:       p.Title,
		Date:        p.Date,
		Provider:    p.Provider,
		Description: p.Description,
		Status:      model.StatusUploaded,
		Encrypted:   true,
		IPFSHash:    "Qm" + hexID(),
	})
	if err != nil {
		return nil, err
	}

	return &HealthUpload{
		ID:        record.ID,
		Status:    model.StatusUploaded,
		Encrypted: true,
		IPFSHash:  record.IPFSHash,
		Message:   "Health record uploaded and encrypted successfully",
	}, nil
}

type HealthShare struct {
	ShareID     string   `json:"shareId"`
	RecordID    string   `json:"recordId"`
	SharedWith  string   `json:"sharedWith"`
	Permissions []string `json:"permissions"`
	ExpiresAt   string   `json:"expiresAt"`
	AccessLink  string   `json:"accessLink"`
}

// ShareHealthRecord marks the record shared when it exists. The share link is
// returned either way.
func (d *DashboardService) ShareHealthRecord(_ context.Context, p *model.ShareHealthPayload) *HealthShare {
	_, _ = d.repos.HealthRecords.Update(p.RecordID, func(r *model.HealthRecord) {
		r.Shared = true
	})

	permissions := p.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	return &HealthShare{
		ShareID:     uuid.NewString(),
		RecordID:    p.RecordID,
		SharedWith:  p.ShareWith,
		Permissions: permissions,
		ExpiresAt:   model.Timestamp(d.now().Add(7 * day)),
		AccessLink:  "https://health.blockitin.ai/shared/" + p.RecordID,
	}
}

type WellnessScore struct {
	UserID        string `json:"userId"`
	CurrentScore  int    `json:"currentScore"`
	PreviousScore int    `json:"previousScore"`
	Trend         string `json:"trend"`
}

// WellnessScore scores the most recent check-in.
func (d *DashboardService) WellnessScore(ctx context.Context, userID string) *WellnessScore {
	d.access(ctx, userID, "wellness-score")

	checkins := d.repos.Wellness.ListByUser(userID)
	if len(checkins) == 0 {
		return &WellnessScore{UserID: userID, Trend: "no_data"}
	}

	latest := latestCheckin(checkins)
	score := latest.Score()
	return &WellnessScore{
		UserID:        userID,
		CurrentScore:  score,
		PreviousScore: score - 5,
		Trend:         "improving",
	}
}

func latestCheckin(checkins []model.WellnessCheckin) model.WellnessCheckin {
	sort.SliceStable(checkins, func(i, j int) bool {
		a, _ := model.ParseDate(checkins[i].Date)
		b, _ := model.ParseDate(checkins[j].Date)
		return a.After(b)
	})
	return checkins[0]
}

// --- wellness ---------------------------------------------------------------

type WellnessData struct {
	UserID       string                  `json:"userId"`
	Period       int                     `json:"period"`
	AverageScore int                     `json:"averageScore"`
	Checkins     []model.WellnessCheckin `json:"checkins"`
}

func (d *DashboardService) WellnessData(ctx context.Context, q *model.PeriodQuery) *WellnessData {
	d.access(ctx, q.UserID, "wellness")

	return &WellnessData{
		UserID:       q.UserID,
		Period:       q.Period,
		AverageScore: 85,
		Checkins:     d.repos.Wellness.ListByUser(q.UserID),
	}
}

type CheckinResult struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	WellnessScore int    `json:"wellnessScore"`
	Message       string `json:"message"`
}

func (d *DashboardService) RecordWellnessCheckin(_ context.Context, p *model.WellnessCheckinPayload) (*CheckinResult, error) {
	checkin, err := d.repos.Wellness.Create(model.WellnessCheckin{
		UserID: p.UserID,
		Date:   d.timestamp(),
		Mood:   p.Mood,
		Energy: p.Energy,
		Stress: p.Stress,
		Sleep:  p.Sleep,
		Notes:  p.Notes,
	})
	if err != nil {
		return nil, err
	}

	return &CheckinResult{
		ID:            checkin.ID,
		Status:        "recorded",
		WellnessScore: checkin.Score(),
		Message:       "Wellness check-in recorded successfully",
	}, nil
}

// --- attendance -------------------------------------------------------------

type AttendanceLog struct {
	UserID           string                   `json:"userId"`
	Semester         string                   `json:"semester"`
	OverallRate      float64                  `json:"overallRate"`
	TotalClasses     int                      `json:"totalClasses"`
	Attended         int                      `json:"attended"`
	Courses          []string                 `json:"courses"`
	RecentAttendance []model.AttendanceRecord `json:"recentAttendance"`
}

func (d *DashboardService) AttendanceLog(ctx context.Context, q *model.AttendanceQuery) *AttendanceLog {
	d.access(ctx, q.UserID, "attendance")

	records := d.repos.Attendance.ListByUser(q.UserID)
	recent := records
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	return &AttendanceLog{
		UserID:           q.UserID,
		Semester:         q.Semester,
		OverallRate:      percentPresent(records),
		TotalClasses:     len(records),
		Attended:         countPresent(records),
		Courses:          []string{},
		RecentAttendance: recent,
	}
}

type AttendanceResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Course  string `json:"course"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

func (d *DashboardService) RecordAttendance(_ context.Context, p *model.AttendancePayload) (*AttendanceResult, error) {
	record, err := d.repos.Attendance.Create(model.AttendanceRecord{
		UserID:   p.UserID,
		Course:   p.Course,
		Date:     p.Date,
		Time:     p.Time,
		Status:   p.Status,
		Location: p.Location,
		Notes:    p.Notes,
	})
	if err != nil {
		return nil, err
	}

	return &AttendanceResult{
		ID:      record.ID,
		Status:  "recorded",
		Course:  record.Course,
		Date:    record.Date,
		Message: "Attendance recorded successfully",
	}, nil
}

// --- publishing -------------------------------------------------------------

type PublicationList struct {
	UserID            string              `json:"userId"`
	TotalPublications int                 `json:"totalPublications"`
	Publications      []model.Publication `json:"publications"`
}

func (d *DashboardService) Publications(ctx context.Context, userID string) *PublicationList {
	d.access(ctx, userID, "publishing")

	pubs := d.repos.Publications.ListByUser(userID)
	return &PublicationList{UserID: userID, TotalPublications: len(pubs), Publications: pubs}
}

type SubmissionResult struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	SubmissionDate string `json:"submissionDate"`
	Message        string `json:"message"`
}

func (d *DashboardService) SubmitPublication(_ context.Context, p *model.PublicationPayload) (*SubmissionResult, error) {
	submitted := d.timestamp()
	pub, err := d.repos.Publications.Create(model.Publication{
		UserID:   p.UserID,
		Title:    p.Title,
		Authors:  p.Authors,
		Journal:  p.Journal,
		Abstract: p.Abstract,
		Keywords: p.Keywords,
		Status:   "submitted",
		Date:     submitted,
	})
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{
		ID:             pub.ID,
		Status:         "submitted",
		SubmissionDate: submitted,
		Message:        "Publication submitted successfully",
	}, nil
}

// --- wallet -----------------------------------------------------------------

type TokenBalance struct {
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
	Value   string `json:"value"`
}

type WalletBalance struct {
	ETH    string         `json:"eth"`
	Tokens []TokenBalance `json:"tokens"`
}

type WalletTransaction struct {
	Hash   string `json:"hash"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type WalletInfo struct {
	UserID       string              `json:"userId"`
	Connected    bool                `json:"connected"`
	Address      string              `json:"address"`
	Network      string              `json:"network"`
	Balance      WalletBalance       `json:"balance"`
	NFTs         int                 `json:"nfts"`
	Transactions []WalletTransaction `json:"transactions"`
}

func (d *DashboardService) WalletInfo(ctx context.Context, userID string) *WalletInfo {
	d.access(ctx, userID, "wallet")

	return &WalletInfo{
		UserID:    userID,
		Connected: true,
		Address:   "0x1234567890abcdef1234567890abcdef12345678",
		Network:   "Ethereum Mainnet",
		Balance: WalletBalance{
			ETH: "2.45",
			Tokens: []TokenBalance{
				{Symbol: "USDC", Balance: "1,250.00", Value: "$1,250.00"},
				{Symbol: "LINK", Balance: "45.2", Value: "$678.30"},
			},
		},
		NFTs: 12,
		Transactions: []WalletTransaction{{
			Hash:   "0xabcd1234...",
			Type:   "NFT Mint",
			Amount: "0.05 ETH",
			Date:   "2024-01-15T10:30:00Z",
			Status: "confirmed",
		}},
	}
}

type WalletConnection struct {
	Status  string `json:"status"`
	Address string `json:"address"`
	Network string `json:"network"`
	Message string `json:"message"`
}

func (d *DashboardService) ConnectWallet(ctx context.Context, p *model.WalletConnectPayload) *WalletConnection {
	d.publish(ctx, "connect_wallet", p.UserID, map[string]any{
		"userId":     p.UserID,
		"address":    p.Address,
		"network":    p.Network,
		"walletType": p.WalletType,
	})

	return &WalletConnection{
		Status:  "connected",
		Address: p.Address,
		Network: p.Network,
		Message: "Wallet connected successfully",
	}
}

// --- assignments ------------------------------------------------------------

type AssignmentList struct {
	UserID      string             `json:"userId"`
	Total       int                `json:"total"`
	Assignments []model.Assignment `json:"assignments"`
}

func (d *DashboardService) Assignments(ctx context.Context, q *model.AssignmentQuery) *AssignmentList {
	d.access(ctx, q.UserID, "assignments")

	all := d.repos.Assignments.ListByUser(q.UserID)
	out := all
	if q.Status != "all" {
		out = make([]model.Assignment, 0, len(all))
		for _, a := range all {
			if a.Status == q.Status {
				out = append(out, a)
			}
		}
	}
	return &AssignmentList{UserID: q.UserID, Total: len(out), Assignments: out}
}

// AssignmentResult is a stored assignment plus a confirmation message.
type AssignmentResult struct {
	model.Assignment
	Message string `json:"message"`
}

func (d *DashboardService) CreateAssignment(_ context.Context, p *model.CreateAssignmentPayload) (*AssignmentResult, error) {
	a, err := d.repos.Assignments.Create(model.Assignment{
		UserID:         p.UserID,
		Title:          p.Title,
		Course:         p.Course,
		DueDate:        p.DueDate,
		Status:         "not_started",
		Priority:       p.Priority,
		EstimatedHours: p.EstimatedHours,
		Description:    p.Description,
	})
	if err != nil {
		return nil, err
	}
	return &AssignmentResult{Assignment: a, Message: "Assignment created successfully"}, nil
}

func (d *DashboardService) UpdateAssignment(_ context.Context, p *model.UpdateAssignmentPayload) (*AssignmentResult, error) {
	a, err := d.repos.Assignments.Update(p.ID, p.Apply)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NewNotFoundError("Assignment not found", true, nil)
	}
	if err != nil {
		return nil, err
	}
	return &AssignmentResult{Assignment: a, Message: "Assignment updated successfully"}, nil
}

// --- campus map -------------------------------------------------------------

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CampusLocation struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description"`
	Amenities   []string    `json:"amenities"`
	Hours       string      `json:"hours"`
}

var campusLocations = []CampusLocation{
	{
		ID:          "loc-1",
		Name:        "Stata Center",
		Category:    "academic",
		Coordinates: Coordinates{Lat: 42.361145, Lng: -71.090240},
		Description: "Computer Science and AI Lab",
		Amenities:   []string{"WiFi", "Study Rooms", "Cafeteria"},
		Hours:       "24/7",
	},
	{
		ID:          "loc-2",
		Name:        "Student Center",
		Category:    "dining",
		Coordinates: Coordinates{Lat: 42.359055, Lng: -71.094520},
		Description: "Main dining and social hub",
		Amenities:   []string{"Food Court", "ATM", "Bookstore"},
		Hours:       "6:00 AM - 11:00 PM",
	},
	{
		ID:          "loc-3",
		Name:        "Zesiger Sports Center",
		Category:    "recreation",
		Coordinates: Coordinates{Lat: 42.361234, Lng: -71.087456},
		Description: "Fitness and recreation facility",
		Amenities:   []string{"Gym", "Pool", "Courts"},
		Hours:       "5:00 AM - 12:00 AM",
	},
}

type LocationList struct {
	Total     int              `json:"total"`
	Category  string           `json:"category"`
	Locations []CampusLocation `json:"locations"`
}

func (d *DashboardService) CampusLocations(_ context.Context, category string) *LocationList {
	out := make([]CampusLocation, 0, len(campusLocations))
	for _, l := range campusLocations {
		if category == "all" || l.Category == category {
			out = append(out, l)
		}
	}
	return &LocationList{Total: len(out), Category: category, Locations: out}
}

type RouteStep struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Instruction string  `json:"instruction"`
}

type Route struct {
	From        string      `json:"from"`
	To          string      `json:"to"`
	Distance    string      `json:"distance"`
	WalkingTime string      `json:"walkingTime"`
	Route       []RouteStep `json:"route"`
	Landmarks   []string    `json:"landmarks"`
}

func (d *DashboardService) Navigate(ctx context.Context, p *model.NavigatePayload) *Route {
	d.publish(ctx, "get_navigation", p.UserID, map[string]any{
		"userId": p.UserID,
		"from":   p.From,
		"to":     p.To,
		"mode":   p.Mode,
	})

	return &Route{
		From:        p.From,
		To:          p.To,
		Distance:    "0.3 miles",
		WalkingTime: "6 minutes",
		Route: []RouteStep{
			{Lat: 42.361145, Lng: -71.090240, Instruction: "Start at Stata Center"},
			{Lat: 42.360500, Lng: -71.091000, Instruction: "Head south on Vassar St"},
			{Lat: 42.359055, Lng: -71.094520, Instruction: "Arrive at Student Center"},
		},
		Landmarks: []string{"Stata Center", "Building 32", "Student Center"},
	}
}

// --- academic results -------------------------------------------------------

type CourseResult struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Credits   int     `json:"credits"`
	Grade     string  `json:"grade"`
	GPA       float64 `json:"gpa"`
	Professor string  `json:"professor"`
}

type AcademicResults struct {
	UserID        string         `json:"userId"`
	Semester      string         `json:"semester"`
	OverallGPA    float64        `json:"overallGPA"`
	CreditHours   int            `json:"creditHours"`
	Courses       []CourseResult `json:"courses"`
	SemesterGPA   float64        `json:"semesterGPA"`
	CumulativeGPA float64        `json:"cumulativeGPA"`
	Rank          int            `json:"rank"`
	TotalStudents int            `json:"totalStudents"`
}

func (d *DashboardService) AcademicResults(ctx context.Context, q *model.ResultsQuery) *AcademicResults {
	d.publish(ctx, "view_academic_results", q.UserID, map[string]any{
		"userId":   q.UserID,
		"semester": q.Semester,
		"section":  "results",
	})

	return &AcademicResults{
		UserID:      q.UserID,
		Semester:    q.Semester,
		OverallGPA:  3.85,
		CreditHours: 48,
		Courses: []CourseResult{
			{ID: "course-1", Code: "CS 6.867", Name: "Machine Learning", Credits: 12, Grade: "A", GPA: 4.0, Professor: "Dr. Johnson"},
			{ID: "course-2", Code: "CS 6.824", Name: "Distributed Systems", Credits: 12, Grade: "A-", GPA: 3.7, Professor: "Dr. Smith"},
			{ID: "course-3", Code: "CS 6.046", Name: "Design and Analysis of Algorithms", Credits: 12, Grade: "B+", GPA: 3.3, Professor: "Dr. Brown"},
			{ID: "course-4", Code: "CS 6.034", Name: "Artificial Intelligence", Credits: 12, Grade: "A", GPA: 4.0, Professor: "Dr. Wilson"},
		},
		SemesterGPA:   3.75,
		CumulativeGPA: 3.85,
		Rank:          15,
		TotalStudents: 200,
	}
}

type GPACalculation struct {
	TotalGradePoints float64 `json:"totalGradePoints"`
	TotalCreditHours int     `json:"totalCreditHours"`
	GPA              float64 `json:"gpa"`
}

type GPAResult struct {
	UserID        string         `json:"userId"`
	Semester      string         `json:"semester,omitempty"`
	SemesterGPA   float64        `json:"semesterGPA"`
	CumulativeGPA float64        `json:"cumulativeGPA"`
	CreditHours   int            `json:"creditHours"`
	QualityPoints float64        `json:"qualityPoints"`
	Calculation   GPACalculation `json:"calculation"`
}

func (d *DashboardService) CalculateGPA(_ context.Context, p *model.GPAPayload) *GPAResult {
	return &GPAResult{
		UserID:        p.UserID,
		Semester:      p.Semester,
		SemesterGPA:   3.75,
		CumulativeGPA: 3.85,
		CreditHours:   48,
		QualityPoints: 184.8,
		Calculation: GPACalculation{
			TotalGradePoints: 184.8,
			TotalCreditHours: 48,
			GPA:              3.85,
		},
	}
}

type Transcript struct {
	UserID       string `json:"userId"`
	Format       string `json:"format"`
	TranscriptID string `json:"transcriptId"`
	DownloadURL  string `json:"downloadUrl"`
	GeneratedAt  string `json:"generatedAt"`
	Message      string `json:"message"`
}

func (d *DashboardService) Transcript(ctx context.Context, q *model.TranscriptQuery) *Transcript {
	d.publish(ctx, "generate_transcript", q.UserID, map[string]any{"userId": q.UserID, "format": q.Format})

	return &Transcript{
		UserID:       q.UserID,
		Format:       q.Format,
		TranscriptID: uuid.NewString(),
		DownloadURL:  "/api/dashboard/results/transcript/" + q.UserID + "/download",
		GeneratedAt:  d.timestamp(),
		Message:      "Transcript generated successfully",
	}
}

// --- search -----------------------------------------------------------------

type DashboardHit struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Section     string  `json:"section"`
	Relevance   float64 `json:"relevance"`
}

type DashboardSearchResult struct {
	Query    string         `json:"query"`
	Category string         `json:"category"`
	Total    int            `json:"total"`
	Results  []DashboardHit `json:"results"`
}

var dashboardHits = []DashboardHit{
	{ID: "result-1", Type: "credential", Title: "Computer Science Degree", Description: "Bachelor of Computer Science from MIT", Section: "credentials", Relevance: 0.95},
	{ID: "result-2", Type: "assignment", Title: "Machine Learning Final Project", Description: "Due January 20, 2024 - In Progress", Section: "assignments", Relevance: 0.87},
	{ID: "result-3", Type: "health", Title: "COVID-19 Vaccination Record", Description: "Vaccination record from Campus Health Center", Section: "health", Relevance: 0.76},
}

// Search runs the widget search across sections. An empty query is a 400.
func (d *DashboardService) Search(ctx context.Context, q *model.DashboardSearchQuery) (*DashboardSearchResult, error) {
	if strings.TrimSpace(q.Q) == "" {
		return nil, errs.NewBadRequestError("Search query is required", true, nil, nil, &errs.Action{
			Type:    errs.ActionTypeHint,
			Message: `Please provide a search query parameter "q"`,
			Value:   "q",
		})
	}

	d.publish(ctx, "dashboard_search", q.UserID, map[string]any{
		"query":    q.Q,
		"category": q.Category,
		"userId":   q.UserID,
	})

	out := make([]DashboardHit, 0, len(dashboardHits))
	for _, h := range dashboardHits {
		if q.Category == "all" || h.Type == q.Category {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })

	return &DashboardSearchResult{Query: q.Q, Category: q.Category, Total: len(out), Results: out}, nil
}

// --- analytics and export ---------------------------------------------------

type AnalyticsOverview struct {
	TotalSessions      int    `json:"totalSessions"`
	AverageSessionTime string `json:"averageSessionTime"`
	MostUsedSection    string `json:"mostUsedSection"`
	TotalActions       int    `json:"totalActions"`
}

type DailyActive struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
}

type DashboardAnalytics struct {
	UserID       string            `json:"userId"`
	Period       int               `json:"period"`
	Overview     AnalyticsOverview `json:"overview"`
	SectionUsage map[string]int    `json:"sectionUsage"`
	Trends       struct {
		DailyActive []DailyActive `json:"dailyActive"`
	} `json:"trends"`
}

func (d *DashboardService) Analytics(ctx context.Context, q *model.PeriodQuery) *DashboardAnalytics {
	d.access(ctx, q.UserID, "analytics")

	out := &DashboardAnalytics{
		UserID: q.UserID,
		Period: q.Period,
		Overview: AnalyticsOverview{
			TotalSessions:      45,
			AverageSessionTime: "12 minutes",
			MostUsedSection:    "assignments",
			TotalActions:       234,
		},
		SectionUsage: map[string]int{
			"credentials": 23,
			"resume":      18,
			"health":      15,
			"wellness":    32,
			"attendance":  12,
			"publishing":  8,
			"wallet":      6,
			"assignments": 45,
			"map":         14,
			"results":     19,
			"search":      28,
		},
	}
	out.Trends.DailyActive = dailyTrend(d.now(), q.Period)
	return out
}

// dailyTrend returns one point per day going back from now.
func dailyTrend(now time.Time, days int) []DailyActive {
	out := make([]DailyActive, days)
	for i := range out {
		out[i] = DailyActive{
			Date:     now.Add(-time.Duration(i) * day).UTC().Format("2006-01-02"),
			Sessions: rand.IntN(10) + 1,
		}
	}
	return out
}

type ExportResult struct {
	ExportID    string   `json:"exportId"`
	UserID      string   `json:"userId"`
	Sections    []string `json:"sections"`
	Format      string   `json:"format"`
	DownloadURL string   `json:"downloadUrl"`
	ExpiresAt   string   `json:"expiresAt"`
	Message     string   `json:"message"`
}

func (d *DashboardService) Export(ctx context.Context, p *model.ExportPayload) *ExportResult {
	d.publish(ctx, "export_dashboard_data", p.UserID, map[string]any{
		"userId":   p.UserID,
		"sections": p.Sections,
		"format":   p.Format,
	})

	sections := p.Sections
	if sections == nil {
		sections = []string{}
	}

	return &ExportResult{
		ExportID:    uuid.NewString(),
		UserID:      p.UserID,
		Sections:    sections,
		Format:      p.Format,
		DownloadURL: "/api/dashboard/export/" + p.UserID + "/download",
		ExpiresAt:   model.Timestamp(d.now().Add(day)),
		Message:     "Dashboard data export prepared successfully",
	}
}
