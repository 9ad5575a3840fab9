package model

import (
	"math"
	"time"
)

// Credential statuses.
const (
	StatusVerified = "verified"
	StatusPending  = "pending"
	StatusMinting  = "minting"
	StatusUploaded = "uploaded"
)

type Credential struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Institution     string    `json:"institution"`
	Date            string    `json:"date"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Views           int       `json:"views"`
	Description     string    `json:"description,omitempty"`
	NFTAddress      string    `json:"nftAddress,omitempty"`
	IPFSHash        string    `json:"ipfsHash,omitempty"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	CreatedAt       time.Time `json:"-"`
}

type HealthRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Provider    string    `json:"provider"`
	Status      string    `json:"status"`
	Shared      bool      `json:"shared"`
	Encrypted   bool      `json:"encrypted,omitempty"`
	IPFSHash    string    `json:"ipfsHash,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

type Publication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	Journal   string    `json:"journal"`
	Status    string    `json:"status"`
	Date      string    `json:"date"`
	Citations int       `json:"citations"`
	DOI       string    `json:"doi,omitempty"`
	Abstract  string    `json:"abstract,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	CreatedAt time.Time `json:"-"`
}

type Assignment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Title          string    `json:"title"`
	Course         string    `json:"course"`
	DueDate        string    `json:"dueDate"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Progress       int       `json:"progress"`
	EstimatedHours float64   `json:"estimatedHours"`
	SpentHours     float64   `json:"spentHours"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"-"`
}

type WellnessCheckin struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Mood      int       `json:"mood"`
	Energy    int       `json:"energy"`
	Stress    int       `json:"stress"`
	Sleep     int       `json:"sleep"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// Score maps a check-in onto 0..100. Stress counts inversely.
func (w *WellnessCheckin) Score() int {
	return WellnessScore(w.Mood, w.Energy, w.Stress, w.Sleep)
}

// WellnessScore is floor((mood + energy + (6 - stress) + sleep) / 4 * 20).
func WellnessScore(mood, energy, stress, sleep int) int {
	sum := float64(mood + energy + (6 - stress) + sleep)
	return int(math.Floor(sum / 4 * 20))
}

type AttendanceRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Course    string    `json:"course"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// UserQuery binds the optional ?userId= of dashboard reads.
type UserQuery struct {
	UserID string `query:"userId"`
}

func (p *UserQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
}

func (p *UserQuery) Validate() error {
	return nil
}

// PeriodQuery binds ?userId=&period= where period counts days.
type PeriodQuery struct {
	UserID string `query:"userId"`
	Period int    `query:"period" validate:"min=0,max=365"`
}

func (p *PeriodQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultInt(&p.Period, 30)
}

func (p *PeriodQuery) Validate() error {
	return validate.Struct(p)
}

// IDParam binds routes addressing one record by :id.
type IDParam struct {
	ID string `param:"id" validate:"required"`
}

func (p *IDParam) Validate() error {
	return validate.Struct(p)
}

type MintCredentialPayload struct {
	UserID      string         `json:"userId" validate:"required"`
	Title       string         `json:"title" validate:"required,min=1,max=200"`
	Institution string         `json:"institution" validate:"required,min=1,max=100"`
	Type        string         `json:"type" validate:"required,oneof=degree certificate certification award"`
	Date        string         `json:"date" validate:"required,isodate"`
	Description string         `json:"description" validate:"max=500"`
	Metadata    map[string]any `json:"metadata"`
}

func (p *MintCredentialPayload) Validate() error {
	return validate.Struct(p)
}

type PersonalInfo struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub   string `json:"github,omitempty" validate:"omitempty,url"`
}

type Experience struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Duration    string `json:"duration" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type Education struct {
	Degree      string `json:"degree" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	Year        string `json:"year" validate:"required"`
	GPA         string `json:"gpa,omitempty"`
}

type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Technologies []string `json:"technologies,omitempty"`
}

type GenerateResumePayload struct {
	UserID       string        `json:"userId" validate:"required"`
	PersonalInfo *PersonalInfo `json:"personalInfo" validate:"required"`
	Summary      string        `json:"summary" validate:"max=500"`
	Experience   []Experience  `json:"experience" validate:"dive"`
	Education    []Education   `json:"education" validate:"dive"`
	Skills       []string      `json:"skills"`
	Projects     []Project     `json:"projects" validate:"dive"`
}

func (p *GenerateResumePayload) Validate() error {
	return validate.Struct(p)
}

type OptimizeResumePayload struct {
	UserID         string         `json:"userId"`
	JobDescription string         `json:"jobDescription"`
	ResumeData     map[string]any `json:"resumeData"`
}

func (p *OptimizeResumePayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
}

func (p *OptimizeResumePayload) Validate() error {
	return nil
}

type UploadHealthPayload struct {
	UserID      string         `json:"userId" validate:"required"`
	Type        string         `json:"type" validate:"required,oneof=vaccination checkup lab prescription emergency"`
	Title       string         `json:"title" validate:"required,min=1,max=200"`
	Provider    string         `json:"provider" validate:"required,min=1,max=100"`
	Date        string         `json:"date" validate:"required,isodate"`
	Description string         `json:"description" validate:"max=500"`
	FileURL     string         `json:"fileUrl" validate:"omitempty,url"`
	Metadata    map[string]any `json:"metadata"`
}

func (p *UploadHealthPayload) Validate() error {
	return validate.Struct(p)
}

type ShareHealthPayload struct {
	RecordID    string   `json:"recordId" validate:"required"`
	ShareWith   string   `json:"shareWith" validate:"required"`
	Permissions []string `json:"permissions"`
}

func (p *ShareHealthPayload) Validate() error {
	return validate.Struct(p)
}

type WellnessCheckinPayload struct {
	UserID string `json:"userId"`
	Mood   int    `json:"mood" validate:"min=1,max=5"`
	Energy int    `json:"energy" validate:"min=1,max=5"`
	Stress int    `json:"stress" validate:"min=1,max=5"`
	Sleep  int    `json:"sleep" validate:"min=0,max=24"`
	Notes  string `json:"notes" validate:"max=500"`
}

func (p *WellnessCheckinPayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
}

func (p *WellnessCheckinPayload) Validate() error {
	return validate.Struct(p)
}

// AttendanceQuery binds GET /attendance.
type AttendanceQuery struct {
	UserID   string `query:"userId"`
	Semester string `query:"semester"`
}

func (p *AttendanceQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.Semester, "current")
}

func (p *AttendanceQuery) Validate() error {
	return nil
}

type AttendancePayload struct {
	UserID   string `json:"userId" validate:"required"`
	Course   string `json:"course" validate:"required,min=1,max=100"`
	Date     string `json:"date" validate:"required,isodate"`
	Time     string `json:"time"`
	Status   string `json:"status" validate:"required,oneof=present absent late excused"`
	Location string `json:"location" validate:"max=100"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (p *AttendancePayload) Validate() error {
	return validate.Struct(p)
}

type PublicationPayload struct {
	UserID   string         `json:"userId" validate:"required"`
	Title    string         `json:"title" validate:"required,min=1,max=300"`
	Authors  []string       `json:"authors" validate:"required,min=1"`
	Journal  string         `json:"journal" validate:"required,min=1,max=200"`
	Abstract string         `json:"abstract" validate:"required,min=50,max=2000"`
	Keywords []string       `json:"keywords"`
	FileURL  string         `json:"fileUrl" validate:"omitempty,url"`
	Metadata map[string]any `json:"metadata"`
}

func (p *PublicationPayload) Validate() error {
	return validate.Struct(p)
}

type WalletConnectPayload struct {
	UserID     string `json:"userId" validate:"required"`
	Address    string `json:"address" validate:"required,min=40,max=50"`
	Network    string `json:"network" validate:"required,oneof=ethereum polygon bsc avalanche"`
	WalletType string `json:"walletType" validate:"required,oneof=metamask walletconnect coinbase"`
}

func (p *WalletConnectPayload) Validate() error {
	return validate.Struct(p)
}

// AssignmentQuery binds GET /assignments.
type AssignmentQuery struct {
	UserID string `query:"userId"`
	Status string `query:"status"`
}

func (p *AssignmentQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.Status, "all")
}

func (p *AssignmentQuery) Validate() error {
	return nil
}

type CreateAssignmentPayload struct {
	UserID         string         `json:"userId" validate:"required"`
	Title          string         `json:"title" validate:"required,min=1,max=200"`
	Course         string         `json:"course" validate:"required,min=1,max=100"`
	DueDate        string         `json:"dueDate" validate:"required,isodate"`
	Priority       string         `json:"priority" validate:"oneof=low medium high"`
	EstimatedHours float64        `json:"estimatedHours" validate:"min=0,max=100"`
	Description    string         `json:"description" validate:"max=1000"`
	Metadata       map[string]any `json:"metadata"`
}

func (p *CreateAssignmentPayload) Normalize() {
	defaultString(&p.Priority, "medium")
}

func (p *CreateAssignmentPayload) Validate() error {
	return validate.Struct(p)
}

// UpdateAssignmentPayload is a partial update; nil fields are left alone.
type UpdateAssignmentPayload struct {
	ID             string   `param:"id" json:"-" validate:"required"`
	Title          *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Course         *string  `json:"course" validate:"omitempty,min=1,max=100"`
	DueDate        *string  `json:"dueDate" validate:"omitempty,isodate"`
	Status         *string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed created"`
	Priority       *string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Progress       *int     `json:"progress" validate:"omitempty,min=0,max=100"`
	EstimatedHours *float64 `json:"estimatedHours" validate:"omitempty,min=0,max=100"`
	SpentHours     *float64 `json:"spentHours" validate:"omitempty,min=0"`
	Description    *string  `json:"description" validate:"omitempty,max=1000"`
}

func (p *UpdateAssignmentPayload) Validate() error {
	return validate.Struct(p)
}

// Apply copies the set fields onto a.
func (p *UpdateAssignmentPayload) Apply(a *Assignment) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Course != nil {
		a.Course = *p.Course
	}
	if p.DueDate != nil {
		a.DueDate = *p.DueDate
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.Progress != nil {
		a.Progress = *p.Progress
	}
	if p.EstimatedHours != nil {
		a.EstimatedHours = *p.EstimatedHours
	}
	if p.SpentHours != nil {
		a.SpentHours = *p.SpentHours
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
}

// CategoryQuery binds ?category= filters.
type CategoryQuery struct {
	Category string `query:"category"`
}

func (p *CategoryQuery) Normalize() {
	defaultString(&p.Category, "all")
}

func (p *CategoryQuery) Validate() error {
	return nil
}

type NavigatePayload struct {
	UserID string `json:"userId" validate:"required"`
	From   string `json:"from" validate:"required,min=1,max=100"`
	To     string `json:"to" validate:"required,min=1,max=100"`
	Mode   string `json:"mode" validate:"oneof=walking driving transit"`
}

func (p *NavigatePayload) Normalize() {
	defaultString(&p.Mode, "walking")
}

func (p *NavigatePayload) Validate() error {
	return validate.Struct(p)
}

// ResultsQuery binds GET /results.
type ResultsQuery struct {
	UserID   string `query:"userId"`
	Semester string `query:"semester"`
}

func (p *ResultsQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.Semester, "all")
}

func (p *ResultsQuery) Validate() error {
	return nil
}

type GPAPayload struct {
	UserID   string `json:"userId"`
	Semester string `json:"semester"`
}

func (p *GPAPayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
}

func (p *GPAPayload) Validate() error {
	return nil
}

// TranscriptQuery binds GET /results/transcript/:userId.
type TranscriptQuery struct {
	UserID string `param:"userId" validate:"required"`
	Format string `query:"format" validate:"oneof=pdf json csv"`
}

func (p *TranscriptQuery) Normalize() {
	defaultString(&p.Format, "pdf")
}

func (p *TranscriptQuery) Validate() error {
	return validate.Struct(p)
}

// DashboardSearchQuery binds GET /api/dashboard/search.
type DashboardSearchQuery struct {
	Q        string `query:"q"`
	Category string `query:"category"`
	UserID   string `query:"userId"`
}

func (p *DashboardSearchQuery) Normalize() {
	defaultString(&p.Category, "all")
	defaultString(&p.UserID, DefaultUserID)
}

func (p *DashboardSearchQuery) Validate() error {
	return nil
}

type ExportPayload struct {
	UserID   string   `json:"userId"`
	Sections []string `json:"sections"`
	Format   string   `json:"format" validate:"oneof=json csv xlsx pdf"`
}

func (p *ExportPayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.Format, "json")
}

func (p *ExportPayload) Validate() error {
	return validate.Struct(p)
}
