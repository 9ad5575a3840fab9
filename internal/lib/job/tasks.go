package job

import (
	"encoding/json"
	"time"

	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Task type names stored in Redis. Asynq routes on these strings.
const (
	TaskSheetsDeliver  = "sheets:deliver"
	TaskCredentialMint = "credential:mint"
	TaskWelcome        = "email:welcome"
)

// NewSheetsDeliverTask wraps a Sheets request for asynchronous delivery.
func NewSheetsDeliverTask(req sheets.Request) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskSheetsDeliver,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}

// CredentialMintPayload identifies the credential whose mint completes.
type CredentialMintPayload struct {
	CredentialID string `json:"credential_id"`
	UserID       string `json:"user_id"`
}

// NewCredentialMintTask schedules mint completion after delay. The task id
// is derived from the credential so a retried request cannot mint twice.
func NewCredentialMintTask(credentialID, userID string, delay time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(CredentialMintPayload{
		CredentialID: credentialID,
		UserID:       userID,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskCredentialMint,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.ProcessIn(delay),
		asynq.TaskID("mint:"+credentialID),
	), nil
}

// WelcomeEmailPayload is the JSON payload of the welcome email task.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask constructs a task sending the registration email.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:   to,
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}
