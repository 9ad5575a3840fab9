package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, queue job.Enqueuer) (*DashboardService, *repository.Repositories, *fakePublisher) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	events := &fakePublisher{}
	return NewDashboardService(repos, events, queue, &nop), repos, events
}

func TestOverviewCountsSeededRecords(t *testing.T) {
	d, _, events := newDashboard(t, nil)

	o := d.Overview(context.Background(), model.DefaultUserID)

	assert.Equal(t, 1, o.Stats.NFTCredentials)
	assert.Equal(t, 1, o.Stats.HealthRecords)
	assert.Equal(t, 1, o.Stats.Assignments)
	assert.Equal(t, 1, o.Stats.Publications)
	assert.InDelta(t, 100.0, o.Stats.AttendanceRate, 0.001)
	assert.Equal(t, []string{"dashboard_access"}, events.actions())
	data, ok := events.requests[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "overview", data["section"])
	assert.Equal(t, dashboardSource, events.requests[0].Source)
}

func TestOverviewUnknownUserIsEmpty(t *testing.T) {
	d, _, _ := newDashboard(t, nil)

	o := d.Overview(context.Background(), "nobody")

	assert.Zero(t, o.Stats.NFTCredentials)
	assert.Zero(t, o.Stats.AttendanceRate)
}

func mintPayload() *model.MintCredentialPayload {
	return &model.MintCredentialPayload{
		UserID:      model.DefaultUserID,
		Title:       "Distributed Systems Certificate",
		Institution: "MIT",
		Type:        "certificate",
		Date:        "2024-06-01",
	}
}

func TestMintCredentialEnqueuesCompletion(t *testing.T) {
	queue := &fakeQueue{}
	d, repos, _ := newDashboard(t, queue)

	res, err := d.MintCredential(context.Background(), mintPayload())
	require.NoError(t, err)
	assert.Equal(t, model.StatusMinting, res.Status)
	assert.Equal(t, "30 seconds", res.EstimatedTime)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, job.TaskCredentialMint, queue.tasks[0].Type())

	var payload job.CredentialMintPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, res.ID, payload.CredentialID)

	stored, err := repos.Credentials.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMinting, stored.Status)
}

func TestMintCredentialFallsBackToTimer(t *testing.T) {
	d, repos, _ := newDashboard(t, nil)
	d.mintDelay = 10 * time.Millisecond

	res, err := d.MintCredential(context.Background(), mintPayload())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		c, err := repos.Credentials.Get(res.ID)
		return err == nil && c.Status == model.StatusVerified
	}, time.Second, 5*time.Millisecond)
}

func TestCompleteMint(t *testing.T) {
	d, repos, _ := newDashboard(t, &fakeQueue{})
	ctx := context.Background()

	res, err := d.MintCredential(ctx, mintPayload())
	require.NoError(t, err)

	require.NoError(t, d.CompleteMint(ctx, res.ID))
	first, err := repos.Credentials.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, first.Status)
	assert.Regexp(t, `^0x[0-9a-f]{32}$`, first.NFTAddress)
	assert.Regexp(t, `^Qm[0-9a-f]{32}$`, first.IPFSHash)

	// a second completion keeps the first address
	require.NoError(t, d.CompleteMint(ctx, res.ID))
	second, err := repos.Credentials.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, first.NFTAddress, second.NFTAddress)

	assert.Error(t, d.CompleteMint(ctx, "missing"))
}

func TestVerifyCredential(t *testing.T) {
	d, _, _ := newDashboard(t, nil)

	v := d.VerifyCredential(context.Background(), "cred-1")
	assert.True(t, v.Verified)
	assert.Equal(t, "MIT", v.Issuer)

	v = d.VerifyCredential(context.Background(), "missing")
	assert.False(t, v.Verified)
	assert.Equal(t, "missing", v.ID)
}

func TestResumeUsesDegrees(t *testing.T) {
	d, _, _ := newDashboard(t, nil)

	r := d.Resume(context.Background(), model.DefaultUserID)

	assert.Equal(t, "Sarah Johnson", r.PersonalInfo.Name)
	require.Len(t, r.Education, 1)
	assert.Equal(t, "Bachelor of Computer Science", r.Education[0].Degree)
	assert.Equal(t, "2024", r.Education[0].Year)
}

func TestWellnessScore(t *testing.T) {
	d, repos, _ := newDashboard(t, nil)
	ctx := context.Background()

	// seeded check-in: mood 4, energy 5, stress 2, sleep 8 -> floor(21/4*20)
	s := d.WellnessScore(ctx, model.DefaultUserID)
	assert.Equal(t, 105, s.CurrentScore)
	assert.Equal(t, 100, s.PreviousScore)
	assert.Equal(t, "improving", s.Trend)

	_, err := repos.Wellness.Create(model.WellnessCheckin{UserID: "u2", Date: "2024-01-01", Mood: 1, Energy: 1, Stress: 5, Sleep: 1})
	require.NoError(t, err)
	_, err = repos.Wellness.Create(model.WellnessCheckin{UserID: "u2", Date: "2024-02-01", Mood: 5, Energy: 5, Stress: 1, Sleep: 5})
	require.NoError(t, err)
	assert.Equal(t, 100, d.WellnessScore(ctx, "u2").CurrentScore)

	empty := d.WellnessScore(ctx, "nobody")
	assert.Equal(t, "no_data", empty.Trend)
	assert.Zero(t, empty.CurrentScore)
}

func TestRecordWellnessCheckin(t *testing.T) {
	d, repos, _ := newDashboard(t, nil)

	res, err := d.RecordWellnessCheckin(context.Background(), &model.WellnessCheckinPayload{
		UserID: "u1", Mood: 3, Energy: 3, Stress: 3, Sleep: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "recorded", res.Status)
	assert.Equal(t, model.WellnessScore(3, 3, 3, 7), res.WellnessScore)
	assert.Len(t, repos.Wellness.ListByUser("u1"), 1)
}

func TestAttendanceLogKeepsLastFive(t *testing.T) {
	d, _, _ := newDashboard(t, nil)
	ctx := context.Background()

	for i, status := range []string{"present", "absent", "present", "late", "present", "present"} {
		_, err := d.RecordAttendance(ctx, &model.AttendancePayload{
			UserID: "u1",
			Course: "Algorithms",
			Date:   time.Date(2024, 2, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Status: status,
		})
		require.NoError(t, err)
	}

	log := d.AttendanceLog(ctx, &model.AttendanceQuery{UserID: "u1", Semester: "current"})

	assert.Equal(t, 6, log.TotalClasses)
	assert.Equal(t, 4, log.Attended)
	assert.InDelta(t, 66.67, log.OverallRate, 0.01)
	require.Len(t, log.RecentAttendance, 5)
	assert.Equal(t, "2024-02-02", log.RecentAttendance[0].Date)
}

func TestAssignments(t *testing.T) {
	d, _, _ := newDashboard(t, nil)
	ctx := context.Background()

	created, err := d.CreateAssignment(ctx, &model.CreateAssignmentPayload{
		UserID:   model.DefaultUserID,
		Title:    "Compilers Lab",
		Course:   "CS 6.035",
		DueDate:  "2024-03-01",
		Priority: "medium",
	})
	require.NoError(t, err)
	assert.Equal(t, "not_started", created.Status)

	tests := []struct {
		status string
		want   int
	}{
		{"all", 2},
		{"in_progress", 1},
		{"not_started", 1},
		{"completed", 0},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			list := d.Assignments(ctx, &model.AssignmentQuery{UserID: model.DefaultUserID, Status: tt.status})
			assert.Equal(t, tt.want, list.Total)
			assert.Len(t, list.Assignments, tt.want)
		})
	}
}

func TestUpdateAssignment(t *testing.T) {
	d, _, _ := newDashboard(t, nil)
	ctx := context.Background()

	status := "completed"
	progress := 100
	res, err := d.UpdateAssignment(ctx, &model.UpdateAssignmentPayload{ID: "assign-1", Status: &status, Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 100, res.Progress)
	assert.Equal(t, "Machine Learning Final Project", res.Title)

	_, err = d.UpdateAssignment(ctx, &model.UpdateAssignmentPayload{ID: "missing", Status: &status})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
	assert.Equal(t, "Assignment not found", err.Error())
}

func TestCampusLocations(t *testing.T) {
	d, _, _ := newDashboard(t, nil)

	assert.Equal(t, 3, d.CampusLocations(context.Background(), "all").Total)

	dining := d.CampusLocations(context.Background(), "dining")
	require.Len(t, dining.Locations, 1)
	assert.Equal(t, "Student Center", dining.Locations[0].Name)

	assert.Empty(t, d.CampusLocations(context.Background(), "parking").Locations)
}

func TestShareHealthRecord(t *testing.T) {
	d, repos, _ := newDashboard(t, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	share := d.ShareHealthRecord(context.Background(), &model.ShareHealthPayload{RecordID: "health-1", ShareWith: "dr@clinic.org"})

	assert.Equal(t, "https://health.blockitin.ai/shared/health-1", share.AccessLink)
	assert.Equal(t, "2024-01-08T12:00:00.000Z", share.ExpiresAt)
	assert.NotNil(t, share.Permissions)

	record, err := repos.HealthRecords.Get("health-1")
	require.NoError(t, err)
	assert.True(t, record.Shared)
}

func TestDashboardSearch(t *testing.T) {
	d, _, events := newDashboard(t, nil)
	ctx := context.Background()

	res, err := d.Search(ctx, &model.DashboardSearchQuery{Q: "ml", Category: "all", UserID: model.DefaultUserID})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "result-1", res.Results[0].ID)
	assert.Equal(t, []string{"dashboard_search"}, events.actions())

	res, err = d.Search(ctx, &model.DashboardSearchQuery{Q: "ml", Category: "health"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "health", res.Results[0].Type)
}

func TestDashboardSearchRequiresQuery(t *testing.T) {
	d, _, events := newDashboard(t, nil)

	_, err := d.Search(context.Background(), &model.DashboardSearchQuery{Q: "  ", Category: "all"})
	require.Error(t, err)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Search query is required", httpErr.Message)
	require.NotNil(t, httpErr.Action)
	assert.Equal(t, errs.ActionTypeHint, httpErr.Action.Type)
	assert.Empty(t, events.actions())
}

func TestAnalyticsTrendCoversPeriod(t *testing.T) {
	d, _, _ := newDashboard(t, nil)

	a := d.Analytics(context.Background(), &model.PeriodQuery{UserID: model.DefaultUserID, Period: 7})

	assert.Len(t, a.Trends.DailyActive, 7)
	assert.Equal(t, 45, a.SectionUsage["assignments"])
}

func TestEventsCarryUser(t *testing.T) {
	d, _, events := newDashboard(t, nil)
	ctx := context.Background()

	d.ConnectWallet(ctx, &model.WalletConnectPayload{UserID: "u1", Address: "0x1234567890abcdef1234567890abcdef12345678", Network: "polygon", WalletType: "metamask"})
	d.Transcript(ctx, &model.TranscriptQuery{UserID: "u1", Format: "pdf"})

	assert.Equal(t, []string{"connect_wallet", "generate_transcript"}, events.actions())
	for _, req := range events.requests {
		assert.Equal(t, "u1", req.UserID)
		data, ok := req.Data.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["timestamp"])
	}
}
