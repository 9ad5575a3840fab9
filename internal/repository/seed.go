package repository

import (
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
)

// seed loads the demo student and their records.
func seed(r *Repositories) {
	now := time.Now().UTC()
	uid := model.DefaultUserID

	_, _ = r.Users.Create(model.User{
		ID:    uid,
		Name:  "Sarah Johnson",
		Email: "sarah.johnson@email.com",
	})

	_, _ = r.Credentials.Create(model.Credential{
		ID:          "cred-1",
		UserID:      uid,
		Title:       "Bachelor of Computer Science",
		Institution: "MIT",
		Date:        "2024-05-15",
		Type:        "degree",
		Status:      model.StatusVerified,
		Views:       1247,
		NFTAddress:  "0x1234...5678",
		IPFSHash:    "QmX1Y2Z3...",
	})

	_, _ = r.HealthRecords.Create(model.HealthRecord{
		ID:       "health-1",
		UserID:   uid,
		Type:     "vaccination",
		Title:    "COVID-19 Vaccination",
		Date:     "2024-01-15",
		Provider: "Campus Health Center",
		Status:   model.StatusVerified,
	})

	_, _ = r.Publications.Create(model.Publication{
		ID:        "pub-1",
		UserID:    uid,
		Title:     "Deep Learning Approaches for Student Performance Prediction",
		Authors:   []string{"Sarah Johnson", "Dr. Michael Chen"},
		Journal:   "Journal of Educational Technology",
		Status:    "published",
		Date:      "2024-01-15",
		Citations: 23,
		DOI:       "10.1000/182",
	})

	_, _ = r.Assignments.Create(model.Assignment{
		ID:             "assign-1",
		UserID:         uid,
		Title:          "Machine Learning Final Project",
		Course:         "CS 6.867",
		DueDate:        "2024-01-20",
		Status:         "in_progress",
		Priority:       "high",
		Progress:       75,
		EstimatedHours: 20,
		SpentHours:     15,
	})

	_, _ = r.Wellness.Create(model.WellnessCheckin{
		ID:     "checkin-1",
		UserID: uid,
		Date:   model.Timestamp(now),
		Mood:   4,
		Energy: 5,
		Stress: 2,
		Sleep:  8,
	})

	_, _ = r.Attendance.Create(model.AttendanceRecord{
		ID:     "att-1",
		UserID: uid,
		Course: "Advanced Machine Learning",
		Date:   "2024-01-15",
		Time:   "10:00 AM",
		Status: "present",
	})

	r.Search.Replace(uid, DefaultSearchItems())

	r.SavedSearches.Save(model.SavedSearch{
		ID:       "saved-1",
		UserID:   uid,
		Name:     "ML Assignments",
		Query:    "machine learning assignments",
		Filters:  map[string]any{"sections": []string{"assignments"}, "types": []string{"assignment"}},
		SavedAt:  "2024-01-10T10:30:00Z",
		LastUsed: "2024-01-15T14:20:00Z",
	})
	r.SavedSearches.Save(model.SavedSearch{
		ID:       "saved-2",
		UserID:   uid,
		Name:     "Health Records",
		Query:    "vaccination health",
		Filters:  map[string]any{"sections": []string{"health"}, "types": []string{"vaccination", "checkup"}},
		SavedAt:  "2024-01-08T09:15:00Z",
		LastUsed: "2024-01-14T11:45:00Z",
	})

	// Record prepends, so the oldest goes first.
	for _, entry := range []SearchHistoryEntry{
		{ID: "search-3", Query: "resume optimization", Timestamp: model.Timestamp(now.Add(-24 * time.Hour)), ResultsCount: 12, Sections: []string{"resume"}},
		{ID: "search-2", Query: "health vaccination records", Timestamp: model.Timestamp(now.Add(-5 * time.Hour)), ResultsCount: 3, Sections: []string{"health"}},
		{ID: "search-1", Query: "machine learning assignments", Timestamp: model.Timestamp(now.Add(-2 * time.Hour)), ResultsCount: 8, Sections: []string{"assignments", "results"}},
	} {
		r.SavedSearches.Record(uid, entry)
	}
}

// DefaultSearchItems is the index every rebuild starts from.
func DefaultSearchItems() []model.SearchItem {
	return []model.SearchItem{
		{
			ID:             "cred-1",
			Type:           "credential",
			Section:        "credentials",
			Title:          "Bachelor of Computer Science",
			Description:    "MIT Computer Science Degree - Blockchain Verified",
			Content:        "Computer Science degree from Massachusetts Institute of Technology with focus on AI and Machine Learning",
			RelevanceScore: 0.95,
			Metadata: model.SearchMetadata{
				Date:   "2024-05-15",
				Author: "MIT",
				Status: "verified",
				Tags:   []string{"degree", "computer-science", "mit", "blockchain"},
				URL:    "/dashboard/credentials/cred-1",
			},
			Highlights: []string{"Computer Science", "MIT", "verified"},
		},
		{
			ID:             "cred-2",
			Type:           "certification",
			Section:        "credentials",
			Title:          "AWS Solutions Architect",
			Description:    "Amazon Web Services Solutions Architect Certification",
			Content:        "Professional certification in cloud architecture and AWS services",
			RelevanceScore: 0.88,
			Metadata: model.SearchMetadata{
				Date:   "2024-03-20",
				Author: "Amazon Web Services",
				Status: "verified",
				Tags:   []string{"certification", "aws", "cloud", "architecture"},
				URL:    "/dashboard/credentials/cred-2",
			},
			Highlights: []string{"AWS", "Solutions Architect", "cloud"},
		},
		{
			ID:             "assign-1",
			Type:           "assignment",
			Section:        "assignments",
			Title:          "Machine Learning Final Project",
			Description:    "Deep learning model for student performance prediction",
			Content:        "Final project implementing neural networks for educational analytics using TensorFlow and Python",
			RelevanceScore: 0.92,
			Metadata: model.SearchMetadata{
				Date:   "2024-01-20",
				Status: "in_progress",
				Tags:   []string{"machine-learning", "python", "tensorflow", "final-project"},
				URL:    "/dashboard/assignments/assign-1",
			},
			Highlights: []string{"Machine Learning", "neural networks", "TensorFlow"},
		},
		{
			ID:             "health-1",
			Type:           "vaccination",
			Section:        "health",
			Title:          "COVID-19 Vaccination Record",
			Description:    "Complete COVID-19 vaccination series",
			Content:        "Pfizer-BioNTech COVID-19 vaccine series completed at Campus Health Center",
			RelevanceScore: 0.85,
			Metadata: model.SearchMetadata{
				Date:   "2024-01-15",
				Author: "Campus Health Center",
				Status: "verified",
				Tags:   []string{"vaccination", "covid-19", "pfizer", "health"},
				URL:    "/dashboard/health/health-1",
			},
			Highlights: []string{"COVID-19", "vaccination", "Pfizer"},
		},
		{
			ID:             "pub-1",
			Type:           "publication",
			Section:        "publishing",
			Title:          "Deep Learning Approaches for Student Performance Prediction",
			Description:    "Research paper on AI in education",
			Content:        "Comprehensive study on using deep learning models to predict and improve student academic outcomes",
			RelevanceScore: 0.90,
			Metadata: model.SearchMetadata{
				Date:   "2024-01-15",
				Author: "Sarah Johnson, Dr. Michael Chen",
				Status: "published",
				Tags:   []string{"deep-learning", "education", "ai", "research"},
				URL:    "/dashboard/publishing/pub-1",
			},
			Highlights: []string{"Deep Learning", "Student Performance", "AI"},
		},
		{
			ID:             "resume-1",
			Type:           "resume",
			Section:        "resume",
			Title:          "AI-Generated Resume",
			Description:    "Professional resume optimized for tech roles",
			Content:        "Computer Science graduate resume with focus on AI/ML and full-stack development experience",
			RelevanceScore: 0.87,
			Metadata: model.SearchMetadata{
				Date:   "2024-01-15",
				Status: "active",
				Tags:   []string{"resume", "ai-generated", "tech", "computer-science"},
				URL:    "/dashboard/resume",
			},
			Highlights: []string{"AI-Generated", "tech roles", "Computer Science"},
		},
		{
			ID:             "loc-1",
			Type:           "location",
			Section:        "map",
			Title:          "Stata Center",
			Description:    "Computer Science and AI Laboratory",
			Content:        "Main building for Computer Science department with AI lab, study rooms, and cafeteria",
			RelevanceScore: 0.83,
			Metadata: model.SearchMetadata{
				Tags: []string{"building", "computer-science", "ai-lab", "study-rooms"},
				URL:  "/dashboard/map/loc-1",
			},
			Highlights: []string{"Stata Center", "Computer Science", "AI Laboratory"},
		},
		{
			ID:             "result-1",
			Type:           "grade",
			Section:        "results",
			Title:          "Machine Learning Course Grade",
			Description:    "CS 6.867 - Grade: A (4.0 GPA)",
			Content:        "Advanced Machine Learning course with Dr. Johnson covering neural networks, deep learning, and AI applications",
			RelevanceScore: 0.89,
			Metadata: model.SearchMetadata{
				Date:   "2023-12-15",
				Author: "Dr. Johnson",
				Status: "completed",
				Tags:   []string{"grade", "machine-learning", "cs-6867", "a-grade"},
				URL:    "/dashboard/results/result-1",
			},
			Highlights: []string{"Machine Learning", "Grade: A", "neural networks"},
		},
	}
}
