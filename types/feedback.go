package types

import (
	"strings"
	"time"
)

// FeedbackType classifies a submission.
type FeedbackType string

const (
	FeedbackTypeGeneral   FeedbackType = "general"
	FeedbackTypeBug       FeedbackType = "bug"
	FeedbackTypeFeature   FeedbackType = "feature"
	FeedbackTypeComplaint FeedbackType = "complaint"
)

// IsValid reports whether t is one of the known feedback types.
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackTypeGeneral, FeedbackTypeBug, FeedbackTypeFeature, FeedbackTypeComplaint:
		return true
	}
	return false
}

// FeedbackStatus is the review state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

// IsValid reports whether s is one of the known review states.
func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusPending, FeedbackStatusReviewed, FeedbackStatusResolved:
		return true
	}
	return false
}

// FeedbackTimeLayout is the layout used for CreatedAt (ISO-8601, UTC, millisecond precision).
const FeedbackTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Feedback represents a feedback entry persisted in the data file.
type Feedback struct {
	ID        string         `json:"id" example:"1718000000000"`
	Name      string         `json:"name" example:"Ann"`
	Email     string         `json:"email" example:"a@x.com"`
	Message   string         `json:"message" example:"great app"`
	Type      FeedbackType   `json:"type" example:"feature"`
	Status    FeedbackStatus `json:"status" example:"pending"`
	CreatedAt string         `json:"createdAt" example:"2024-06-10T06:13:20.000Z"`
}

// FormatFeedbackTime renders t the way CreatedAt is stored.
func FormatFeedbackTime(t time.Time) string {
	return t.UTC().Format(FeedbackTimeLayout)
}

// FeedbackCreate represents the request body for submitting feedback.
// Any id, status or createdAt sent by the client is ignored.
type FeedbackCreate struct {
	Name    string       `json:"name"`
	Email   string       `json:"email"`
	Message string       `json:"message"`
	Type    FeedbackType `json:"type"`
}

// MissingFields lists the required fields that are absent or blank, in
// request order.
func (f *FeedbackCreate) MissingFields() []string {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"message", f.Message},
		{"type", string(f.Type)},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// FeedbackStatusUpdate represents the request body for PUT /feedback/:id.
type FeedbackStatusUpdate struct {
	Status FeedbackStatus `json:"status"`
}

// SuccessResponse is returned by endpoints that have no payload.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
