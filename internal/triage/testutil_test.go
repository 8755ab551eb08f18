package triage

import (
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
)

var baseTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func grievance(p model.Priority, s model.Status, age time.Duration, city, state string) model.Grievance {
	return model.Grievance{
		ID:        uuid.New(),
		Priority:  p,
		Status:    s,
		Timestamp: baseTime.Add(-age),
		City:      city,
		State:     state,
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
