package services

import (
	"time"

	"stitchery/internal/models"
)

// ChangeNotifier is told about every successful floss or pattern mutation.
type ChangeNotifier interface {
	NotifyChange(event models.ChangeEvent)
}

func notify(n ChangeNotifier, kind, userID, subject string) {
	if n == nil {
		return
	}
	n.NotifyChange(models.ChangeEvent{
		Kind:       kind,
		UserID:     userID,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
	})
}
