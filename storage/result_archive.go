package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/google/uuid"
)

const resultContentType = "application/json"

// ResultArchive stores each calculated day leaderboard as an immutable JSON object.
// Every recalculation produces a new object; earlier sheets are kept.
type ResultArchive struct {
	uploader FileUploader
	newID    func() string
}

func NewResultArchive(uploader FileUploader) *ResultArchive {
	return &ResultArchive{
		uploader: uploader,
		newID:    func() string { return uuid.NewString() },
	}
}

func resultKey(sheet models.DayResultSheet, id string) string {
	return fmt.Sprintf("results/events/%d/days/%s/%s.json", sheet.EventID, sheet.Date, id)
}

// PublishDayResults returns the public location of the uploaded sheet.
func (a *ResultArchive) PublishDayResults(ctx context.Context, sheet models.DayResultSheet) (string, error) {
	body, err := json.Marshal(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to encode result sheet for day %d: %w", sheet.EventDayID, err)
	}
	res, err := a.uploader.Upload(ctx, resultKey(sheet, a.newID()), resultContentType, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return res.Location, nil
}
