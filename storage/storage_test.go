package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/Dosada05/bullpair-events/models"
)

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key, f.contentType, f.body = key, contentType, body
	return &UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestPublishDayResults(t *testing.T) {
	up := &fakeUploader{}
	archive := NewResultArchive(up)
	archive.newID = func() string { return "fixed" }

	rank := 1
	sheet := models.DayResultSheet{
		EventID:      7,
		EventDayID:   3,
		Date:         "2026-01-11",
		CalculatedAt: time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC),
		Rows: []models.LeaderboardRow{{
			EntryID:    1,
			BullPairID: 11,
			Category:   models.Category{Type: models.CategoryDentition, Value: "MILK"},
			Rank:       &rank,
			GameStatus: models.GameStatusCompleted,
		}},
	}
	location, err := archive.PublishDayResults(context.Background(), sheet)
	if err != nil {
		t.Fatal(err)
	}

	wantKey := "results/events/7/days/2026-01-11/fixed.json"
	if up.key != wantKey {
		t.Errorf("key = %q, want %q", up.key, wantKey)
	}
	if location != "https://cdn.example.com/"+wantKey {
		t.Errorf("location = %q", location)
	}
	if up.contentType != "application/json" {
		t.Errorf("content type = %q", up.contentType)
	}

	var decoded models.DayResultSheet
	if err := json.Unmarshal(up.body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.EventDayID != 3 || len(decoded.Rows) != 1 || *decoded.Rows[0].Rank != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Rows[0].Category != sheet.Rows[0].Category {
		t.Errorf("category = %v, want %v", decoded.Rows[0].Category, sheet.Rows[0].Category)
	}
}

func TestPublishDayResultsUploadError(t *testing.T) {
	boom := errors.New("bucket unavailable")
	archive := NewResultArchive(&fakeUploader{err: boom})
	if _, err := archive.PublishDayResults(context.Background(), models.DayResultSheet{EventID: 1, Date: "2026-01-11"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{base: "https://pub.r2.dev", key: "results/a.json", want: "https://pub.r2.dev/results/a.json"},
		{base: "https://pub.r2.dev/", key: "/results/a.json", want: "https://pub.r2.dev/results/a.json"},
		{base: "https://cdn.example.com/bull", key: "results/a.json", want: "https://cdn.example.com/bull/results/a.json"},
		{base: "https://pub.r2.dev", key: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.key, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			if err != nil {
				t.Fatal(err)
			}
			if got := publicURL(base, tt.key); got != tt.want {
				t.Errorf("publicURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloudflareConfigRequiresAllFields(t *testing.T) {
	cfg := CloudflareR2Config{AccountID: "acc", BucketName: "bucket"}
	if cfg.IsComplete() {
		t.Fatal("partial config reported as complete")
	}
	if _, err := NewCloudflareR2Uploader(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for partial config")
	}
	full := CloudflareR2Config{AccountID: "a", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b", PublicBaseURL: "https://pub.r2.dev"}
	if !full.IsComplete() {
		t.Fatal("full config reported as incomplete")
	}
}
