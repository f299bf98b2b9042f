package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/export"
)

var now = time.Date(2026, time.October, 12, 6, 0, 0, 0, time.UTC)

type fakeSource struct {
	records []model.Partnership
	err     error
	college string
}

func (f *fakeSource) ListPartnerships(_ context.Context, college string) ([]model.Partnership, error) {
	f.college = college
	return f.records, f.err
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return nil
}

type fakeUploader struct {
	key         string
	contentType string
	size        int
}

func (f *fakeUploader) UploadBytes(_ context.Context, key string, data []byte, contentType string) (string, error) {
	f.key, f.contentType, f.size = key, contentType, len(data)
	return "https://bucket.example.com/" + key, nil
}

func expiring(name string, days int) model.Partnership {
	exp := now.AddDate(0, 0, days)
	created := now.AddDate(0, -2, 0)
	return model.Partnership{Name: name, Status: "Active", ExpirationDate: &exp, CreatedAt: &created}
}

func clock() time.Time { return now }

func TestSendExpiryDigest(t *testing.T) {
	source := &fakeSource{records: []model.Partnership{expiring("Soon", 10), expiring("Later", 90)}}
	mailer := &fakeMailer{}
	m := NewCronManager(Deps{Source: source, Mailer: mailer, Recipients: []string{"ops@example.com"}, Now: clock})

	msg, err := m.SendExpiryDigest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "All Colleges", source.college)
	assert.Equal(t, "Sent digest of 1 partnerships to 1 recipients", msg)
	assert.Equal(t, []string{"ops@example.com"}, mailer.to)
	assert.Contains(t, mailer.body, "Soon")
	assert.NotContains(t, mailer.body, "Later")
}

func TestSendExpiryDigestWithoutMailer(t *testing.T) {
	m := NewCronManager(Deps{Source: &fakeSource{records: []model.Partnership{expiring("Soon", 3)}}, Now: clock})

	msg, err := m.SendExpiryDigest(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "Logged 1"))
}

func TestSendExpiryDigestNothingExpiring(t *testing.T) {
	mailer := &fakeMailer{}
	m := NewCronManager(Deps{Source: &fakeSource{}, Mailer: mailer, Recipients: []string{"a@b.c"}, Now: clock})

	msg, err := m.SendExpiryDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No partnerships expiring soon", msg)
	assert.Empty(t, mailer.subject)
}

func TestSendExpiryDigestFetchError(t *testing.T) {
	m := NewCronManager(Deps{Source: &fakeSource{err: errors.New("boom")}, Now: clock})

	_, err := m.SendExpiryDigest(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestUploadWeeklyReport(t *testing.T) {
	uploader := &fakeUploader{}
	m := NewCronManager(Deps{Source: &fakeSource{records: []model.Partnership{expiring("A", 40)}}, Uploader: uploader, Now: clock})

	msg, err := m.UploadWeeklyReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "reports/weekly/partnerships_20261012_060000.xlsx", uploader.key)
	assert.Equal(t, export.ContentType, uploader.contentType)
	assert.Positive(t, uploader.size)
	assert.Equal(t, "Uploaded https://bucket.example.com/"+uploader.key, msg)
}

func TestUploadWeeklyReportSkippedWithoutStorage(t *testing.T) {
	m := NewCronManager(Deps{Source: &fakeSource{}, Now: clock})

	msg, err := m.UploadWeeklyReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, "Skipped")
}

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(Deps{Source: &fakeSource{}, Now: clock})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 2)
}
