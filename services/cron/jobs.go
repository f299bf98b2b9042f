package cron

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/services/export"
	"github.com/sahilchouksey/partner-hub/services/notify"
)

const (
	JobExpiryDigest = "expiry_digest"
	JobWeeklyReport = "weekly_report"
)

// SendExpiryDigest emails the partnerships currently expiring soon.
// Runs daily; without a mailer or recipients the list is only logged.
func (m *CronManager) SendExpiryDigest(ctx context.Context) (string, error) {
	records, err := m.deps.Source.ListPartnerships(ctx, config.GetLookups().AllColleges)
	if err != nil {
		return "", fmt.Errorf("failed to list partnerships: %w", err)
	}

	now := m.deps.Now()
	expiring := dashboard.ExpiringSoon(records, now)
	if len(expiring) == 0 {
		return "No partnerships expiring soon", nil
	}

	if m.deps.Mailer == nil || len(m.deps.Recipients) == 0 {
		for _, p := range expiring {
			m.log.Info("partnership expiring soon",
				zap.String("id", p.ID), zap.String("name", p.Name), zap.Timep("expires", p.ExpirationDate))
		}
		return fmt.Sprintf("Logged %d expiring partnerships (no mail recipients)", len(expiring)), nil
	}

	subject := notify.DigestSubject(len(expiring), now)
	if err := m.deps.Mailer.Send(m.deps.Recipients, subject, notify.DigestBody(expiring, now)); err != nil {
		return "", fmt.Errorf("failed to send digest: %w", err)
	}
	return fmt.Sprintf("Sent digest of %d partnerships to %d recipients", len(expiring), len(m.deps.Recipients)), nil
}

// UploadWeeklyReport builds the all-colleges yearly dashboard and uploads it
// as a workbook keyed by date.
func (m *CronManager) UploadWeeklyReport(ctx context.Context) (string, error) {
	if m.deps.Uploader == nil {
		return "Skipped: report storage not configured", nil
	}

	records, err := m.deps.Source.ListPartnerships(ctx, config.GetLookups().AllColleges)
	if err != nil {
		return "", fmt.Errorf("failed to list partnerships: %w", err)
	}

	d := dashboard.Build(records, dashboard.Filter{TimeFilter: dashboard.Yearly}, m.deps.Now(), nil)
	data, err := export.Dashboard(d)
	if err != nil {
		return "", err
	}

	key := "reports/weekly/" + export.FileName(d)
	url, err := m.deps.Uploader.UploadBytes(ctx, key, data, export.ContentType)
	if err != nil {
		return "", err
	}
	return "Uploaded " + url, nil
}
