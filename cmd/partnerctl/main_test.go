package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/model"
)

var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

const rawRecord = `{"_id":"p1","name":"Nairobi Exchange","type":"MOU","status":"Active","region":"East Africa",
"createdAt":"2026-10-01T00:00:00Z","expirationDate":"2026-11-01",
"partnerInstitution":{"name":"UoN","country":"Kenya"},
"aauContact":{"name":"Abebe","email":"abebe@aau.edu.et","interestedCollegeOrDepartment":"College of Health Sciences"}}`

type fakeBackend struct {
	listErr error
	updates []map[string]interface{}
	resets  []model.ResetPassword
}

func (f *fakeBackend) record() model.Partnership {
	var p model.Partnership
	_ = json.Unmarshal([]byte(rawRecord), &p)
	return p
}

func (f *fakeBackend) ListPartnerships(context.Context, string) ([]model.Partnership, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []model.Partnership{f.record()}, nil
}

func (f *fakeBackend) GetPartnership(context.Context, string) (model.Partnership, error) {
	return f.record(), nil
}

func (f *fakeBackend) GetPartnershipRaw(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(rawRecord), nil
}

func (f *fakeBackend) UpdatePartnership(_ context.Context, _ string, changes map[string]interface{}) (model.Partnership, error) {
	f.updates = append(f.updates, changes)
	return f.record(), nil
}

func (f *fakeBackend) ResetPassword(_ context.Context, req model.ResetPassword) error {
	f.resets = append(f.resets, req)
	return nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.User, error) {
	return []model.User{
		{ID: "u2", Name: "selam", Email: "selam@aau.edu.et", Roles: []string{"editor"}},
		{ID: "u1", Name: "Abebe", Email: "abebe@aau.edu.et", Roles: []string{"admin"}, IsActive: true},
	}, nil
}

func run(t *testing.T, b *fakeBackend, args ...string) (string, error) {
	t.Helper()
	c := &cli{backend: b, now: func() time.Time { return testNow }, log: zap.NewNop()}
	cmd := newRootCmd(c)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDashboardCommand(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "dashboard", "--time", "monthly")
	require.NoError(t, err)

	assert.Contains(t, out, "Monthly / All Colleges")
	assert.Regexp(t, `College of Health Sciences\s+0\s+1\s+0\s+0`, out)
	assert.Regexp(t, `Kenya\s+1`, out)
}

func TestDashboardCommandJSON(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "dashboard", "-o", "json")
	require.NoError(t, err)

	var d struct {
		RecordCount int `json:"recordCount"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 1, d.RecordCount)
}

func TestDashboardCommandFetchFailure(t *testing.T) {
	_, err := run(t, &fakeBackend{listErr: errors.New("connection refused")}, "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDashboardCommandUnknownCollege(t *testing.T) {
	_, err := run(t, &fakeBackend{}, "dashboard", "--college", "Nope")
	assert.EqualError(t, err, `unknown college "Nope"`)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, &fakeBackend{}, "users", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestPartnershipsList(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "partnerships", "list")
	require.NoError(t, err)
	assert.Regexp(t, `p1\s+Nairobi Exchange\s+MOU\s+expiringSoon\s+2026-11-01\s+Kenya`, out)
}

func TestPartnershipsGetYAML(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "partnerships", "get", "p1", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "derivedStatus: expiringSoon")
	assert.Contains(t, out, "region: East Africa")
}

func TestPartnershipsUpdate(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "partnerships", "update", "p1", "--set", "region=Horn of Africa", "--set", "aauContact.email=a.k@aau.edu.et")
	require.NoError(t, err)

	require.Len(t, b.updates, 1)
	assert.Equal(t, map[string]interface{}{
		"region":     "Horn of Africa",
		"aauContact": map[string]interface{}{"email": "a.k@aau.edu.et"},
	}, b.updates[0])
	assert.Contains(t, out, "Updated p1: aauContact.email, region")
}

func TestPartnershipsUpdateNoChanges(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "partnerships", "update", "p1", "--set", "region=East Africa")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes detected")
	assert.Empty(t, b.updates)
}

func TestPartnershipsUpdateValidation(t *testing.T) {
	b := &fakeBackend{}
	_, err := run(t, b, "partnerships", "update", "p1", "--set", "status=Maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status:")
	assert.Empty(t, b.updates)
}

func TestUsersList(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "users", "list")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Abebe")), bytes.Index([]byte(out), []byte("selam")))

	out, err = run(t, &fakeBackend{}, "users", "list", "--role", "editor")
	require.NoError(t, err)
	assert.NotContains(t, out, "Abebe")
}

func mockPasswords(t *testing.T, pwds ...string) {
	t.Helper()
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	i := 0
	readPasswordFunc = func(int) ([]byte, error) {
		p := pwds[i]
		i++
		return []byte(p), nil
	}
}

func TestResetPassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockPasswords(t, "longenough", "longenough")
		b := &fakeBackend{}
		out, err := run(t, b, "reset-password", "--email", "a@aau.edu.et")
		require.NoError(t, err)
		assert.Contains(t, out, "Password has been reset successfully")
		require.Len(t, b.resets, 1)
		assert.Equal(t, "a@aau.edu.et", b.resets[0].Email)
	})

	t.Run("mismatch", func(t *testing.T) {
		mockPasswords(t, "longenough", "different1")
		b := &fakeBackend{}
		_, err := run(t, b, "reset-password", "--email", "a@aau.edu.et")
		assert.EqualError(t, err, "Passwords do not match")
		assert.Empty(t, b.resets)
	})

	t.Run("empty", func(t *testing.T) {
		mockPasswords(t, "")
		_, err := run(t, &fakeBackend{}, "reset-password", "--email", "a@aau.edu.et")
		assert.ErrorIs(t, err, errEmptyPassword)
	})

	t.Run("email required", func(t *testing.T) {
		_, err := run(t, &fakeBackend{}, "reset-password")
		assert.Error(t, err)
	})
}

func TestExport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := run(t, &fakeBackend{}, "export", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+file)

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
