package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one CLI invocation against the local database at db.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--provider", "local", "--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_CustomerJobDashboardRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "crm.db")

	out, err := run(t, db, "--json", "customers", "add", "--name", "Ada Lovelace", "--phone", "555-0100", "--service", "Lawn")
	require.NoError(t, err)
	var c domain.Customer
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	require.NotEmpty(t, c.ID)

	out, err = run(t, db, "jobs", "add", "--customer", c.ID, "--price", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled Lawn for Ada Lovelace")

	out, err = run(t, db, "--json", "dashboard")
	require.NoError(t, err)
	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.True(t, stats.TotalUnpaid.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, stats.UnpaidJobsCount)
	assert.Len(t, stats.TodaysJobs, 1)

	out, err = run(t, db, "customers", "list", "-q", "ada")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "$50.00")
}

func TestCLI_ExportWipeImport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "crm.db")
	snapshot := filepath.Join(dir, "backup.yaml")

	_, err := run(t, db, "customers", "add", "--name", "Grace Hopper")
	require.NoError(t, err)

	_, err = run(t, db, "export", "-o", snapshot)
	require.NoError(t, err)
	raw, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "name: Grace Hopper")

	_, err = run(t, db, "wipe")
	require.Error(t, err)

	_, err = run(t, db, "wipe", "--yes")
	require.NoError(t, err)
	out, err := run(t, db, "--json", "customers", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))

	out, err = run(t, db, "import", "-f", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 customers and 0 jobs")

	out, err = run(t, db, "customers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
}

func TestCLI_ImportWithoutCollectionsKeepsData(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "crm.db")

	_, err := run(t, db, "customers", "add", "--name", "Grace Hopper")
	require.NoError(t, err)

	stray := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(stray, []byte(`{"foo":"bar"}`), 0o600))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	for _, f := range []string{stray, empty} {
		_, err = run(t, db, "import", "-f", f)
		assert.ErrorIs(t, err, domain.ErrValidation, f)
	}

	out, err := run(t, db, "customers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
}

func TestCLI_QRWritesPNG(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "crm.db")
	png := filepath.Join(dir, "qr.png")

	out, err := run(t, db, "--json", "customers", "add", "--name", "Alan Turing")
	require.NoError(t, err)
	var c domain.Customer
	require.NoError(t, json.Unmarshal([]byte(out), &c))

	out, err = run(t, db, "qr", "customer", c.ID, "-o", png)
	require.NoError(t, err)
	assert.Contains(t, out, c.ID)

	img, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	_, err = run(t, db, "qr", "job", "missing")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestCLI_NotificationsDismiss(t *testing.T) {
	db := filepath.Join(t.TempDir(), "crm.db")

	out, err := run(t, db, "notifications", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing needs attention.")

	_, err = run(t, db, "notifications", "dismiss", "overdue-payments")
	require.NoError(t, err)
	_, err = run(t, db, "notifications", "clear")
	require.NoError(t, err)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		flag, path string
		want       string
		wantErr    bool
	}{
		{"", "", formatJSON, false},
		{"", "out.yml", formatYAML, false},
		{"", "out.YAML", formatYAML, false},
		{"", "out.json", formatJSON, false},
		{"yml", "out.json", formatYAML, false},
		{"JSON", "out.yaml", formatJSON, false},
		{"toml", "", "", true},
	}
	for _, tt := range tests {
		got, err := formatFor(tt.flag, tt.path)
		if tt.wantErr {
			assert.Error(t, err, "%q %q", tt.flag, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%q %q", tt.flag, tt.path)
	}
}

func TestDecodeSnapshot_RejectsGarbage(t *testing.T) {
	_, err := decodeSnapshot([]byte("{not json"), formatJSON)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = decodeSnapshot([]byte("customers: [unterminated"), formatYAML)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
