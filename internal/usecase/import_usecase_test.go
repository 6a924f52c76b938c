package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dns-manager-backend/internal/domain"
)

func TestImportBatch_PartialFailure(t *testing.T) {
	p := newFakeProvider("example.com")
	p.failNames["bad1.example.com"] = true
	p.failNames["bad2.example.com"] = true
	f := newFixture(t, p)

	rows := []ImportRow{
		{Line: 2, Domain: "a.example.com", Type: "A", Value: "1.1.1.1", TTL: "300"},
		{Line: 3, Domain: "bad1.example.com", Type: "A", Value: "1.1.1.2"},
		{Line: 4, Domain: "b.example.com", Type: "CNAME", Value: "a.example.com"},
		{Line: 5, Domain: "bad2.example.com", Type: "A", Value: "1.1.1.3"},
		{Line: 6, Domain: "c.example.com", Type: "TXT", Value: "hello", Owner: "u9"},
	}

	result, err := f.imports.ImportBatch(context.Background(), rows, "u1")
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 3)
	assert.Len(t, result.Failed, 2)
	assert.ElementsMatch(t, []int{3, 5}, lo.Map(result.Failed, func(r FailedRow, _ int) int { return r.Line }))
	for _, failed := range result.Failed {
		assert.NotEmpty(t, failed.Reason)
	}

	stored := f.all(t)
	assert.Len(t, stored, 3)
	owners := lo.SliceToMap(stored, func(r domain.DNSRecord) (string, string) { return r.Domain, r.Owner })
	assert.Equal(t, "u1", owners["a.example.com"])
	assert.Equal(t, "u9", owners["c.example.com"])

	ttls := lo.SliceToMap(stored, func(r domain.DNSRecord) (string, int) { return r.Domain, r.TTL })
	assert.Equal(t, 300, ttls["a.example.com"])
	assert.Equal(t, 3600, ttls["b.example.com"])
}

func TestImportBatch_InvalidRowsFailWithoutProviderCall(t *testing.T) {
	p := newFakeProvider("example.com")
	f := newFixture(t, p)

	rows := []ImportRow{
		{Line: 2, Domain: "a.example.com", Type: "A", Value: "1.1.1.1", TTL: "soon"},
		{Line: 3, Domain: "b.example.com", Type: "NOPE", Value: "1.1.1.1"},
	}

	result, err := f.imports.ImportBatch(context.Background(), rows, "u1")
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)
	assert.Empty(t, p.changes)
	assert.Empty(t, f.all(t))
}

func TestImportBatch_SharesZoneCreation(t *testing.T) {
	p := newFakeProvider()
	f := newFixture(t, p)

	var rows []ImportRow
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		rows = append(rows, ImportRow{Line: i + 2, Domain: name + ".example.net", Type: "A", Value: "10.0.0.1"})
	}

	result, err := f.imports.ImportBatch(context.Background(), rows, "u1")
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 6)
	assert.Equal(t, []string{"example.net"}, p.created)
}

func TestImportBatch_StoreFailureReportsDrift(t *testing.T) {
	p := newFakeProvider("example.com")
	f := newFixture(t, p)
	f = newFixtureWithRecords(t, p, failingRecords{DNSRecordRepository: f.records})

	_, err := f.imports.ImportBatch(context.Background(), []ImportRow{
		{Line: 2, Domain: "a.example.com", Type: "A", Value: "1.1.1.1"},
		{Line: 3, Domain: "b.example.com", Type: "A", Value: "1.1.1.2"},
	}, "u1")
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Len(t, f.notifier.events, 2)
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFile(t *testing.T) {
	f := newFixture(t, newFakeProvider("example.com"))
	path := writeUpload(t, "upload-1", "domain,type,value,ttl,user\na.example.com,A,1.1.1.1,300,u5\nb.example.com,A,1.1.1.2,,\n")

	result, err := f.imports.ImportFile(context.Background(), Upload{Path: path, Filename: "records.csv", ContentType: "text/csv"}, "u1")
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestImportFile_RejectsNonCSV(t *testing.T) {
	f := newFixture(t, newFakeProvider("example.com"))
	path := writeUpload(t, "upload-2", "{}")

	_, err := f.imports.ImportFile(context.Background(), Upload{Path: path, Filename: "records.json", ContentType: "application/json"}, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidUpload)
	assert.Empty(t, f.provider.changes)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestIsCSVUpload(t *testing.T) {
	assert.True(t, IsCSVUpload(Upload{Filename: "x.txt", ContentType: "text/csv; charset=utf-8"}))
	assert.True(t, IsCSVUpload(Upload{Filename: "x.CSV", ContentType: "application/octet-stream"}))
	assert.False(t, IsCSVUpload(Upload{Filename: "x.csv", ContentType: "image/png"}))
	assert.False(t, IsCSVUpload(Upload{Filename: "x.xlsx"}))
}

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("\ufeffType, Domain ,Value\nA,a.example.com,1.1.1.1\n,,\nMX,example.com,10 mail.example.com\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ImportRow{Line: 2, Domain: "a.example.com", Type: "A", Value: "1.1.1.1"}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "10 mail.example.com", rows[1].Value)

	_, err = ParseCSV(strings.NewReader("domain,type\na.example.com,A\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
