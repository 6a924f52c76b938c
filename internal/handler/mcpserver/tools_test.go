package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/usecase"
)

type stubDNS struct {
	usecase.DNSUsecase
	created domain.DNSRecordInput
	updated usecase.UpdateRecordInput
	listed  usecase.ListRecordsInput
	record  *domain.DNSRecord
	err     error
}

func (s *stubDNS) ListZones(context.Context) ([]domain.HostedZone, error) {
	return []domain.HostedZone{{ID: "Z1", Name: "example.com."}}, nil
}

func (s *stubDNS) GetRecord(context.Context, string) (*domain.DNSRecord, error) {
	return s.record, s.err
}

func (s *stubDNS) ListRecords(_ context.Context, in usecase.ListRecordsInput) ([]domain.DNSRecord, error) {
	s.listed = in
	return []domain.DNSRecord{{ID: "r1"}}, s.err
}

func (s *stubDNS) CreateRecord(_ context.Context, in domain.DNSRecordInput) (*domain.DNSRecord, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	r := in.Record()
	r.ID = "r1"
	return &r, nil
}

func (s *stubDNS) UpdateRecord(_ context.Context, in usecase.UpdateRecordInput) (*domain.DNSRecord, error) {
	s.updated = in
	r := in.Record()
	return &r, s.err
}

func (s *stubDNS) DeleteRecord(_ context.Context, id string) (*domain.DNSRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.DNSRecord{ID: id}, nil
}

func (s *stubDNS) Distribution(_ context.Context, field string) ([]domain.FieldCount, error) {
	if field == "" {
		return nil, domain.NewError(domain.KindValidation, "field is required", nil)
	}
	return []domain.FieldCount{{Key: "A", Count: 3}}, nil
}

// text extracts the text of the single content item
func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	data, err := json.Marshal(result.Content[0])
	require.NoError(t, err)
	var content struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(data, &content))
	return content.Text
}

func call(t *testing.T, tools *Tools, fn toolFunc, arguments map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := tools.withContext(fn)(arguments)
	require.NoError(t, err)
	return result
}

func TestCreateRecord_DefaultOwner(t *testing.T) {
	dns := &stubDNS{}
	tools := NewTools(dns, "mcp", zap.NewNop())

	result := call(t, tools, tools.createRecord, map[string]interface{}{
		"domain": "www.example.com",
		"type":   "A",
		"value":  "1.1.1.1",
		"ttl":    float64(300),
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "mcp", dns.created.Owner)
	assert.Equal(t, 300, dns.created.TTL)

	var record domain.DNSRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &record))
	assert.Equal(t, "r1", record.ID)

	call(t, tools, tools.createRecord, map[string]interface{}{"domain": "x.example.com", "user": "u4"})
	assert.Equal(t, "u4", dns.created.Owner)
}

func TestToolErrorsAreResults(t *testing.T) {
	dns := &stubDNS{err: domain.ErrDuplicateRecord}
	tools := NewTools(dns, "mcp", zap.NewNop())

	result := call(t, tools, tools.createRecord, map[string]interface{}{"domain": "a.example.com"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), domain.ErrDuplicateRecord.Error())

	result = call(t, tools, tools.deleteRecord, map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "id is required")
}

func TestGetRecord_NotFound(t *testing.T) {
	tools := NewTools(&stubDNS{}, "mcp", zap.NewNop())

	result := call(t, tools, tools.getRecord, map[string]interface{}{"id": "missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "not found")
}

func TestUpdateAndListArguments(t *testing.T) {
	dns := &stubDNS{}
	tools := NewTools(dns, "mcp", zap.NewNop())

	call(t, tools, tools.updateRecord, map[string]interface{}{
		"domain":    "a.example.com",
		"type":      "A",
		"value":     "2.2.2.2",
		"record_id": "r7",
	})
	assert.Equal(t, "r7", dns.updated.RecordID)

	call(t, tools, tools.listRecords, map[string]interface{}{"field": "type", "value": "MX"})
	assert.Equal(t, usecase.ListRecordsInput{Field: "type", Value: "MX"}, dns.listed)
}

func TestDistributionAndZones(t *testing.T) {
	tools := NewTools(&stubDNS{}, "mcp", zap.NewNop())

	result := call(t, tools, tools.recordDistribution, map[string]interface{}{"field": "type"})
	assert.False(t, result.IsError)
	assert.JSONEq(t, `[{"key":"A","count":3}]`, text(t, result))

	result = call(t, tools, tools.recordDistribution, map[string]interface{}{})
	assert.True(t, result.IsError)

	result = call(t, tools, tools.listZones, nil)
	assert.Contains(t, text(t, result), "example.com.")
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(NewTools(&stubDNS{}, "mcp", zap.NewNop())))
}
