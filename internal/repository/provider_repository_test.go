package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dns-manager-backend/external_resource/cloudflare"
	"dns-manager-backend/external_resource/route53"
	"dns-manager-backend/internal/domain"
)

type fakeRoute53 struct {
	zones   []route53.HostedZone
	sets    []route53.ResourceRecordSet
	changes []route53.ChangeInput
	status  string
	err     error
}

func (f *fakeRoute53) ListHostedZones(context.Context) ([]route53.HostedZone, error) {
	return f.zones, f.err
}

func (f *fakeRoute53) GetHostedZoneByName(_ context.Context, name string) (*route53.HostedZone, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, z := range f.zones {
		if z.Name == name {
			return &z, nil
		}
	}
	return nil, nil
}

func (f *fakeRoute53) CreateHostedZone(_ context.Context, name, _ string) (*route53.HostedZone, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &route53.HostedZone{ID: "ZNEW", Name: name + "."}, nil
}

func (f *fakeRoute53) ListResourceRecordSets(context.Context, string) ([]route53.ResourceRecordSet, error) {
	return f.sets, f.err
}

func (f *fakeRoute53) ChangeResourceRecordSet(_ context.Context, _ string, input route53.ChangeInput) (*route53.ChangeInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.changes = append(f.changes, input)
	return &route53.ChangeInfo{ID: "C1", Status: f.status}, nil
}

func TestRoute53Provider_FindZoneByApexName(t *testing.T) {
	client := &fakeRoute53{zones: []route53.HostedZone{{ID: "Z1", Name: "example.com."}}}
	repo := NewRoute53ProviderRepository(client)

	zone, err := repo.FindZoneByApexName(context.Background(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "Z1", zone.ID)

	zone, err = repo.FindZoneByApexName(context.Background(), "other.com")
	require.NoError(t, err)
	assert.Nil(t, zone)
}

func TestRoute53Provider_SubmitChange(t *testing.T) {
	client := &fakeRoute53{status: "PENDING"}
	repo := NewRoute53ProviderRepository(client)

	status, err := repo.SubmitChange(context.Background(), domain.ChangeRequest{
		Action: domain.ChangeActionUpsert,
		ZoneID: "Z1",
		Name:   "a.example.com",
		Type:   "A",
		TTL:    300,
		Value:  "1.2.3.4",
	})
	require.NoError(t, err)
	assert.True(t, status.Accepted())
	assert.Equal(t, route53.ChangeInput{Action: "UPSERT", Name: "a.example.com", Type: "A", TTL: 300, Value: "1.2.3.4"}, client.changes[0])
}

func TestRoute53Provider_WrapsErrors(t *testing.T) {
	repo := NewRoute53ProviderRepository(&fakeRoute53{err: errors.New("boom")})

	_, err := repo.ListRecordSets(context.Background(), "Z1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

type fakeCloudflare struct {
	zones   []cloudflare.Zone
	records []cloudflare.DNSRecord
	created []cloudflare.DNSRecordInput
	updated []string
	deleted []string
}

func (f *fakeCloudflare) ListZones(context.Context) ([]cloudflare.Zone, error) {
	return f.zones, nil
}

func (f *fakeCloudflare) GetZoneByName(_ context.Context, name string) (*cloudflare.Zone, error) {
	for _, z := range f.zones {
		if z.Name == name {
			return &z, nil
		}
	}
	return nil, nil
}

func (f *fakeCloudflare) CreateZone(_ context.Context, name string) (*cloudflare.Zone, error) {
	z := cloudflare.Zone{ID: "cf-new", Name: name}
	f.zones = append(f.zones, z)
	return &z, nil
}

func (f *fakeCloudflare) ListDNSRecords(_ context.Context, _ string, filter cloudflare.DNSRecordFilter) ([]cloudflare.DNSRecord, error) {
	var out []cloudflare.DNSRecord
	for _, r := range f.records {
		if (filter.Name == "" || r.Name == filter.Name) && (filter.Type == "" || r.Type == filter.Type) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCloudflare) CreateDNSRecord(_ context.Context, _ string, input cloudflare.DNSRecordInput) (*cloudflare.DNSRecord, error) {
	f.created = append(f.created, input)
	return &cloudflare.DNSRecord{ID: "new", Name: input.Name, Type: input.Type, Content: input.Content}, nil
}

func (f *fakeCloudflare) UpdateDNSRecord(_ context.Context, _ string, recordID string, input cloudflare.DNSRecordInput) (*cloudflare.DNSRecord, error) {
	f.updated = append(f.updated, recordID)
	return &cloudflare.DNSRecord{ID: recordID, Name: input.Name, Type: input.Type, Content: input.Content}, nil
}

func (f *fakeCloudflare) DeleteDNSRecord(_ context.Context, _ string, recordID string) error {
	f.deleted = append(f.deleted, recordID)
	return nil
}

func TestCloudflareProvider_ZoneNamesCarryTrailingDot(t *testing.T) {
	client := &fakeCloudflare{zones: []cloudflare.Zone{{ID: "z1", Name: "example.com"}}}
	repo := NewCloudflareProviderRepository(client, zap.NewNop())

	zone, err := repo.FindZoneByApexName(context.Background(), "example.com.")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, domain.HostedZone{ID: "z1", Name: "example.com."}, *zone)

	created, err := repo.CreateZone(context.Background(), "example.org", "ref")
	require.NoError(t, err)
	assert.Equal(t, "example.org.", created.Name)
}

func TestCloudflareProvider_ListRecordSets(t *testing.T) {
	client := &fakeCloudflare{records: []cloudflare.DNSRecord{
		{ID: "r1", Name: "example.com", Type: "MX", Content: "mail.example.com", TTL: 300, Priority: func() *uint16 { p := uint16(10); return &p }()},
	}}
	repo := NewCloudflareProviderRepository(client, zap.NewNop())

	sets, err := repo.ListRecordSets(context.Background(), "z1")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].Matches("example.com", "MX"))
	assert.Equal(t, []string{"10 mail.example.com"}, sets[0].Values)
}

func TestCloudflareProvider_SubmitChange(t *testing.T) {
	client := &fakeCloudflare{records: []cloudflare.DNSRecord{
		{ID: "r1", Name: "a.example.com", Type: "A", Content: "1.1.1.1"},
	}}
	repo := NewCloudflareProviderRepository(client, zap.NewNop())
	ctx := context.Background()

	status, err := repo.SubmitChange(ctx, domain.ChangeRequest{Action: domain.ChangeActionCreate, ZoneID: "z1", Name: "mx.example.com", Type: "MX", TTL: 300, Value: "10 mail.example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeStatusPending, status)
	require.Len(t, client.created, 1)
	assert.Equal(t, "mail.example.com", client.created[0].Content)
	require.NotNil(t, client.created[0].Priority)
	assert.Equal(t, uint16(10), *client.created[0].Priority)

	_, err = repo.SubmitChange(ctx, domain.ChangeRequest{Action: domain.ChangeActionUpsert, ZoneID: "z1", Name: "a.example.com.", Type: "A", TTL: 300, Value: "2.2.2.2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, client.updated)

	_, err = repo.SubmitChange(ctx, domain.ChangeRequest{Action: domain.ChangeActionDelete, ZoneID: "z1", Name: "a.example.com", Type: "A", Value: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, client.deleted)

	_, err = repo.SubmitChange(ctx, domain.ChangeRequest{Action: domain.ChangeActionDelete, ZoneID: "z1", Name: "b.example.com", Type: "A", Value: "9.9.9.9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}
