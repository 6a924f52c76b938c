package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/repository"
	"dns-manager-backend/pkg/storage"
)

// fakeProvider is an in-memory DNS provider that records every call
type fakeProvider struct {
	mu sync.Mutex

	zones   []domain.HostedZone
	sets    map[string][]domain.RecordSet
	changes []domain.ChangeRequest
	created []string

	// status returned for accepted changes, PENDING when empty
	status domain.ChangeStatus
	// failNames rejects changes for these record names
	failNames map[string]bool
	failZone  bool
}

func newFakeProvider(zones ...string) *fakeProvider {
	p := &fakeProvider{
		sets:      make(map[string][]domain.RecordSet),
		failNames: make(map[string]bool),
	}
	for i, name := range zones {
		p.zones = append(p.zones, domain.HostedZone{ID: fmt.Sprintf("Z%d", i+1), Name: domain.FQDN(name)})
	}
	return p
}

func (p *fakeProvider) ListZones(context.Context) ([]domain.HostedZone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.HostedZone(nil), p.zones...), nil
}

func (p *fakeProvider) FindZoneByApexName(_ context.Context, name string) (*domain.HostedZone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, z := range p.zones {
		if z.Name == domain.FQDN(name) {
			return &z, nil
		}
	}
	return nil, nil
}

func (p *fakeProvider) CreateZone(_ context.Context, name, callerRef string) (*domain.HostedZone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failZone {
		return nil, domain.ProviderError("create hosted zone", errors.New("limit exceeded"))
	}
	if callerRef == "" {
		return nil, errors.New("caller reference required")
	}
	zone := domain.HostedZone{ID: fmt.Sprintf("Z%d", len(p.zones)+1), Name: domain.FQDN(name)}
	p.zones = append(p.zones, zone)
	p.created = append(p.created, name)
	return &zone, nil
}

func (p *fakeProvider) ListRecordSets(_ context.Context, zoneID string) ([]domain.RecordSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.RecordSet(nil), p.sets[zoneID]...), nil
}

func (p *fakeProvider) SubmitChange(_ context.Context, change domain.ChangeRequest) (domain.ChangeStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)

	if p.failNames[change.Name] {
		return "", domain.ProviderError("submit change", errors.New("InvalidChangeBatch"))
	}
	status := p.status
	if status == "" {
		status = domain.ChangeStatusPending
	}
	if !status.Accepted() {
		return status, nil
	}

	set := domain.RecordSet{Name: domain.FQDN(change.Name), Type: change.Type, TTL: change.TTL, Values: []string{change.Value}}
	sets := p.sets[change.ZoneID]
	idx := -1
	for i, rs := range sets {
		if rs.Matches(change.Name, change.Type) {
			idx = i
		}
	}
	switch change.Action {
	case domain.ChangeActionCreate:
		if idx >= 0 {
			return "", domain.ProviderError("submit change", errors.New("record set already exists"))
		}
		p.sets[change.ZoneID] = append(sets, set)
	case domain.ChangeActionUpsert:
		if idx >= 0 {
			sets[idx] = set
		} else {
			p.sets[change.ZoneID] = append(sets, set)
		}
	case domain.ChangeActionDelete:
		if idx < 0 {
			return "", domain.ProviderError("submit change", errors.New("record set not found"))
		}
		p.sets[change.ZoneID] = append(sets[:idx], sets[idx+1:]...)
	}
	return status, nil
}

func (p *fakeProvider) actions() []domain.ChangeAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChangeAction, len(p.changes))
	for i, c := range p.changes {
		out[i] = c.Action
	}
	return out
}

// seedSet places a record set in a zone without going through SubmitChange
func (p *fakeProvider) seedSet(zoneID string, record domain.DNSRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets[zoneID] = append(p.sets[zoneID], domain.RecordSet{
		Name:   domain.FQDN(record.Domain),
		Type:   record.Type,
		TTL:    record.TTL,
		Values: []string{record.Value},
	})
}

// recordingNotifier collects drift events
type recordingNotifier struct {
	mu     sync.Mutex
	events []DriftEvent
}

func (n *recordingNotifier) NotifyDrift(_ context.Context, e DriftEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

// failingRecords fails every write while reads pass through
type failingRecords struct {
	repository.DNSRecordRepository
}

var errDiskFull = errors.New("disk full")

func (f failingRecords) Insert(context.Context, domain.DNSRecord) (*domain.DNSRecord, error) {
	return nil, domain.StoreError("insert record", errDiskFull)
}

func (f failingRecords) InsertMany(context.Context, []domain.DNSRecord) ([]domain.DNSRecord, error) {
	return nil, domain.StoreError("insert records", errDiskFull)
}

func (f failingRecords) DeleteByID(context.Context, string) (bool, error) {
	return false, domain.StoreError("delete record", errDiskFull)
}

type fixture struct {
	provider *fakeProvider
	records  repository.DNSRecordRepository
	notifier *recordingNotifier
	zones    *ZoneResolver
	dns      DNSUsecase
	imports  ImportUsecase
}

func newFixture(t *testing.T, provider *fakeProvider) *fixture {
	t.Helper()
	store := storage.NewJSONStorage(t.TempDir())
	return newFixtureWithRecords(t, provider, repository.NewDNSRepository(store))
}

func newFixtureWithRecords(t *testing.T, provider *fakeProvider, records repository.DNSRecordRepository) *fixture {
	t.Helper()
	lg := zap.NewNop()
	notifier := &recordingNotifier{}
	zones := NewZoneResolver(provider, lg)
	return &fixture{
		provider: provider,
		records:  records,
		notifier: notifier,
		zones:    zones,
		dns:      NewDNSUsecase(provider, records, zones, notifier, 3600, lg),
		imports:  NewImportUsecase(provider, records, zones, notifier, 4, 3600, lg),
	}
}

// seed stores a record directly, bypassing the provider
func (f *fixture) seed(t *testing.T, record domain.DNSRecord) domain.DNSRecord {
	t.Helper()
	saved, err := f.records.Insert(context.Background(), record)
	require.NoError(t, err)
	return *saved
}

func (f *fixture) all(t *testing.T) []domain.DNSRecord {
	t.Helper()
	records, err := f.records.Find(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	return records
}
