package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/metrics"
	"dns-manager-backend/internal/repository"
)

// dnsUsecase implements DNSUsecase interface.
// Every mutation goes to the provider first; the store follows only once the
// provider has accepted the change.
type dnsUsecase struct {
	provider   repository.DNSProviderRepository
	records    repository.DNSRecordRepository
	zones      *ZoneResolver
	notifier   DriftNotifier
	defaultTTL int
	lg         *zap.Logger
}

// NewDNSUsecase creates a new DNS usecase
func NewDNSUsecase(
	provider repository.DNSProviderRepository,
	records repository.DNSRecordRepository,
	zones *ZoneResolver,
	notifier DriftNotifier,
	defaultTTL int,
	lg *zap.Logger,
) DNSUsecase {
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultTTL
	}
	return &dnsUsecase{
		provider:   provider,
		records:    records,
		zones:      zones,
		notifier:   notifier,
		defaultTTL: defaultTTL,
		lg:         lg,
	}
}

// ListZones returns all hosted zones
func (u *dnsUsecase) ListZones(ctx context.Context) ([]domain.HostedZone, error) {
	return u.provider.ListZones(ctx)
}

// GetRecord returns a record by id
func (u *dnsUsecase) GetRecord(ctx context.Context, id string) (*domain.DNSRecord, error) {
	record, err := u.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrRecordNotFound
	}
	return record, nil
}

// ListRecords returns records by owner, by a field filter, or all of them
func (u *dnsUsecase) ListRecords(ctx context.Context, input ListRecordsInput) ([]domain.DNSRecord, error) {
	var filter domain.RecordFilter
	switch {
	case input.Owner != "":
		filter.Owner = input.Owner
	case input.Field != "" && input.Value != "":
		filter.Field = recordField(input.Field)
		filter.Value = input.Value
	}

	records, err := u.records.Find(ctx, filter)
	if err != nil {
		u.lg.Error("[ListRecords] ERROR", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// CreateRecord creates a record at the provider, creating the hosted zone
// when needed, and then stores it
func (u *dnsUsecase) CreateRecord(ctx context.Context, input domain.DNSRecordInput) (*domain.DNSRecord, error) {
	in, err := u.prepare(input)
	if err != nil {
		return nil, err
	}

	u.lg.Info("[CreateRecord] START", zap.String("domain", in.Domain), zap.String("type", in.Type))
	created, err := u.create(ctx, in, "")
	if err != nil {
		u.lg.Warn("[CreateRecord] ERROR", zap.String("domain", in.Domain), zap.Error(err))
		return nil, err
	}
	u.lg.Info("[CreateRecord] SUCCESS", zap.String("id", created.ID))

	return created, nil
}

// UpdateRecord upserts the record at the provider when a matching record
// set exists. Without a hosted zone it falls back to the create flow and
// leaves the local record named by RecordID alone, since its record set may
// still live in another zone. With a zone but no matching record set it
// creates the record and drops the stale local one.
func (u *dnsUsecase) UpdateRecord(ctx context.Context, input UpdateRecordInput) (*domain.DNSRecord, error) {
	in, err := u.prepare(input.DNSRecordInput)
	if err != nil {
		return nil, err
	}

	u.lg.Info("[UpdateRecord] START",
		zap.String("domain", in.Domain),
		zap.String("type", in.Type),
		zap.String("recordId", input.RecordID),
	)

	zone, err := u.zones.ResolveZone(ctx, in.Domain)
	if errors.Is(err, domain.ErrZoneNotFound) {
		u.lg.Info("[UpdateRecord] zone missing, creating record", zap.String("domain", in.Domain))
		return u.create(ctx, in, input.RecordID)
	}
	if err != nil {
		return nil, err
	}

	sets, err := u.provider.ListRecordSets(ctx, zone.ID)
	if err != nil {
		return nil, err
	}
	if !lo.ContainsBy(sets, func(rs domain.RecordSet) bool { return rs.Matches(in.Domain, in.Type) }) {
		u.lg.Info("[UpdateRecord] record set missing, replacing record", zap.String("domain", in.Domain))
		return u.replace(ctx, in, input.RecordID)
	}

	record := in.Record()
	if err := submitChange(ctx, u.provider, domain.NewChangeRequest(domain.ChangeActionUpsert, zone.ID, record)); err != nil {
		u.lg.Warn("[UpdateRecord] ERROR", zap.String("domain", in.Domain), zap.Error(err))
		return nil, err
	}

	saved, err := u.storeUpsert(ctx, record)
	if err != nil {
		u.drift(ctx, "update", record, zone.ID, err)
		return nil, err
	}

	u.lg.Info("[UpdateRecord] SUCCESS", zap.String("id", saved.ID))
	return saved, nil
}

// DeleteRecord removes the record at the provider and then from the store
func (u *dnsUsecase) DeleteRecord(ctx context.Context, id string) (*domain.DNSRecord, error) {
	u.lg.Info("[DeleteRecord] START", zap.String("id", id))

	record, err := u.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if IsApex(record.Domain) {
		apex, _ := ApexDomain(record.Domain)
		sibling, err := u.records.FindOne(ctx, domain.RecordFilter{Apex: apex, ExcludeID: record.ID})
		if err != nil {
			return nil, err
		}
		if sibling != nil {
			u.lg.Warn("[DeleteRecord] apex still has records",
				zap.String("apex", apex),
				zap.String("sibling", sibling.Domain),
			)
			return nil, domain.ErrApexHasSubdomains
		}
	}

	zone, err := u.zones.ResolveZone(ctx, record.Domain)
	if err != nil {
		return nil, err
	}

	if err := submitChange(ctx, u.provider, domain.NewChangeRequest(domain.ChangeActionDelete, zone.ID, *record)); err != nil {
		u.lg.Warn("[DeleteRecord] ERROR", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if _, err := u.records.DeleteByID(ctx, record.ID); err != nil {
		u.drift(ctx, "delete", *record, zone.ID, err)
		return nil, err
	}

	u.lg.Info("[DeleteRecord] SUCCESS", zap.String("id", id), zap.String("domain", record.Domain))
	return record, nil
}

// Distribution counts records grouped by field
func (u *dnsUsecase) Distribution(ctx context.Context, field string) ([]domain.FieldCount, error) {
	if field == "" {
		return nil, domain.NewError(domain.KindValidation, "parameter for data distribution is required", nil)
	}
	return u.records.AggregateCount(ctx, recordField(field))
}

// create runs the create flow. excludeID names a local record that may
// share the domain because it is about to be replaced.
func (u *dnsUsecase) create(ctx context.Context, in domain.DNSRecordInput, excludeID string) (*domain.DNSRecord, error) {
	existing, err := u.records.FindOne(ctx, domain.RecordFilter{Domain: in.Domain, ExcludeID: excludeID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRecord
	}

	zone, err := u.zones.EnsureZone(ctx, in.Domain)
	if err != nil {
		return nil, err
	}

	record := in.Record()
	if err := submitChange(ctx, u.provider, domain.NewChangeRequest(domain.ChangeActionCreate, zone.ID, record)); err != nil {
		return nil, err
	}

	saved, err := u.records.Insert(ctx, record)
	if err != nil {
		u.drift(ctx, "create", record, zone.ID, err)
		return nil, err
	}
	return saved, nil
}

// replace creates the record and removes the stale local record it supersedes
func (u *dnsUsecase) replace(ctx context.Context, in domain.DNSRecordInput, staleID string) (*domain.DNSRecord, error) {
	created, err := u.create(ctx, in, staleID)
	if err != nil {
		return nil, err
	}

	if staleID != "" && staleID != created.ID {
		if _, err := u.records.DeleteByID(ctx, staleID); err != nil {
			u.drift(ctx, "update", *created, "", err)
			return nil, err
		}
	}
	return created, nil
}

// storeUpsert updates the local record matching domain and type, or inserts
// one when the store has drifted from the provider
func (u *dnsUsecase) storeUpsert(ctx context.Context, record domain.DNSRecord) (*domain.DNSRecord, error) {
	existing, err := u.records.FindOne(ctx, domain.RecordFilter{Domain: record.Domain, Type: record.Type})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return u.records.Insert(ctx, record)
	}
	return u.records.UpdateByID(ctx, existing.ID, domain.RecordPatch{
		Value: &record.Value,
		TTL:   &record.TTL,
		Owner: &record.Owner,
	})
}

func (u *dnsUsecase) prepare(input domain.DNSRecordInput) (domain.DNSRecordInput, error) {
	if input.TTL == 0 {
		input.TTL = u.defaultTTL
	}
	in := input.Normalize()
	return in, in.Validate()
}

func (u *dnsUsecase) drift(ctx context.Context, operation string, record domain.DNSRecord, zoneID string, err error) {
	u.notifier.NotifyDrift(ctx, DriftEvent{
		Operation: operation,
		Record:    record,
		ZoneID:    zoneID,
		Err:       err,
	})
}

// submitChange sends one change and treats anything but PENDING as a failure
func submitChange(ctx context.Context, provider repository.DNSProviderRepository, change domain.ChangeRequest) error {
	status, err := provider.SubmitChange(ctx, change)
	if err != nil {
		metrics.ProviderChangesTotal.WithLabelValues(string(change.Action), metrics.StatusError).Inc()
		return err
	}
	metrics.ProviderChangesTotal.WithLabelValues(string(change.Action), string(status)).Inc()

	if !status.Accepted() {
		return domain.NewError(domain.KindProvider,
			fmt.Sprintf("%s %s %s returned status %q", change.Action, change.Name, change.Type, status),
			domain.ErrChangeNotAccepted)
	}
	return nil
}

// recordField maps the legacy "user" field name onto owner
func recordField(name string) string {
	if name == "user" {
		return "owner"
	}
	return name
}
