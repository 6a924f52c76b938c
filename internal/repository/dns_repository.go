package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/pkg/storage"
)

// dnsRepository implements DNSRecordRepository on a document store
type dnsRepository struct {
	store storage.RecordStorage
}

// NewDNSRepository creates a new DNS record repository
func NewDNSRepository(store storage.RecordStorage) DNSRecordRepository {
	return &dnsRepository{
		store: store,
	}
}

// Find returns all records matching the filter
func (r *dnsRepository) Find(ctx context.Context, filter domain.RecordFilter) ([]domain.DNSRecord, error) {
	q, err := toQuery(filter)
	if err != nil {
		return nil, err
	}

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, domain.StoreError("find records", err)
	}

	result := make([]domain.DNSRecord, len(docs))
	for i, d := range docs {
		result[i] = mapToDomainRecord(d)
	}
	return result, nil
}

// FindOne returns the first matching record, or nil
func (r *dnsRepository) FindOne(ctx context.Context, filter domain.RecordFilter) (*domain.DNSRecord, error) {
	q, err := toQuery(filter)
	if err != nil {
		return nil, err
	}

	doc, err := r.store.FindOne(ctx, q)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.StoreError("find record", err)
	}

	result := mapToDomainRecord(*doc)
	return &result, nil
}

// FindByID returns a record by id, or nil
func (r *dnsRepository) FindByID(ctx context.Context, id string) (*domain.DNSRecord, error) {
	doc, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.StoreError("find record by id", err)
	}

	result := mapToDomainRecord(*doc)
	return &result, nil
}

// Insert stores a new record
func (r *dnsRepository) Insert(ctx context.Context, record domain.DNSRecord) (*domain.DNSRecord, error) {
	doc, err := r.store.Insert(ctx, mapToDocument(record))
	if err != nil {
		return nil, domain.StoreError("insert record", err)
	}

	result := mapToDomainRecord(*doc)
	return &result, nil
}

// InsertMany stores all records in one batch
func (r *dnsRepository) InsertMany(ctx context.Context, records []domain.DNSRecord) ([]domain.DNSRecord, error) {
	docs := make([]storage.RecordDocument, len(records))
	for i, rec := range records {
		docs[i] = mapToDocument(rec)
	}

	inserted, err := r.store.InsertMany(ctx, docs)
	if err != nil {
		return nil, domain.StoreError("insert records", err)
	}

	result := make([]domain.DNSRecord, len(inserted))
	for i, d := range inserted {
		result[i] = mapToDomainRecord(d)
	}
	return result, nil
}

// UpdateByID applies a patch to a record
func (r *dnsRepository) UpdateByID(ctx context.Context, id string, patch domain.RecordPatch) (*domain.DNSRecord, error) {
	set := make(map[string]any)
	if patch.Domain != nil {
		set["domain"] = *patch.Domain
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Value != nil {
		set["value"] = *patch.Value
	}
	if patch.TTL != nil {
		set["ttl"] = *patch.TTL
	}
	if patch.Owner != nil {
		set["owner"] = *patch.Owner
	}

	doc, err := r.store.UpdateByID(ctx, id, set)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, domain.StoreError("update record", err)
	}

	result := mapToDomainRecord(*doc)
	return &result, nil
}

// DeleteByID removes a record
func (r *dnsRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	deleted, err := r.store.DeleteByID(ctx, id)
	if err != nil {
		return false, domain.StoreError("delete record", err)
	}
	return deleted, nil
}

// AggregateCount groups records by an allow-listed field
func (r *dnsRepository) AggregateCount(ctx context.Context, field string) ([]domain.FieldCount, error) {
	if !domain.IsRecordField(field) {
		return nil, domain.NewError(domain.KindValidation, fmt.Sprintf("unknown record field %q", field), domain.ErrInvalidField)
	}

	groups, err := r.store.AggregateCount(ctx, field)
	if err != nil {
		return nil, domain.StoreError("aggregate records", err)
	}

	result := make([]domain.FieldCount, len(groups))
	for i, g := range groups {
		result[i] = domain.FieldCount{Key: g.Key, Count: g.Count}
	}
	return result, nil
}

// toQuery maps a domain filter to a storage query
func toQuery(filter domain.RecordFilter) (storage.RecordQuery, error) {
	q := storage.RecordQuery{
		Equals:    make(map[string]any),
		ApexOf:    filter.Apex,
		ExcludeID: filter.ExcludeID,
	}

	if filter.Domain != "" {
		q.Equals["domain"] = filter.Domain
	}
	if filter.Type != "" {
		q.Equals["type"] = filter.Type
	}
	if filter.Owner != "" {
		q.Equals["owner"] = filter.Owner
	}

	if filter.Field != "" {
		if !domain.IsRecordField(filter.Field) {
			return q, domain.NewError(domain.KindValidation, fmt.Sprintf("unknown record field %q", filter.Field), domain.ErrInvalidField)
		}
		var value any = filter.Value
		if filter.Field == "ttl" {
			ttl, err := strconv.Atoi(filter.Value)
			if err != nil {
				return q, domain.NewError(domain.KindValidation, fmt.Sprintf("ttl filter %q is not a number", filter.Value), err)
			}
			value = ttl
		}
		q.Equals[filter.Field] = value
	}

	return q, nil
}

func mapToDocument(r domain.DNSRecord) storage.RecordDocument {
	return storage.RecordDocument{
		ID:     r.ID,
		Domain: r.Domain,
		Type:   r.Type,
		Value:  r.Value,
		TTL:    r.TTL,
		Owner:  r.Owner,
	}
}

// mapToDomainRecord maps a storage document to a domain record
func mapToDomainRecord(d storage.RecordDocument) domain.DNSRecord {
	return domain.DNSRecord{
		ID:     d.ID,
		Domain: d.Domain,
		Type:   d.Type,
		Value:  d.Value,
		TTL:    d.TTL,
		Owner:  d.Owner,
	}
}
