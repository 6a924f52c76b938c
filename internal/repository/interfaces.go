package repository

import (
	"context"

	"dns-manager-backend/internal/domain"
)

// DNSRecordRepository defines the interface for DNS record storage operations
type DNSRecordRepository interface {
	// Find returns all records matching the filter
	Find(ctx context.Context, filter domain.RecordFilter) ([]domain.DNSRecord, error)

	// FindOne returns the first record matching the filter, or nil when none does
	FindOne(ctx context.Context, filter domain.RecordFilter) (*domain.DNSRecord, error)

	// FindByID returns a record by id, or nil when it does not exist
	FindByID(ctx context.Context, id string) (*domain.DNSRecord, error)

	// Insert stores a new record and returns it with its assigned id
	Insert(ctx context.Context, record domain.DNSRecord) (*domain.DNSRecord, error)

	// InsertMany stores all records in one batch
	InsertMany(ctx context.Context, records []domain.DNSRecord) ([]domain.DNSRecord, error)

	// UpdateByID applies a patch and returns the updated record
	UpdateByID(ctx context.Context, id string, patch domain.RecordPatch) (*domain.DNSRecord, error)

	// DeleteByID removes a record and reports whether it existed
	DeleteByID(ctx context.Context, id string) (bool, error)

	// AggregateCount groups all records by field and counts each group
	AggregateCount(ctx context.Context, field string) ([]domain.FieldCount, error)
}

// UserRepository defines the interface for user storage operations
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// DNSProviderRepository defines the interface for the authoritative DNS provider
type DNSProviderRepository interface {
	// ListZones returns all hosted zones
	ListZones(ctx context.Context) ([]domain.HostedZone, error)

	// FindZoneByApexName returns the zone named exactly name, or nil
	FindZoneByApexName(ctx context.Context, name string) (*domain.HostedZone, error)

	// CreateZone creates a hosted zone; callerRef makes the request idempotent
	CreateZone(ctx context.Context, name, callerRef string) (*domain.HostedZone, error)

	// ListRecordSets returns all record sets in a zone
	ListRecordSets(ctx context.Context, zoneID string) ([]domain.RecordSet, error)

	// SubmitChange submits one change and returns the provider's immediate status
	SubmitChange(ctx context.Context, change domain.ChangeRequest) (domain.ChangeStatus, error)
}
