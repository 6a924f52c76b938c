package cloudflare

import "context"

// Client defines the interface for Cloudflare API operations
type Client interface {
	// Zone operations
	ListZones(ctx context.Context) ([]Zone, error)
	GetZoneByName(ctx context.Context, name string) (*Zone, error)
	CreateZone(ctx context.Context, name string) (*Zone, error)

	// DNS Record operations
	ListDNSRecords(ctx context.Context, zoneID string, filter DNSRecordFilter) ([]DNSRecord, error)
	CreateDNSRecord(ctx context.Context, zoneID string, input DNSRecordInput) (*DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, zoneID, recordID string, input DNSRecordInput) (*DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error
}

// Zone represents a Cloudflare zone (domain)
type Zone struct {
	ID     string
	Name   string
	Status string
}

// DNSRecord represents a DNS record from Cloudflare
type DNSRecord struct {
	ID       string
	ZoneID   string
	Name     string
	Type     string
	Content  string
	TTL      int
	Priority *uint16
}

// DNSRecordFilter represents filters for listing DNS records
type DNSRecordFilter struct {
	Name string
	Type string
}

// DNSRecordInput represents input for creating or updating a DNS record
type DNSRecordInput struct {
	Name     string
	Type     string
	Content  string
	TTL      int
	Priority *uint16
}
