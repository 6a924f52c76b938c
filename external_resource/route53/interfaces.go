package route53

import "context"

// Client defines the interface for Route 53 API operations
type Client interface {
	// Hosted zone operations
	ListHostedZones(ctx context.Context) ([]HostedZone, error)
	GetHostedZoneByName(ctx context.Context, name string) (*HostedZone, error)
	CreateHostedZone(ctx context.Context, name, callerReference string) (*HostedZone, error)

	// Resource record set operations
	ListResourceRecordSets(ctx context.Context, zoneID string) ([]ResourceRecordSet, error)
	ChangeResourceRecordSet(ctx context.Context, zoneID string, input ChangeInput) (*ChangeInfo, error)
}

// HostedZone represents a Route 53 hosted zone
type HostedZone struct {
	ID   string
	Name string
}

// ResourceRecordSet represents a Route 53 record set
type ResourceRecordSet struct {
	Name   string
	Type   string
	TTL    int64
	Values []string
}

// ChangeInput represents a single change in a change batch
type ChangeInput struct {
	Action string
	Name   string
	Type   string
	TTL    int64
	Value  string
}

// ChangeInfo is the immediate answer to a change batch
type ChangeInfo struct {
	ID     string
	Status string
}
