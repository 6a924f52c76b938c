package domain

// HostedZone is a provider-side container of record sets for one apex domain.
// Name always carries the trailing dot.
type HostedZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecordSet is the provider's view of a DNS record
type RecordSet struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	TTL    int      `json:"ttl"`
	Values []string `json:"values"`
}

// ChangeAction is the mutation submitted in a change batch
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "CREATE"
	ChangeActionUpsert ChangeAction = "UPSERT"
	ChangeActionDelete ChangeAction = "DELETE"
)

// ChangeStatus is the provider's immediate answer to a change batch
type ChangeStatus string

const (
	ChangeStatusPending ChangeStatus = "PENDING"
	ChangeStatusInSync  ChangeStatus = "INSYNC"
)

// Accepted reports whether the change was acknowledged. Only PENDING counts.
func (s ChangeStatus) Accepted() bool {
	return s == ChangeStatusPending
}

// ChangeRequest describes one record-set mutation against a zone
type ChangeRequest struct {
	Action ChangeAction
	ZoneID string
	Name   string
	Type   string
	TTL    int
	Value  string
}

// NewChangeRequest snapshots a record into a change for the given zone
func NewChangeRequest(action ChangeAction, zoneID string, record DNSRecord) ChangeRequest {
	return ChangeRequest{
		Action: action,
		ZoneID: zoneID,
		Name:   record.Domain,
		Type:   record.Type,
		TTL:    record.TTL,
		Value:  record.Value,
	}
}

// Matches reports whether the record set describes the given domain and type
func (rs RecordSet) Matches(domainName, recordType string) bool {
	return rs.Name == FQDN(domainName) && rs.Type == recordType
}
