package domain

import (
	"fmt"
	"strings"
)

// DefaultTTL is applied when a record is submitted without a TTL
const DefaultTTL = 3600

// DNSRecord represents a DNS record owned by a user
type DNSRecord struct {
	ID     string `json:"_id"`
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	TTL    int    `json:"ttl"`
	Owner  string `json:"owner"`
}

// DNSRecordInput is a candidate record before it has been persisted
type DNSRecordInput struct {
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	TTL    int    `json:"ttl"`
	Owner  string `json:"owner"`
}

// RecordFilter narrows store queries. Empty fields are ignored.
type RecordFilter struct {
	Domain string
	Type   string
	Owner  string
	// Apex matches the apex itself and every name below it
	Apex string
	// Field/Value is an arbitrary allow-listed equality match
	Field string
	Value string
	// ExcludeID skips a single record
	ExcludeID string
}

// RecordPatch is a partial update. Nil fields are left untouched.
type RecordPatch struct {
	Domain *string
	Type   *string
	Value  *string
	TTL    *int
	Owner  *string
}

// FieldCount is one bucket of a group-by-field aggregation
type FieldCount struct {
	Key   any `json:"key"`
	Count int `json:"count"`
}

// RecordTypes contains all supported DNS record types
var RecordTypes = []string{
	"A",
	"AAAA",
	"CNAME",
	"MX",
	"NS",
	"PTR",
	"SOA",
	"SRV",
	"TXT",
	"DNSSEC",
}

// RecordFields are the record fields that may be used for filtering and grouping
var RecordFields = []string{"domain", "type", "value", "ttl", "owner"}

// IsValidRecordType checks if the given type is a valid DNS record type
func IsValidRecordType(recordType string) bool {
	for _, t := range RecordTypes {
		if t == recordType {
			return true
		}
	}
	return false
}

// IsRecordField checks if name is a known record field
func IsRecordField(name string) bool {
	for _, f := range RecordFields {
		if f == name {
			return true
		}
	}
	return false
}

// Normalize trims the input, upper-cases the type and applies the default TTL
func (in DNSRecordInput) Normalize() DNSRecordInput {
	in.Domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(in.Domain)), ".")
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	in.Value = strings.TrimSpace(in.Value)
	in.Owner = strings.TrimSpace(in.Owner)
	if in.TTL == 0 {
		in.TTL = DefaultTTL
	}
	return in
}

// Validate checks the shape of a normalized input
func (in DNSRecordInput) Validate() error {
	switch {
	case in.Domain == "":
		return NewError(KindValidation, "domain is required", nil)
	case !strings.Contains(in.Domain, "."):
		return NewError(KindValidation, fmt.Sprintf("domain %q is not fully qualified", in.Domain), nil)
	case !IsValidRecordType(in.Type):
		return NewError(KindValidation, fmt.Sprintf("invalid record type %q", in.Type), nil)
	case in.Value == "":
		return NewError(KindValidation, "value is required", nil)
	case in.TTL < 0:
		return NewError(KindValidation, "ttl must not be negative", nil)
	case in.Owner == "":
		return NewError(KindValidation, "owner is required", nil)
	}
	return nil
}

// Record builds an unsaved record from the input
func (in DNSRecordInput) Record() DNSRecord {
	return DNSRecord{
		Domain: in.Domain,
		Type:   in.Type,
		Value:  in.Value,
		TTL:    in.TTL,
		Owner:  in.Owner,
	}
}

// FQDN returns name with a single trailing dot
func FQDN(name string) string {
	return strings.TrimSuffix(name, ".") + "."
}
