package cloudflare

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
)

// cloudflareAPI is the subset of *cloudflare.API used here
type cloudflareAPI interface {
	ListZones(ctx context.Context, z ...string) ([]cloudflare.Zone, error)
	CreateZone(ctx context.Context, name string, jumpstart bool, account cloudflare.Account, zoneType string) (cloudflare.Zone, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error
}

// cloudflareClient implements the Client interface using cloudflare-go SDK
type cloudflareClient struct {
	api       cloudflareAPI
	accountID string
	lg        *zap.Logger
}

// Config holds Cloudflare credentials. APIToken wins over APIKey/Email.
type Config struct {
	APIToken  string
	APIKey    string
	Email     string
	AccountID string
}

// NewClient creates a new Cloudflare client from token or key credentials
func NewClient(lg *zap.Logger, cfg Config) (Client, error) {
	var (
		api *cloudflare.API
		err error
	)
	switch {
	case cfg.APIToken != "":
		api, err = cloudflare.NewWithAPIToken(cfg.APIToken)
	case cfg.APIKey != "" && cfg.Email != "":
		api, err = cloudflare.New(cfg.APIKey, cfg.Email)
	default:
		return nil, errors.New("cloudflare credentials are not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
	}

	return newClient(api, cfg.AccountID, lg), nil
}

func newClient(api cloudflareAPI, accountID string, lg *zap.Logger) *cloudflareClient {
	return &cloudflareClient{
		api:       api,
		accountID: accountID,
		lg:        lg.Named("cloudflare"),
	}
}

// ListZones returns all zones accessible by the client
func (c *cloudflareClient) ListZones(ctx context.Context) ([]Zone, error) {
	zones, err := c.api.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	result := make([]Zone, len(zones))
	for i, z := range zones {
		result[i] = mapCloudflareZone(z)
	}

	return result, nil
}

// GetZoneByName returns the zone with the given name, or nil
func (c *cloudflareClient) GetZoneByName(ctx context.Context, name string) (*Zone, error) {
	c.lg.Debug("[GetZoneByName] START", zap.String("name", name))
	zones, err := c.api.ListZones(ctx, name)
	if err != nil {
		c.lg.Error("[GetZoneByName] ERROR", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get zone by name %s: %w", name, err)
	}

	for _, z := range zones {
		if z.Name == name {
			zone := mapCloudflareZone(z)
			c.lg.Debug("[GetZoneByName] SUCCESS", zap.String("zoneID", zone.ID))
			return &zone, nil
		}
	}
	return nil, nil
}

// CreateZone adds a full zone to the configured account
func (c *cloudflareClient) CreateZone(ctx context.Context, name string) (*Zone, error) {
	c.lg.Info("[CreateZone] START", zap.String("name", name))
	zone, err := c.api.CreateZone(ctx, name, false, cloudflare.Account{ID: c.accountID}, "full")
	if err != nil {
		c.lg.Error("[CreateZone] ERROR", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create zone %s: %w", name, err)
	}

	result := mapCloudflareZone(zone)
	c.lg.Info("[CreateZone] SUCCESS", zap.String("zoneID", result.ID))
	return &result, nil
}

// ListDNSRecords returns all DNS records for a zone
func (c *cloudflareClient) ListDNSRecords(ctx context.Context, zoneID string, filter DNSRecordFilter) ([]DNSRecord, error) {
	c.lg.Debug("[ListDNSRecords] START", zap.String("zoneID", zoneID))
	listParams := cloudflare.ListDNSRecordsParams{
		Name: filter.Name,
		Type: filter.Type,
	}

	records, _, err := c.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), listParams)
	if err != nil {
		c.lg.Error("[ListDNSRecords] ERROR", zap.String("zoneID", zoneID), zap.Error(err))
		return nil, fmt.Errorf("failed to list dns records: %w", err)
	}
	c.lg.Debug("[ListDNSRecords] SUCCESS", zap.Int("count", len(records)))

	result := make([]DNSRecord, len(records))
	for i, r := range records {
		result[i] = mapCloudflareRecord(r)
	}

	return result, nil
}

// CreateDNSRecord creates a new DNS record
func (c *cloudflareClient) CreateDNSRecord(ctx context.Context, zoneID string, input DNSRecordInput) (*DNSRecord, error) {
	record, err := c.api.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.CreateDNSRecordParams{
		Name:     input.Name,
		Type:     input.Type,
		Content:  input.Content,
		TTL:      input.TTL,
		Priority: input.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dns record: %w", err)
	}

	result := mapCloudflareRecord(record)
	return &result, nil
}

// UpdateDNSRecord updates an existing DNS record
func (c *cloudflareClient) UpdateDNSRecord(ctx context.Context, zoneID, recordID string, input DNSRecordInput) (*DNSRecord, error) {
	record, err := c.api.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.UpdateDNSRecordParams{
		ID:       recordID,
		Name:     input.Name,
		Type:     input.Type,
		Content:  input.Content,
		TTL:      input.TTL,
		Priority: input.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update dns record %s: %w", recordID, err)
	}

	result := mapCloudflareRecord(record)
	return &result, nil
}

// DeleteDNSRecord deletes a DNS record
func (c *cloudflareClient) DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error {
	err := c.api.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), recordID)
	if err != nil {
		return fmt.Errorf("failed to delete dns record %s: %w", recordID, err)
	}

	return nil
}

func mapCloudflareZone(z cloudflare.Zone) Zone {
	return Zone{
		ID:     z.ID,
		Name:   z.Name,
		Status: z.Status,
	}
}

// mapCloudflareRecord maps cloudflare-go DNSRecord to our DNSRecord
func mapCloudflareRecord(r cloudflare.DNSRecord) DNSRecord {
	return DNSRecord{
		ID:       r.ID,
		ZoneID:   r.ZoneID,
		Name:     r.Name,
		Type:     r.Type,
		Content:  r.Content,
		TTL:      r.TTL,
		Priority: r.Priority,
	}
}
