package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/external_resource/cloudflare"
	"dns-manager-backend/internal/domain"
)

// cloudflareProviderRepository implements DNSProviderRepository using Cloudflare.
// Cloudflare applies changes synchronously, so every successful call is
// reported as PENDING to keep the acceptance contract of Route 53.
type cloudflareProviderRepository struct {
	client cloudflare.Client
	lg     *zap.Logger
}

// NewCloudflareProviderRepository creates a provider repository backed by Cloudflare
func NewCloudflareProviderRepository(client cloudflare.Client, lg *zap.Logger) DNSProviderRepository {
	return &cloudflareProviderRepository{
		client: client,
		lg:     lg,
	}
}

func (r *cloudflareProviderRepository) ListZones(ctx context.Context) ([]domain.HostedZone, error) {
	zones, err := r.client.ListZones(ctx)
	if err != nil {
		return nil, domain.ProviderError("list zones", err)
	}

	result := make([]domain.HostedZone, len(zones))
	for i, z := range zones {
		result[i] = mapCloudflareZone(z)
	}
	return result, nil
}

func (r *cloudflareProviderRepository) FindZoneByApexName(ctx context.Context, name string) (*domain.HostedZone, error) {
	zone, err := r.client.GetZoneByName(ctx, strings.TrimSuffix(name, "."))
	if err != nil {
		return nil, domain.ProviderError("find zone", err)
	}
	if zone == nil {
		return nil, nil
	}
	result := mapCloudflareZone(*zone)
	return &result, nil
}

// CreateZone creates a zone. Cloudflare has no caller reference, a duplicate
// name is rejected by the API instead.
func (r *cloudflareProviderRepository) CreateZone(ctx context.Context, name, callerRef string) (*domain.HostedZone, error) {
	r.lg.Debug("[CreateZone] caller reference not used by cloudflare", zap.String("callerRef", callerRef))
	zone, err := r.client.CreateZone(ctx, strings.TrimSuffix(name, "."))
	if err != nil {
		return nil, domain.ProviderError("create zone", err)
	}
	result := mapCloudflareZone(*zone)
	return &result, nil
}

func (r *cloudflareProviderRepository) ListRecordSets(ctx context.Context, zoneID string) ([]domain.RecordSet, error) {
	records, err := r.client.ListDNSRecords(ctx, zoneID, cloudflare.DNSRecordFilter{})
	if err != nil {
		return nil, domain.ProviderError("list dns records", err)
	}

	return lo.Map(records, func(rec cloudflare.DNSRecord, _ int) domain.RecordSet {
		return domain.RecordSet{
			Name:   domain.FQDN(rec.Name),
			Type:   rec.Type,
			TTL:    rec.TTL,
			Values: []string{joinPriority(rec.Priority, rec.Content)},
		}
	}), nil
}

func (r *cloudflareProviderRepository) SubmitChange(ctx context.Context, change domain.ChangeRequest) (domain.ChangeStatus, error) {
	name := strings.TrimSuffix(change.Name, ".")
	priority, content := splitPriority(change.Type, change.Value)
	input := cloudflare.DNSRecordInput{
		Name:     name,
		Type:     change.Type,
		Content:  content,
		TTL:      change.TTL,
		Priority: priority,
	}

	switch change.Action {
	case domain.ChangeActionCreate:
		if _, err := r.client.CreateDNSRecord(ctx, change.ZoneID, input); err != nil {
			return "", domain.ProviderError("create dns record", err)
		}

	case domain.ChangeActionUpsert:
		existing, err := r.client.ListDNSRecords(ctx, change.ZoneID, cloudflare.DNSRecordFilter{Name: name, Type: change.Type})
		if err != nil {
			return "", domain.ProviderError("find dns record", err)
		}
		if len(existing) == 0 {
			_, err = r.client.CreateDNSRecord(ctx, change.ZoneID, input)
		} else {
			_, err = r.client.UpdateDNSRecord(ctx, change.ZoneID, existing[0].ID, input)
		}
		if err != nil {
			return "", domain.ProviderError("upsert dns record", err)
		}

	case domain.ChangeActionDelete:
		existing, err := r.client.ListDNSRecords(ctx, change.ZoneID, cloudflare.DNSRecordFilter{Name: name, Type: change.Type})
		if err != nil {
			return "", domain.ProviderError("find dns record", err)
		}
		target, ok := lo.Find(existing, func(rec cloudflare.DNSRecord) bool {
			return rec.Content == content
		})
		if !ok {
			return "", domain.ProviderError("delete dns record", fmt.Errorf("record %s %s %s not found", name, change.Type, change.Value))
		}
		if err := r.client.DeleteDNSRecord(ctx, change.ZoneID, target.ID); err != nil {
			return "", domain.ProviderError("delete dns record", err)
		}

	default:
		return "", domain.NewError(domain.KindValidation, fmt.Sprintf("unknown change action %q", change.Action), nil)
	}

	return domain.ChangeStatusPending, nil
}

func mapCloudflareZone(z cloudflare.Zone) domain.HostedZone {
	return domain.HostedZone{
		ID:   z.ID,
		Name: domain.FQDN(z.Name),
	}
}

// splitPriority separates the preference of an MX value, which Cloudflare
// keeps in its own field
func splitPriority(recordType, value string) (*uint16, string) {
	if recordType != "MX" {
		return nil, value
	}
	head, rest, ok := strings.Cut(value, " ")
	if !ok {
		return nil, value
	}
	p, err := strconv.ParseUint(head, 10, 16)
	if err != nil {
		return nil, value
	}
	return lo.ToPtr(uint16(p)), strings.TrimSpace(rest)
}

func joinPriority(priority *uint16, content string) string {
	if priority == nil {
		return content
	}
	return fmt.Sprintf("%d %s", *priority, content)
}
