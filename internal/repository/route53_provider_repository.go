package repository

import (
	"context"

	"dns-manager-backend/external_resource/route53"
	"dns-manager-backend/internal/domain"
)

// route53ProviderRepository implements DNSProviderRepository using Route 53
type route53ProviderRepository struct {
	client route53.Client
}

// NewRoute53ProviderRepository creates a provider repository backed by Route 53
func NewRoute53ProviderRepository(client route53.Client) DNSProviderRepository {
	return &route53ProviderRepository{
		client: client,
	}
}

func (r *route53ProviderRepository) ListZones(ctx context.Context) ([]domain.HostedZone, error) {
	zones, err := r.client.ListHostedZones(ctx)
	if err != nil {
		return nil, domain.ProviderError("list hosted zones", err)
	}

	result := make([]domain.HostedZone, len(zones))
	for i, z := range zones {
		result[i] = domain.HostedZone{ID: z.ID, Name: z.Name}
	}
	return result, nil
}

func (r *route53ProviderRepository) FindZoneByApexName(ctx context.Context, name string) (*domain.HostedZone, error) {
	zone, err := r.client.GetHostedZoneByName(ctx, domain.FQDN(name))
	if err != nil {
		return nil, domain.ProviderError("find hosted zone", err)
	}
	if zone == nil {
		return nil, nil
	}
	return &domain.HostedZone{ID: zone.ID, Name: zone.Name}, nil
}

func (r *route53ProviderRepository) CreateZone(ctx context.Context, name, callerRef string) (*domain.HostedZone, error) {
	zone, err := r.client.CreateHostedZone(ctx, name, callerRef)
	if err != nil {
		return nil, domain.ProviderError("create hosted zone", err)
	}
	return &domain.HostedZone{ID: zone.ID, Name: zone.Name}, nil
}

func (r *route53ProviderRepository) ListRecordSets(ctx context.Context, zoneID string) ([]domain.RecordSet, error) {
	sets, err := r.client.ListResourceRecordSets(ctx, zoneID)
	if err != nil {
		return nil, domain.ProviderError("list record sets", err)
	}

	result := make([]domain.RecordSet, len(sets))
	for i, s := range sets {
		result[i] = domain.RecordSet{
			Name:   s.Name,
			Type:   s.Type,
			TTL:    int(s.TTL),
			Values: s.Values,
		}
	}
	return result, nil
}

func (r *route53ProviderRepository) SubmitChange(ctx context.Context, change domain.ChangeRequest) (domain.ChangeStatus, error) {
	info, err := r.client.ChangeResourceRecordSet(ctx, change.ZoneID, route53.ChangeInput{
		Action: string(change.Action),
		Name:   change.Name,
		Type:   change.Type,
		TTL:    int64(change.TTL),
		Value:  change.Value,
	})
	if err != nil {
		return "", domain.ProviderError("submit change", err)
	}
	return domain.ChangeStatus(info.Status), nil
}
