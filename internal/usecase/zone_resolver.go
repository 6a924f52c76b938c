package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/metrics"
	"dns-manager-backend/internal/repository"
)

// ApexDomain returns the registrable domain of name: its last two labels,
// lower-cased and without the trailing dot. Multi-label public suffixes such
// as co.uk are not recognised, "a.example.co.uk" maps to "co.uk".
func ApexDomain(name string) (string, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	labels := strings.Split(name, ".")
	if len(labels) < 2 || labels[len(labels)-2] == "" || labels[len(labels)-1] == "" {
		return "", domain.NewError(domain.KindValidation, fmt.Sprintf("domain %q has no apex", name), nil)
	}
	return strings.Join(labels[len(labels)-2:], "."), nil
}

// IsApex reports whether name is its own apex domain
func IsApex(name string) bool {
	apex, err := ApexDomain(name)
	if err != nil {
		return false
	}
	return apex == strings.TrimSuffix(strings.ToLower(name), ".")
}

// ZoneResolver finds the hosted zone that holds a domain, creating it on demand
type ZoneResolver struct {
	provider  repository.DNSProviderRepository
	callerRef func() string
	lg        *zap.Logger
}

// NewZoneResolver creates a resolver. Caller references are UUIDv7, so they
// are unique and ordered by creation time.
func NewZoneResolver(provider repository.DNSProviderRepository, lg *zap.Logger) *ZoneResolver {
	return &ZoneResolver{
		provider: provider,
		callerRef: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
		lg: lg,
	}
}

// ResolveZone returns the hosted zone named after the apex of name,
// or domain.ErrZoneNotFound
func (r *ZoneResolver) ResolveZone(ctx context.Context, name string) (*domain.HostedZone, error) {
	apex, err := ApexDomain(name)
	if err != nil {
		return nil, err
	}

	zone, err := r.provider.FindZoneByApexName(ctx, domain.FQDN(apex))
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, domain.ErrZoneNotFound
	}
	return zone, nil
}

// EnsureZone resolves the zone of name and creates it when missing.
// A created zone is never removed, even if the caller later fails.
func (r *ZoneResolver) EnsureZone(ctx context.Context, name string) (*domain.HostedZone, error) {
	zone, err := r.ResolveZone(ctx, name)
	if err == nil {
		return zone, nil
	}
	if !errors.Is(err, domain.ErrZoneNotFound) {
		return nil, err
	}

	apex, _ := ApexDomain(name)
	ref := r.callerRef()
	r.lg.Info("[EnsureZone] creating hosted zone", zap.String("apex", apex), zap.String("callerRef", ref))

	zone, err = r.provider.CreateZone(ctx, apex, ref)
	if err != nil {
		r.lg.Error("[EnsureZone] ERROR", zap.String("apex", apex), zap.Error(err))
		return nil, err
	}
	metrics.ZonesCreatedTotal.Inc()

	r.lg.Info("[EnsureZone] SUCCESS", zap.String("zoneID", zone.ID), zap.String("name", zone.Name))
	return zone, nil
}
