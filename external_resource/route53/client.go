package route53

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsroute53 "github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"go.uber.org/zap"
)

// route53API is the subset of the SDK client used here
type route53API interface {
	ListHostedZones(ctx context.Context, params *awsroute53.ListHostedZonesInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ListHostedZonesOutput, error)
	ListHostedZonesByName(ctx context.Context, params *awsroute53.ListHostedZonesByNameInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ListHostedZonesByNameOutput, error)
	CreateHostedZone(ctx context.Context, params *awsroute53.CreateHostedZoneInput, optFns ...func(*awsroute53.Options)) (*awsroute53.CreateHostedZoneOutput, error)
	ListResourceRecordSets(ctx context.Context, params *awsroute53.ListResourceRecordSetsInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ListResourceRecordSetsOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *awsroute53.ChangeResourceRecordSetsInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ChangeResourceRecordSetsOutput, error)
}

// route53Client implements the Client interface using aws-sdk-go-v2
type route53Client struct {
	api route53API
	lg  *zap.Logger
}

// Config holds the credentials used to reach Route 53
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewClient creates a new Route 53 client. Static credentials are used when
// given, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, lg *zap.Logger, cfg Config) (Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newClient(awsroute53.NewFromConfig(awsCfg), lg), nil
}

func newClient(api route53API, lg *zap.Logger) *route53Client {
	return &route53Client{
		api: api,
		lg:  lg.Named("route53"),
	}
}

// ListHostedZones returns all hosted zones, following pagination
func (c *route53Client) ListHostedZones(ctx context.Context) ([]HostedZone, error) {
	var (
		result []HostedZone
		marker *string
	)
	for {
		out, err := c.api.ListHostedZones(ctx, &awsroute53.ListHostedZonesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("failed to list hosted zones: %w", err)
		}
		for _, z := range out.HostedZones {
			result = append(result, mapHostedZone(z))
		}
		if !out.IsTruncated || out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	c.lg.Debug("[ListHostedZones] SUCCESS", zap.Int("count", len(result)))
	return result, nil
}

// GetHostedZoneByName returns the zone whose name equals name exactly, or nil
func (c *route53Client) GetHostedZoneByName(ctx context.Context, name string) (*HostedZone, error) {
	name = fqdn(name)
	out, err := c.api.ListHostedZonesByName(ctx, &awsroute53.ListHostedZonesByNameInput{
		DNSName:  aws.String(name),
		MaxItems: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get hosted zone by name %s: %w", name, err)
	}

	// results start at the first zone >= name, so an exact match must be checked
	for _, z := range out.HostedZones {
		zone := mapHostedZone(z)
		if zone.Name == name {
			return &zone, nil
		}
	}
	return nil, nil
}

// CreateHostedZone creates a public hosted zone
func (c *route53Client) CreateHostedZone(ctx context.Context, name, callerReference string) (*HostedZone, error) {
	c.lg.Info("[CreateHostedZone] START", zap.String("name", name), zap.String("callerReference", callerReference))
	out, err := c.api.CreateHostedZone(ctx, &awsroute53.CreateHostedZoneInput{
		Name:            aws.String(name),
		CallerReference: aws.String(callerReference),
	})
	if err != nil {
		c.lg.Error("[CreateHostedZone] ERROR", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create hosted zone %s: %w", name, err)
	}
	if out.HostedZone == nil {
		return nil, fmt.Errorf("failed to create hosted zone %s: empty response", name)
	}

	zone := mapHostedZone(*out.HostedZone)
	c.lg.Info("[CreateHostedZone] SUCCESS", zap.String("zoneID", zone.ID), zap.String("name", zone.Name))
	return &zone, nil
}

// ListResourceRecordSets returns all record sets in a zone, following pagination
func (c *route53Client) ListResourceRecordSets(ctx context.Context, zoneID string) ([]ResourceRecordSet, error) {
	input := &awsroute53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
	}

	var result []ResourceRecordSet
	for {
		out, err := c.api.ListResourceRecordSets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list record sets in zone %s: %w", zoneID, err)
		}
		for _, rs := range out.ResourceRecordSets {
			result = append(result, mapRecordSet(rs))
		}
		if !out.IsTruncated {
			break
		}
		input = &awsroute53.ListResourceRecordSetsInput{
			HostedZoneId:          aws.String(zoneID),
			StartRecordName:       out.NextRecordName,
			StartRecordType:       out.NextRecordType,
			StartRecordIdentifier: out.NextRecordIdentifier,
		}
	}

	c.lg.Debug("[ListResourceRecordSets] SUCCESS", zap.String("zoneID", zoneID), zap.Int("count", len(result)))
	return result, nil
}

// ChangeResourceRecordSet submits a change batch holding a single change
func (c *route53Client) ChangeResourceRecordSet(ctx context.Context, zoneID string, input ChangeInput) (*ChangeInfo, error) {
	c.lg.Info("[ChangeResourceRecordSet] START",
		zap.String("zoneID", zoneID),
		zap.String("action", input.Action),
		zap.String("name", input.Name),
		zap.String("type", input.Type),
	)

	out, err := c.api.ChangeResourceRecordSets(ctx, &awsroute53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeAction(input.Action),
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(input.Name),
						Type: types.RRType(input.Type),
						TTL:  aws.Int64(input.TTL),
						ResourceRecords: []types.ResourceRecord{
							{Value: aws.String(recordValue(input.Type, input.Value))},
						},
					},
				},
			},
		},
	})
	if err != nil {
		c.lg.Error("[ChangeResourceRecordSet] ERROR", zap.String("name", input.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to %s record set %s: %w", strings.ToLower(input.Action), input.Name, err)
	}
	if out.ChangeInfo == nil {
		return nil, fmt.Errorf("failed to %s record set %s: empty response", strings.ToLower(input.Action), input.Name)
	}

	info := &ChangeInfo{
		ID:     aws.ToString(out.ChangeInfo.Id),
		Status: string(out.ChangeInfo.Status),
	}
	c.lg.Info("[ChangeResourceRecordSet] SUCCESS", zap.String("changeID", info.ID), zap.String("status", info.Status))
	return info, nil
}

// mapHostedZone maps an SDK hosted zone, dropping the "/hostedzone/" prefix
func mapHostedZone(z types.HostedZone) HostedZone {
	return HostedZone{
		ID:   strings.TrimPrefix(aws.ToString(z.Id), "/hostedzone/"),
		Name: aws.ToString(z.Name),
	}
}

func mapRecordSet(rs types.ResourceRecordSet) ResourceRecordSet {
	values := make([]string, 0, len(rs.ResourceRecords))
	for _, rr := range rs.ResourceRecords {
		values = append(values, aws.ToString(rr.Value))
	}
	return ResourceRecordSet{
		Name:   unescapeName(aws.ToString(rs.Name)),
		Type:   string(rs.Type),
		TTL:    aws.ToInt64(rs.TTL),
		Values: values,
	}
}

// unescapeName decodes the \ddd octal escapes Route 53 uses in record
// names, so "\052.example.com." reads back as "*.example.com."
func unescapeName(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) {
			if code, err := strconv.ParseUint(name[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(code))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

// recordValue quotes TXT values, which Route 53 requires
func recordValue(recordType, value string) string {
	if recordType == "TXT" && !strings.HasPrefix(value, `"`) {
		return strconv.Quote(value)
	}
	return value
}

func fqdn(name string) string {
	return strings.TrimSuffix(name, ".") + "."
}
