package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/metrics"
	"dns-manager-backend/internal/repository"
)

// DefaultImportConcurrency bounds provider calls of one import
const DefaultImportConcurrency = 8

// importUsecase implements ImportUsecase
type importUsecase struct {
	provider    repository.DNSProviderRepository
	records     repository.DNSRecordRepository
	zones       *ZoneResolver
	notifier    DriftNotifier
	concurrency int
	defaultTTL  int
	lg          *zap.Logger
}

// NewImportUsecase creates a new bulk import usecase
func NewImportUsecase(
	provider repository.DNSProviderRepository,
	records repository.DNSRecordRepository,
	zones *ZoneResolver,
	notifier DriftNotifier,
	concurrency int,
	defaultTTL int,
	lg *zap.Logger,
) ImportUsecase {
	if concurrency < 1 {
		concurrency = DefaultImportConcurrency
	}
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultTTL
	}
	return &importUsecase{
		provider:    provider,
		records:     records,
		zones:       zones,
		notifier:    notifier,
		concurrency: concurrency,
		defaultTTL:  defaultTTL,
		lg:          lg,
	}
}

type importOutcome struct {
	record domain.DNSRecord
	reason string
}

// ImportBatch creates every valid row at the provider through a bounded
// worker pool, then stores the accepted rows in one bulk insert. Row
// failures never abort the batch.
func (u *importUsecase) ImportBatch(ctx context.Context, rows []ImportRow, owner string) (*ImportResult, error) {
	u.lg.Info("[ImportBatch] START", zap.Int("rows", len(rows)), zap.Int("concurrency", u.concurrency))

	outcomes := make([]importOutcome, len(rows))
	// rows of the same new apex share one zone creation
	var zoneCalls singleflight.Group

	g := new(errgroup.Group)
	g.SetLimit(u.concurrency)
	for i, row := range rows {
		in, err := u.candidate(row, owner)
		if err != nil {
			outcomes[i].reason = err.Error()
			continue
		}

		g.Go(func() error {
			record := in.Record()
			apex, _ := ApexDomain(in.Domain)
			v, err, _ := zoneCalls.Do(apex, func() (any, error) {
				return u.zones.EnsureZone(ctx, in.Domain)
			})
			if err != nil {
				outcomes[i].reason = err.Error()
				return nil
			}
			zone := v.(*domain.HostedZone)

			if err := submitChange(ctx, u.provider, domain.NewChangeRequest(domain.ChangeActionCreate, zone.ID, record)); err != nil {
				outcomes[i].reason = err.Error()
				return nil
			}
			outcomes[i].record = record
			return nil
		})
	}
	_ = g.Wait()

	result := &ImportResult{
		Succeeded: []domain.DNSRecord{},
		Failed:    []FailedRow{},
	}
	var accepted []domain.DNSRecord
	for i, o := range outcomes {
		if o.reason != "" {
			result.Failed = append(result.Failed, FailedRow{ImportRow: rows[i], Reason: o.reason})
			continue
		}
		accepted = append(accepted, o.record)
	}

	if len(accepted) > 0 {
		saved, err := u.records.InsertMany(ctx, accepted)
		if err != nil {
			for _, record := range accepted {
				u.notifier.NotifyDrift(ctx, DriftEvent{Operation: "import", Record: record, Err: err})
			}
			u.lg.Error("[ImportBatch] ERROR bulk insert", zap.Int("records", len(accepted)), zap.Error(err))
			return nil, err
		}
		result.Succeeded = saved
	}

	metrics.ImportRowsTotal.WithLabelValues(metrics.OutcomeSucceeded).Add(float64(len(result.Succeeded)))
	metrics.ImportRowsTotal.WithLabelValues(metrics.OutcomeFailed).Add(float64(len(result.Failed)))
	u.lg.Info("[ImportBatch] SUCCESS",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// ImportFile imports an uploaded CSV file. The file is removed whatever the outcome.
func (u *importUsecase) ImportFile(ctx context.Context, upload Upload, owner string) (*ImportResult, error) {
	defer func() {
		if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.lg.Warn("[ImportFile] failed to remove upload", zap.String("path", upload.Path), zap.Error(err))
		}
	}()

	if !IsCSVUpload(upload) {
		return nil, domain.ErrInvalidUpload
	}

	f, err := os.Open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	return u.ImportBatch(ctx, rows, owner)
}

// candidate turns a raw row into a validated record input
func (u *importUsecase) candidate(row ImportRow, owner string) (domain.DNSRecordInput, error) {
	in := domain.DNSRecordInput{
		Domain: row.Domain,
		Type:   row.Type,
		Value:  row.Value,
		Owner:  lo.Ternary(strings.TrimSpace(row.Owner) != "", row.Owner, owner),
	}
	if ttl := strings.TrimSpace(row.TTL); ttl != "" {
		n, err := strconv.Atoi(ttl)
		if err != nil {
			return in, domain.NewError(domain.KindValidation, fmt.Sprintf("ttl %q is not a number", ttl), err)
		}
		in.TTL = n
	}
	if in.TTL == 0 {
		in.TTL = u.defaultTTL
	}

	in = in.Normalize()
	return in, in.Validate()
}

// IsCSVUpload accepts text/csv uploads, and .csv files sent without a
// specific content type
func IsCSVUpload(upload Upload) bool {
	mediaType, _, _ := mime.ParseMediaType(upload.ContentType)
	switch mediaType {
	case "text/csv", "application/csv":
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(filepath.Ext(upload.Filename), ".csv")
	}
	return false
}

var requiredColumns = []string{"domain", "type", "value"}

// ParseCSV reads import rows from CSV with a header line. Columns are
// matched by name; ttl and user are optional.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewError(domain.KindValidation, "csv file is empty", nil)
		}
		return nil, domain.NewError(domain.KindValidation, "failed to read csv header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	if missing := lo.Filter(requiredColumns, func(c string, _ int) bool {
		_, ok := columns[c]
		return !ok
	}); len(missing) > 0 {
		return nil, domain.NewError(domain.KindValidation, fmt.Sprintf("csv is missing columns: %s", strings.Join(missing, ", ")), nil)
	}

	cell := func(rec []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []ImportRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewError(domain.KindValidation, fmt.Sprintf("failed to read csv line %d", line), err)
		}
		if len(lo.Compact(rec)) == 0 {
			continue
		}

		owner := cell(rec, "user")
		if owner == "" {
			owner = cell(rec, "owner")
		}
		rows = append(rows, ImportRow{
			Line:   line,
			Domain: cell(rec, "domain"),
			Type:   cell(rec, "type"),
			Value:  cell(rec, "value"),
			TTL:    cell(rec, "ttl"),
			Owner:  owner,
		})
	}
	return rows, nil
}
