package usecase

import (
	"context"

	"dns-manager-backend/internal/domain"
)

// DNSUsecase defines the interface for DNS management use cases.
// It is handler-agnostic and is shared by the REST API, the MCP server and the Telegram bot.
type DNSUsecase interface {
	// Zone operations
	ListZones(ctx context.Context) ([]domain.HostedZone, error)

	// Record operations
	GetRecord(ctx context.Context, id string) (*domain.DNSRecord, error)
	ListRecords(ctx context.Context, filter ListRecordsInput) ([]domain.DNSRecord, error)
	CreateRecord(ctx context.Context, input domain.DNSRecordInput) (*domain.DNSRecord, error)
	UpdateRecord(ctx context.Context, input UpdateRecordInput) (*domain.DNSRecord, error)
	DeleteRecord(ctx context.Context, id string) (*domain.DNSRecord, error)

	// Distribution counts records grouped by an allow-listed field
	Distribution(ctx context.Context, field string) ([]domain.FieldCount, error)
}

// ListRecordsInput selects records. Owner wins over Field/Value; both empty lists everything.
type ListRecordsInput struct {
	Owner string
	Field string
	Value string
}

// UpdateRecordInput represents input for updating a DNS record.
// RecordID is the local record replaced when the provider has no matching record set.
type UpdateRecordInput struct {
	domain.DNSRecordInput
	RecordID string `json:"recordId"`
}

// ImportUsecase defines the bulk import use cases
type ImportUsecase interface {
	ImportBatch(ctx context.Context, rows []ImportRow, owner string) (*ImportResult, error)
	ImportFile(ctx context.Context, upload Upload, owner string) (*ImportResult, error)
}

// ImportRow is one raw CSV row. Line is 1-based and counts the header.
type ImportRow struct {
	Line   int    `json:"line"`
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	TTL    string `json:"ttl"`
	Owner  string `json:"user"`
}

// FailedRow is a row that was not imported
type FailedRow struct {
	ImportRow
	Reason string `json:"reason"`
}

// ImportResult partitions the rows of one import
type ImportResult struct {
	Succeeded []domain.DNSRecord `json:"successfulRecords"`
	Failed    []FailedRow        `json:"failedRecords"`
}

// Upload is a file already written to local disk
type Upload struct {
	Path        string
	Filename    string
	ContentType string
}

// AuthUsecase defines user registration and token use cases
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	VerifyToken(token string) (*domain.TokenClaims, error)
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginResult is a signed token and the claims it carries
type LoginResult struct {
	Token  string             `json:"token"`
	Claims domain.TokenClaims `json:"user"`
}
