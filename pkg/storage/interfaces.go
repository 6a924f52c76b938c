package storage

import (
	"context"
	"errors"
)

// Storage errors
var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidField = errors.New("invalid field")
)

// RecordDocument is the persisted shape of a DNS record
type RecordDocument struct {
	ID     string `json:"_id"`
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	TTL    int    `json:"ttl"`
	Owner  string `json:"owner"`
}

// UserDocument is the persisted shape of a user
type UserDocument struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RecordQuery selects record documents. All set conditions must hold.
type RecordQuery struct {
	// Equals maps document field names to exact values
	Equals map[string]any
	// ApexOf matches the apex domain itself and any name ending in "."+ApexOf
	ApexOf string
	// ExcludeID drops one document from the result
	ExcludeID string
}

// GroupCount is one bucket of AggregateCount
type GroupCount struct {
	Key   any `json:"_id"`
	Count int `json:"count"`
}

// RecordStorage defines the document operations on DNS records
type RecordStorage interface {
	Find(ctx context.Context, q RecordQuery) ([]RecordDocument, error)
	// FindOne returns ErrNotFound when nothing matches
	FindOne(ctx context.Context, q RecordQuery) (*RecordDocument, error)
	FindByID(ctx context.Context, id string) (*RecordDocument, error)
	Insert(ctx context.Context, doc RecordDocument) (*RecordDocument, error)
	InsertMany(ctx context.Context, docs []RecordDocument) ([]RecordDocument, error)
	// UpdateByID applies field=value pairs and returns the updated document
	UpdateByID(ctx context.Context, id string, set map[string]any) (*RecordDocument, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	AggregateCount(ctx context.Context, field string) ([]GroupCount, error)
}

// UserStorage defines the document operations on users
type UserStorage interface {
	// InsertUser returns ErrDuplicateKey when the email is taken
	InsertUser(ctx context.Context, doc UserDocument) (*UserDocument, error)
	FindUserByEmail(ctx context.Context, email string) (*UserDocument, error)
	ListUsers(ctx context.Context) ([]UserDocument, error)
}

// Storage is a document store backend
type Storage interface {
	RecordStorage
	UserStorage
	Close(ctx context.Context) error
}

// recordFields are the queryable fields of RecordDocument
var recordFields = map[string]bool{
	"_id":    true,
	"domain": true,
	"type":   true,
	"value":  true,
	"ttl":    true,
	"owner":  true,
}

func checkField(field string) error {
	if !recordFields[field] {
		return ErrInvalidField
	}
	return nil
}
