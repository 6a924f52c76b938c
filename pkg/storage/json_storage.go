package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// jsonData is the on-disk layout of the JSON store
type jsonData struct {
	Records []RecordDocument `json:"dnss"`
	Users   []UserDocument   `json:"users"`
}

// jsonStorage implements Storage using a single JSON file
type jsonStorage struct {
	filePath string
	mu       sync.RWMutex
}

// NewJSONStorage creates a new JSON storage rooted in dataDir
func NewJSONStorage(dataDir string) Storage {
	return &jsonStorage{
		filePath: filepath.Join(dataDir, "dns.json"),
	}
}

// load reads the data file. Callers hold the lock.
func (s *jsonStorage) load() (*jsonData, error) {
	// Check if file exists
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return &jsonData{
			Records: []RecordDocument{},
			Users:   []UserDocument{},
		}, nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var d jsonData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	return &d, nil
}

// save writes the data file. Callers hold the write lock.
func (s *jsonStorage) save(d *jsonData) error {
	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}

// Find returns all records matching the query
func (s *jsonStorage) Find(ctx context.Context, q RecordQuery) ([]RecordDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	result := make([]RecordDocument, 0)
	for _, doc := range d.Records {
		ok, err := q.match(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, doc)
		}
	}
	return result, nil
}

// FindOne returns the first record matching the query
func (s *jsonStorage) FindOne(ctx context.Context, q RecordQuery) (*RecordDocument, error) {
	docs, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

// FindByID returns a record by its id
func (s *jsonStorage) FindByID(ctx context.Context, id string) (*RecordDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, doc := range d.Records {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

// Insert stores a new record and assigns its id
func (s *jsonStorage) Insert(ctx context.Context, doc RecordDocument) (*RecordDocument, error) {
	docs, err := s.InsertMany(ctx, []RecordDocument{doc})
	if err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// InsertMany stores all records in one write
func (s *jsonStorage) InsertMany(ctx context.Context, docs []RecordDocument) ([]RecordDocument, error) {
	if len(docs) == 0 {
		return []RecordDocument{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	inserted := make([]RecordDocument, len(docs))
	for i, doc := range docs {
		doc.ID = uuid.NewString()
		inserted[i] = doc
	}
	d.Records = append(d.Records, inserted...)

	if err := s.save(d); err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateByID applies the given fields to a record
func (s *jsonStorage) UpdateByID(ctx context.Context, id string, set map[string]any) (*RecordDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range d.Records {
		if d.Records[i].ID != id {
			continue
		}
		for field, value := range set {
			if err := setField(&d.Records[i], field, value); err != nil {
				return nil, err
			}
		}
		if err := s.save(d); err != nil {
			return nil, err
		}
		updated := d.Records[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// DeleteByID removes a record and reports whether it existed
func (s *jsonStorage) DeleteByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return false, err
	}

	found := false
	newRecords := make([]RecordDocument, 0, len(d.Records))
	for _, doc := range d.Records {
		if doc.ID == id {
			found = true
			continue
		}
		newRecords = append(newRecords, doc)
	}

	if !found {
		return false, nil
	}

	d.Records = newRecords
	return true, s.save(d)
}

// AggregateCount groups all records by field and counts each group
func (s *jsonStorage) AggregateCount(ctx context.Context, field string) ([]GroupCount, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}

	docs, err := s.Find(ctx, RecordQuery{})
	if err != nil {
		return nil, err
	}

	counts := make(map[any]int)
	order := make([]any, 0)
	for _, doc := range docs {
		key, _ := fieldValue(doc, field)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	result := make([]GroupCount, len(order))
	for i, key := range order {
		result[i] = GroupCount{Key: key, Count: counts[key]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result, nil
}

// InsertUser stores a new user
func (s *jsonStorage) InsertUser(ctx context.Context, doc UserDocument) (*UserDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, u := range d.Users {
		if strings.EqualFold(u.Email, doc.Email) {
			return nil, ErrDuplicateKey
		}
	}

	doc.ID = uuid.NewString()
	d.Users = append(d.Users, doc)
	if err := s.save(d); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindUserByEmail returns a user by email
func (s *jsonStorage) FindUserByEmail(ctx context.Context, email string) (*UserDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, u := range d.Users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsers returns all users
func (s *jsonStorage) ListUsers(ctx context.Context) ([]UserDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.Users, nil
}

// Close is a no-op for the file store
func (s *jsonStorage) Close(ctx context.Context) error {
	return nil
}

// match reports whether doc satisfies every condition of the query
func (q RecordQuery) match(doc RecordDocument) (bool, error) {
	if q.ExcludeID != "" && doc.ID == q.ExcludeID {
		return false, nil
	}
	if q.ApexOf != "" && doc.Domain != q.ApexOf && !strings.HasSuffix(doc.Domain, "."+q.ApexOf) {
		return false, nil
	}
	for field, want := range q.Equals {
		got, err := fieldValue(doc, field)
		if err != nil {
			return false, err
		}
		if got != want {
			return false, nil
		}
	}
	return true, nil
}

func fieldValue(doc RecordDocument, field string) (any, error) {
	switch field {
	case "_id":
		return doc.ID, nil
	case "domain":
		return doc.Domain, nil
	case "type":
		return doc.Type, nil
	case "value":
		return doc.Value, nil
	case "ttl":
		return doc.TTL, nil
	case "owner":
		return doc.Owner, nil
	}
	return nil, ErrInvalidField
}

func setField(doc *RecordDocument, field string, value any) error {
	switch field {
	case "domain", "type", "value", "owner":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string", ErrInvalidField, field)
		}
		switch field {
		case "domain":
			doc.Domain = v
		case "type":
			doc.Type = v
		case "value":
			doc.Value = v
		case "owner":
			doc.Owner = v
		}
	case "ttl":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("%w: ttl expects an int", ErrInvalidField)
		}
		doc.TTL = v
	default:
		return ErrInvalidField
	}
	return nil
}
