package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	RecordCollection = "dnss"
	UserCollection   = "users"
)

type mongoRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Domain string             `bson:"domain"`
	Type   string             `bson:"type"`
	Value  string             `bson:"value"`
	TTL    int                `bson:"ttl"`
	Owner  string             `bson:"user"`
}

// documentKeys maps record fields whose document key differs from the field name
var documentKeys = map[string]string{
	"owner": "user",
}

func documentKey(field string) string {
	if key, ok := documentKeys[field]; ok {
		return key
	}
	return field
}

type mongoUser struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	FullName string             `bson:"fullName"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

// mongoStorage implements Storage on a MongoDB database
type mongoStorage struct {
	client  *mongo.Client
	records *mongo.Collection
	users   *mongo.Collection
}

// NewMongoStorage connects to uri and prepares the record and user collections
func NewMongoStorage(ctx context.Context, uri, database string) (Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &mongoStorage{
		client:  client,
		records: db.Collection(RecordCollection),
		users:   db.Collection(UserCollection),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create user email index: %w", err)
	}

	return s, nil
}

// Find returns all records matching the query
func (s *mongoStorage) Find(ctx context.Context, q RecordQuery) ([]RecordDocument, error) {
	filter, err := recordFilter(q)
	if err != nil {
		return nil, err
	}

	cur, err := s.records.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find records: %w", err)
	}

	var rows []mongoRecord
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	result := make([]RecordDocument, len(rows))
	for i, r := range rows {
		result[i] = r.document()
	}
	return result, nil
}

// FindOne returns the first record matching the query
func (s *mongoStorage) FindOne(ctx context.Context, q RecordQuery) (*RecordDocument, error) {
	filter, err := recordFilter(q)
	if err != nil {
		return nil, err
	}

	var row mongoRecord
	if err := s.records.FindOne(ctx, filter).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}

	doc := row.document()
	return &doc, nil
}

// FindByID returns a record by its id
func (s *mongoStorage) FindByID(ctx context.Context, id string) (*RecordDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var row mongoRecord
	if err := s.records.FindOne(ctx, bson.M{"_id": oid}).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record %s: %w", id, err)
	}

	doc := row.document()
	return &doc, nil
}

// Insert stores a new record
func (s *mongoStorage) Insert(ctx context.Context, doc RecordDocument) (*RecordDocument, error) {
	row := newMongoRecord(doc)
	if _, err := s.records.InsertOne(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	inserted := row.document()
	return &inserted, nil
}

// InsertMany stores all records in a single batch
func (s *mongoStorage) InsertMany(ctx context.Context, docs []RecordDocument) ([]RecordDocument, error) {
	if len(docs) == 0 {
		return []RecordDocument{}, nil
	}

	rows := make([]interface{}, len(docs))
	inserted := make([]RecordDocument, len(docs))
	for i, doc := range docs {
		row := newMongoRecord(doc)
		rows[i] = row
		inserted[i] = row.document()
	}

	if _, err := s.records.InsertMany(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to insert records: %w", err)
	}
	return inserted, nil
}

// UpdateByID sets the given fields and returns the updated record
func (s *mongoStorage) UpdateByID(ctx context.Context, id string, set map[string]any) (*RecordDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{}
	for field, value := range set {
		if err := checkField(field); err != nil || field == "_id" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, field)
		}
		update[documentKey(field)] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var row mongoRecord
	err = s.records.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update}, opts).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update record %s: %w", id, err)
	}

	doc := row.document()
	return &doc, nil
}

// DeleteByID removes a record and reports whether it existed
func (s *mongoStorage) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.records.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

// AggregateCount groups all records by field and counts each group
func (s *mongoStorage) AggregateCount(ctx context.Context, field string) ([]GroupCount, error) {
	pipeline, err := groupCountPipeline(field)
	if err != nil {
		return nil, err
	}

	cur, err := s.records.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate records by %s: %w", field, err)
	}

	var rows []struct {
		Key   any `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	result := make([]GroupCount, len(rows))
	for i, r := range rows {
		key := r.Key
		if oid, ok := key.(primitive.ObjectID); ok {
			key = oid.Hex()
		}
		result[i] = GroupCount{Key: key, Count: r.Count}
	}
	return result, nil
}

// InsertUser stores a new user
func (s *mongoStorage) InsertUser(ctx context.Context, doc UserDocument) (*UserDocument, error) {
	row := mongoUser{
		ID:       primitive.NewObjectID(),
		FullName: doc.FullName,
		Email:    doc.Email,
		Password: doc.Password,
	}
	if _, err := s.users.InsertOne(ctx, row); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	doc.ID = row.ID.Hex()
	return &doc, nil
}

// FindUserByEmail returns a user by email
func (s *mongoStorage) FindUserByEmail(ctx context.Context, email string) (*UserDocument, error) {
	var row mongoUser
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	doc := row.document()
	return &doc, nil
}

// ListUsers returns all users
func (s *mongoStorage) ListUsers(ctx context.Context) ([]UserDocument, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var rows []mongoUser
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	result := make([]UserDocument, len(rows))
	for i, r := range rows {
		result[i] = r.document()
	}
	return result, nil
}

// Close disconnects the client
func (s *mongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// recordFilter translates a RecordQuery into a mongo filter document
func recordFilter(q RecordQuery) (bson.M, error) {
	filter := bson.M{}
	for field, value := range q.Equals {
		if err := checkField(field); err != nil {
			return nil, fmt.Errorf("%w: %s", err, field)
		}
		if field == "_id" {
			oid, err := primitive.ObjectIDFromHex(fmt.Sprint(value))
			if err != nil {
				return nil, ErrNotFound
			}
			value = oid
		}
		filter[documentKey(field)] = value
	}

	if q.ApexOf != "" {
		pattern := `^(.*\.)?` + regexp.QuoteMeta(q.ApexOf) + `$`
		if existing, ok := filter["domain"]; ok {
			filter["$and"] = bson.A{
				bson.M{"domain": existing},
				bson.M{"domain": primitive.Regex{Pattern: pattern, Options: "i"}},
			}
			delete(filter, "domain")
		} else {
			filter["domain"] = primitive.Regex{Pattern: pattern, Options: "i"}
		}
	}

	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	return filter, nil
}

// groupCountPipeline builds a $group stage counting records per value of field
func groupCountPipeline(field string) (mongo.Pipeline, error) {
	if err := checkField(field); err != nil {
		return nil, fmt.Errorf("%w: %s", err, field)
	}

	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + documentKey(field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}, nil
}

func newMongoRecord(doc RecordDocument) mongoRecord {
	return mongoRecord{
		ID:     primitive.NewObjectID(),
		Domain: doc.Domain,
		Type:   doc.Type,
		Value:  doc.Value,
		TTL:    doc.TTL,
		Owner:  doc.Owner,
	}
}

func (r mongoRecord) document() RecordDocument {
	return RecordDocument{
		ID:     r.ID.Hex(),
		Domain: r.Domain,
		Type:   r.Type,
		Value:  r.Value,
		TTL:    r.TTL,
		Owner:  r.Owner,
	}
}

func (u mongoUser) document() UserDocument {
	return UserDocument{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Password: u.Password,
	}
}
