package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names match what a mongoose deployment of the same models
// would use, so both servers can share a database.
const (
	SchemaCollection   = "storedschemas"
	EndpointCollection = "endpoints"
)

type schemaDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	MongooseSchema string             `bson:"mongooseSchema"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d schemaDoc) toSchema() *Schema {
	return &Schema{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		MongooseSchema: d.MongooseSchema,
		CreatedAt:      d.CreatedAt,
	}
}

type endpointDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SchemaName   string             `bson:"schemaName"`
	Name         string             `bson:"name"`
	Method       string             `bson:"method"`
	Path         string             `bson:"path"`
	Description  string             `bson:"description"`
	IsCustom     bool               `bson:"isCustom"`
	Enabled      bool               `bson:"enabled"`
	AuthRequired bool               `bson:"authRequired"`
	Role         string             `bson:"role"`
	Position     int                `bson:"position"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d endpointDoc) toEndpoint() *Endpoint {
	return &Endpoint{
		ID:           d.ID.Hex(),
		SchemaName:   d.SchemaName,
		Name:         d.Name,
		Method:       d.Method,
		Path:         d.Path,
		Description:  d.Description,
		IsCustom:     d.IsCustom,
		Enabled:      d.Enabled,
		AuthRequired: d.AuthRequired,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

func newEndpointDoc(schemaName string, e Endpoint, position int, created time.Time) endpointDoc {
	return endpointDoc{
		SchemaName:   schemaName,
		Name:         e.Name,
		Method:       e.Method,
		Path:         e.Path,
		Description:  e.Description,
		IsCustom:     e.IsCustom,
		Enabled:      e.Enabled,
		AuthRequired: e.AuthRequired,
		Role:         e.Role,
		Position:     position,
		CreatedAt:    created,
	}
}

// patchSet converts a patch into a $set document.
func patchSet(p EndpointPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Method != nil {
		set["method"] = *p.Method
	}
	if p.Path != nil {
		set["path"] = *p.Path
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.IsCustom != nil {
		set["isCustom"] = *p.IsCustom
	}
	if p.Enabled != nil {
		set["enabled"] = *p.Enabled
	}
	if p.AuthRequired != nil {
		set["authRequired"] = *p.AuthRequired
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	return set
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*MongoStore)(nil)

// MongoStore is a Store backed by MongoDB.
type MongoStore struct {
	client    *mongo.Client
	schemas   *mongo.Collection
	endpoints *mongo.Collection
	now       func() time.Time
}

// OpenMongo connects to uri, verifies the connection and ensures indexes on
// database dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:    client,
		schemas:   db.Collection(SchemaCollection),
		endpoints: db.Collection(EndpointCollection),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}

	_, err = s.schemas.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err == nil {
		_, err = s.endpoints.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "schemaName", Value: 1}, {Key: "position", Value: 1}},
		})
	}
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) SaveSchema(ctx context.Context, name, mongooseSchema string) (*Schema, error) {
	doc := schemaDoc{Name: name, MongooseSchema: mongooseSchema, CreatedAt: s.now()}
	res, err := s.schemas.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert schema: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toSchema(), nil
}

func (s *MongoStore) ListSchemas(ctx context.Context) ([]*Schema, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.schemas.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	var docs []schemaDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	out := make([]*Schema, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchema())
	}
	return out, nil
}

func (s *MongoStore) GetSchema(ctx context.Context, id string) (*Schema, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc schemaDoc
	if err := s.schemas.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoErr(err)
	}
	return doc.toSchema(), nil
}

func (s *MongoStore) UpdateSchema(ctx context.Context, id, name, mongooseSchema string) (*Schema, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc schemaDoc
	err = s.schemas.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": name, "mongooseSchema": mongooseSchema}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return doc.toSchema(), nil
}

func (s *MongoStore) DeleteSchema(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.schemas.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceEndpoints is not transactional: standalone servers have no
// multi-document transactions.
func (s *MongoStore) ReplaceEndpoints(ctx context.Context, schemaName string, endpoints []Endpoint) (int, error) {
	if _, err := s.endpoints.DeleteMany(ctx, bson.M{"schemaName": schemaName}); err != nil {
		return 0, fmt.Errorf("replace endpoints: %w", err)
	}
	if len(endpoints) == 0 {
		return 0, nil
	}
	created := s.now()
	docs := make([]any, 0, len(endpoints))
	for i, e := range endpoints {
		docs = append(docs, newEndpointDoc(schemaName, e, i, created))
	}
	res, err := s.endpoints.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert endpoints: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (s *MongoStore) ListEndpoints(ctx context.Context, schemaName string) ([]*Endpoint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.endpoints.Find(ctx, bson.M{"schemaName": schemaName}, opts)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	var docs []endpointDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	out := make([]*Endpoint, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEndpoint())
	}
	return out, nil
}

func (s *MongoStore) GetEndpoint(ctx context.Context, id string) (*Endpoint, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc endpointDoc
	if err := s.endpoints.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoErr(err)
	}
	return doc.toEndpoint(), nil
}

func (s *MongoStore) UpdateEndpoint(ctx context.Context, id string, patch EndpointPatch) (*Endpoint, error) {
	if patch.Empty() {
		return s.GetEndpoint(ctx, id)
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOneAndUpdateEndpoint(ctx, oid, bson.M{"$set": patchSet(patch)})
}

// ToggleEndpoint flips enabled server-side with an aggregation pipeline
// update.
func (s *MongoStore) ToggleEndpoint(ctx context.Context, id string) (*Endpoint, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"enabled": bson.M{"$not": "$enabled"}}}},
	}
	return s.findOneAndUpdateEndpoint(ctx, oid, pipeline)
}

func (s *MongoStore) findOneAndUpdateEndpoint(ctx context.Context, oid primitive.ObjectID, update any) (*Endpoint, error) {
	var doc endpointDoc
	err := s.endpoints.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return doc.toEndpoint(), nil
}

func (s *MongoStore) DeleteEndpoint(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.endpoints.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteEndpointsForSchema(ctx context.Context, schemaName string) (int64, error) {
	res, err := s.endpoints.DeleteMany(ctx, bson.M{"schemaName": schemaName})
	if err != nil {
		return 0, fmt.Errorf("delete endpoints: %w", err)
	}
	return res.DeletedCount, nil
}
