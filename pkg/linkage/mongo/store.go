// Package mongo implements a linkage store on MongoDB.
//
// Each raw edge is one document {source, target, kind, seq} in the edges
// collection, with a unique index on (source, target). seq comes from a
// counter document and fixes the store order of a source's linkages; a
// second counter tracks the store revision.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a linkage store backed by a MongoDB collection.
type Store struct {
	client   *mongo.Client
	edges    *mongo.Collection
	counters *mongo.Collection
}

type edgeDoc struct {
	Source string `bson:"source"`
	Target string `bson:"target"`
	Kind   int    `bson:"kind"`
	Seq    int64  `bson:"seq"`
}

type counterDoc struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

const (
	counterSeq = "seq"
	counterRev = "revision"
)

// Open connects to MongoDB, verifies the connection and ensures indexes.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New("mongo store needs uri, database and collection")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		edges:    db.Collection(cfg.Collection),
		counters: db.Collection(cfg.Collection + "_counters"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.edges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "target", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "source", Value: 1}, {Key: "seq", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Driver names the backend in logs and metrics.
func (s *Store) Driver() string { return "mongo" }

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Linkages returns the outgoing edges of sha in insertion order.
func (s *Store) Linkages(ctx context.Context, sha linkage.Sha) ([]linkage.Linkage, error) {
	docs, err := s.find(ctx, bson.M{"source": string(sha)}, bson.D{{Key: "seq", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("read linkages of %s: %w", sha.Short(), err)
	}
	out := make([]linkage.Linkage, len(docs))
	for i, d := range docs {
		out[i] = linkage.Linkage{Target: linkage.Sha(d.Target), Kind: linkage.Kind(d.Kind)}
	}
	return out, nil
}

// Put records e. Re-putting an existing pair updates its kind and keeps its
// position.
func (s *Store) Put(ctx context.Context, e linkage.Edge) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("put %s -> %s: unknown kind %d", e.Source.Short(), e.Target.Short(), e.Kind)
	}
	filter := bson.M{"source": string(e.Source), "target": string(e.Target)}
	update := bson.M{"$set": bson.M{"kind": int(e.Kind)}}

	res, err := s.edges.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("put %s -> %s: %w", e.Source.Short(), e.Target.Short(), err)
	}
	if res.MatchedCount == 0 {
		seq, err := s.next(ctx, counterSeq)
		if err != nil {
			return err
		}
		doc := edgeDoc{Source: string(e.Source), Target: string(e.Target), Kind: int(e.Kind), Seq: seq}
		_, err = s.edges.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			// Another writer inserted the pair first; keep its seq.
			_, err = s.edges.UpdateOne(ctx, filter, update)
		}
		if err != nil {
			return fmt.Errorf("put %s -> %s: %w", e.Source.Short(), e.Target.Short(), err)
		}
	}

	_, err = s.next(ctx, counterRev)
	return err
}

// Edges returns every edge, grouped by source in sha order.
func (s *Store) Edges(ctx context.Context) ([]linkage.Edge, error) {
	docs, err := s.find(ctx, bson.M{}, bson.D{{Key: "source", Value: 1}, {Key: "seq", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	out := make([]linkage.Edge, len(docs))
	for i, d := range docs {
		out[i] = linkage.Edge{Source: linkage.Sha(d.Source), Target: linkage.Sha(d.Target), Kind: linkage.Kind(d.Kind)}
	}
	return out, nil
}

// Revision returns the number of edge writes the collection has accepted.
func (s *Store) Revision(ctx context.Context) (string, error) {
	var c counterDoc
	err := s.counters.FindOne(ctx, bson.M{"_id": counterRev}).Decode(&c)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("read revision: %w", err)
	}
	return "mongo:" + strconv.FormatInt(c.Value, 10), nil
}

func (s *Store) find(ctx context.Context, filter any, sort bson.D) ([]edgeDoc, error) {
	cur, err := s.edges.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []edgeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// next atomically increments the named counter and returns its new value.
func (s *Store) next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counterDoc
	err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"value": int64(1)}}, opts).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("bump %s counter: %w", name, err)
	}
	return c.Value, nil
}

var (
	_ linkage.ReadWriter = (*Store)(nil)
	_ linkage.Revisioner = (*Store)(nil)
	_ linkage.Dumper     = (*Store)(nil)
)
