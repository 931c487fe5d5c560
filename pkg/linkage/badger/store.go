// Package badger implements a linkage store on BadgerDB.
//
// Keys are laid out so a prefix scan returns a source's linkages in store
// order:
//
//	edge/<source>/<seq>    → kind byte + target sha
//	pair/<source>/<target> → seq of the edge key
//	meta/seq               → last assigned seq
//	meta/rev               → write counter
//
// seq is a zero-padded hex counter shared by all sources. Re-putting a pair
// rewrites the existing edge key, so the pair keeps its position.
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	lgerrors "github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Config holds configuration for a BadgerDB-backed store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *log.Logger
}

// Store is a linkage store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

var (
	keySeq = []byte("meta/seq")
	keyRev = []byte("meta/rev")
)

// conflictRetries bounds how often a write is retried after a transaction conflict.
const conflictRetries = 5

// badgerLogger adapts a charmbracelet logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.logger.Debugf(format, args...) }

// Open opens a store at cfg.Path, or in memory if cfg.InMemory is set.
// The directory is created if it doesn't exist.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.WithPrefix("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Driver names the backend in logs and metrics.
func (s *Store) Driver() string { return "badger" }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Linkages returns the outgoing edges of sha in insertion order.
func (s *Store) Linkages(ctx context.Context, sha linkage.Sha) ([]linkage.Linkage, error) {
	var out []linkage.Linkage
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(ctx, txn, edgePrefix(sha), func(_, val []byte) error {
			l, err := decodeLinkage(val)
			if err != nil {
				return err
			}
			out = append(out, l)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read linkages of %s: %w", sha.Short(), err)
	}
	return out, nil
}

// Put records e. Re-putting an existing pair updates its kind and keeps its
// position.
func (s *Store) Put(ctx context.Context, e linkage.Edge) error {
	return s.PutBatch(ctx, []linkage.Edge{e})
}

// PutBatch records edges in one transaction. Either all edges are stored or
// none are. Both endpoints must be well-formed shas, since they are spliced
// into key prefixes.
func (s *Store) PutBatch(ctx context.Context, edges []linkage.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	for _, e := range edges {
		if err := lgerrors.ValidateSha(string(e.Source)); err != nil {
			return fmt.Errorf("put edge source: %w", err)
		}
		if err := lgerrors.ValidateSha(string(e.Target)); err != nil {
			return fmt.Errorf("put edge target: %w", err)
		}
		if !e.Kind.Valid() {
			return fmt.Errorf("put %s -> %s: unknown kind %d", e.Source.Short(), e.Target.Short(), e.Kind)
		}
	}

	var err error
	for range conflictRetries {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return putEdges(txn, edges)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("put edges: %w", err)
	}
	return nil
}

// Edges returns every edge, grouped by source in sha order.
func (s *Store) Edges(ctx context.Context) ([]linkage.Edge, error) {
	var out []linkage.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(ctx, txn, []byte("edge/"), func(key, val []byte) error {
			src, _, ok := splitEdgeKey(key)
			if !ok {
				return fmt.Errorf("malformed edge key %q", key)
			}
			l, err := decodeLinkage(val)
			if err != nil {
				return err
			}
			out = append(out, linkage.Edge{Source: src, Target: l.Target, Kind: l.Kind})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return out, nil
}

// Revision returns the number of edge writes the database has accepted.
func (s *Store) Revision(ctx context.Context) (string, error) {
	var rev uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rev, err = getCounter(txn, keyRev)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("read revision: %w", err)
	}
	return "badger:" + strconv.FormatUint(rev, 10), nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func putEdges(txn *badger.Txn, edges []linkage.Edge) error {
	seq, err := getCounter(txn, keySeq)
	if err != nil {
		return err
	}
	rev, err := getCounter(txn, keyRev)
	if err != nil {
		return err
	}

	for _, e := range edges {
		pk := pairKey(e.Source, e.Target)
		var at uint64
		item, err := txn.Get(pk)
		switch {
		case err == nil:
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			at = binary.BigEndian.Uint64(v)
		case errors.Is(err, badger.ErrKeyNotFound):
			seq++
			at = seq
			if err := txn.Set(pk, encodeCounter(at)); err != nil {
				return err
			}
		default:
			return err
		}

		if err := txn.Set(edgeKey(e.Source, at), encodeLinkage(e.Linkage())); err != nil {
			return err
		}
		rev++
	}

	if err := txn.Set(keySeq, encodeCounter(seq)); err != nil {
		return err
	}
	return txn.Set(keyRev, encodeCounter(rev))
}

func scan(ctx context.Context, txn *badger.Txn, prefix []byte, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		err := item.Value(func(val []byte) error {
			return fn(item.Key(), val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func getCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("malformed counter %q", key)
		}
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

func encodeCounter(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

func edgePrefix(src linkage.Sha) []byte {
	return []byte("edge/" + string(src) + "/")
}

func edgeKey(src linkage.Sha, seq uint64) []byte {
	return fmt.Appendf(edgePrefix(src), "%016x", seq)
}

func pairKey(src, tgt linkage.Sha) []byte {
	return []byte("pair/" + string(src) + "/" + string(tgt))
}

// splitEdgeKey parses "edge/<source>/<seq>".
func splitEdgeKey(key []byte) (linkage.Sha, uint64, bool) {
	const head, seqLen = len("edge/"), 16
	if len(key) < head+seqLen+2 {
		return "", 0, false
	}
	src := key[head : len(key)-seqLen-1]
	seq, err := strconv.ParseUint(string(key[len(key)-seqLen:]), 16, 64)
	if err != nil {
		return "", 0, false
	}
	return linkage.Sha(src), seq, true
}

func encodeLinkage(l linkage.Linkage) []byte {
	return append([]byte{byte(l.Kind)}, string(l.Target)...)
}

func decodeLinkage(val []byte) (linkage.Linkage, error) {
	if len(val) < 2 {
		return linkage.Linkage{}, fmt.Errorf("malformed edge value %q", val)
	}
	return linkage.Linkage{Kind: linkage.Kind(val[0]), Target: linkage.Sha(val[1:])}, nil
}

var (
	_ linkage.ReadWriter  = (*Store)(nil)
	_ linkage.BatchWriter = (*Store)(nil)
	_ linkage.Revisioner  = (*Store)(nil)
	_ linkage.Dumper      = (*Store)(nil)
)
