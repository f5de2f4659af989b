// internal/cache/store.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-backend/internal/model"
)

// Cache entry kinds. Each kind is an independent bucket under the same
// composite key space.
const (
	KindRepos   = "repos"
	KindCommits = "commits"

	// RepoListBucket is the placeholder repo component for the account-wide
	// repository list, which is cached under a single bucket per owner.
	RepoListBucket = "_"
)

// Key identifies one cached upstream response.
type Key struct {
	Owner    string
	Repo     string
	Kind     string
	ArgsHash string
}

// ArgsHash derives the argument-hash component of a cache key from the call
// parameters. encoding/json marshals map keys in sorted order, which gives a
// canonical serialization: the same logical arguments always produce the same
// hash regardless of how the map was built.
func ArgsHash(args map[string]any) string {
	b, err := json.Marshal(args)
	if err != nil {
		// Only reachable with unmarshalable values, which would be a
		// programming error in a call site.
		panic(fmt.Sprintf("cache: unmarshalable args: %v", err))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// IsFresh reports whether a cache entry with the given expiry can be used
// without revalidation.
func IsFresh(expiresAt time.Time) bool {
	return expiresAt.After(time.Now())
}

// Store persists upstream API responses in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the stored entry for key, or nil when there is none. A row
// whose body is null is treated as a miss: the invariant is that Body always
// holds the most recent successfully retrieved payload.
func (s *Store) Get(ctx context.Context, key Key) (*model.CacheEntry, error) {
	const q = `
		SELECT etag, body, fetched_at, expires_at
		FROM github_api_cache
		WHERE owner = $1 AND repo = $2 AND kind = $3 AND args_hash = $4`

	entry := model.CacheEntry{
		Owner:    key.Owner,
		Repo:     key.Repo,
		Kind:     key.Kind,
		ArgsHash: key.ArgsHash,
	}
	var body []byte
	err := s.pool.QueryRow(ctx, q, key.Owner, key.Repo, key.Kind, key.ArgsHash).
		Scan(&entry.ETag, &body, &entry.FetchedAt, &entry.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	if body == nil {
		return nil, nil
	}
	entry.Body = body
	return &entry, nil
}

// Set upserts the entry for key, always overwriting etag, body and expiry and
// refreshing the fetched-at timestamp. Writes are idempotent last-write-wins;
// concurrent refreshes of the same key are a benign race.
func (s *Store) Set(ctx context.Context, key Key, etag *string, body []byte, expiresAt time.Time) error {
	const q = `
		INSERT INTO github_api_cache (owner, repo, kind, args_hash, etag, body, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), $7)
		ON CONFLICT (owner, repo, kind, args_hash) DO UPDATE
		SET etag = EXCLUDED.etag,
		    body = EXCLUDED.body,
		    fetched_at = now(),
		    expires_at = EXCLUDED.expires_at`

	_, err := s.pool.Exec(ctx, q, key.Owner, key.Repo, key.Kind, key.ArgsHash, etag, body, expiresAt)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// DeleteOwner removes all cache rows for owner across the given kinds,
// forcing the next read to bypass freshness and refetch. It returns the
// number of rows removed.
func (s *Store) DeleteOwner(ctx context.Context, owner string, kinds ...string) (int64, error) {
	const q = `DELETE FROM github_api_cache WHERE owner = $1 AND kind = ANY($2)`

	tag, err := s.pool.Exec(ctx, q, owner, kinds)
	if err != nil {
		return 0, fmt.Errorf("clearing cache for %s: %w", owner, err)
	}
	return tag.RowsAffected(), nil
}
