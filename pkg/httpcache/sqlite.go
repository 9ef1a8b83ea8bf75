// Package httpcache stores successful GET responses in a SQLite file and
// serves them back until they expire.
package httpcache

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	_ "modernc.org/sqlite"
)

// XFromCache is set on responses served from the store.
const XFromCache = "X-From-Cache"

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	response   BLOB NOT NULL,
	stored_at  INTEGER NOT NULL
);`

// Transport is an http.RoundTripper that answers from the cache when a fresh
// entry exists and records 200 responses otherwise.
type Transport struct {
	db     *sql.DB
	next   http.RoundTripper
	expiry time.Duration
	now    func() time.Time
}

// Open creates (or reuses) the cache file at path. next defaults to
// http.DefaultTransport.
func Open(path string, expiry time.Duration, next http.RoundTripper) (*Transport, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return &Transport{
		db:     db,
		next:   next,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

func (t *Transport) Close() error {
	return t.db.Close()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.expiry <= 0 {
		return t.next.RoundTrip(req)
	}

	key := cacheKey(req)

	if resp, ok := t.lookup(req, key); ok {
		return resp, nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	// a failed write leaves the response usable, it just won't be cached
	_ = t.store(key, resp)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (t *Transport) lookup(req *http.Request, key string) (*http.Response, bool) {
	var (
		raw      []byte
		storedAt int64
	)
	err := t.db.QueryRowContext(req.Context(),
		`SELECT response, stored_at FROM responses WHERE key = ?`, key,
	).Scan(&raw, &storedAt)
	if err != nil {
		return nil, false
	}

	if t.now().Sub(time.Unix(0, storedAt)) >= t.expiry {
		_, _ = t.db.ExecContext(req.Context(), `DELETE FROM responses WHERE key = ?`, key)
		return nil, false
	}

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), req)
	if err != nil {
		return nil, false
	}
	resp.Header.Set(XFromCache, "1")

	return resp, true
}

func (t *Transport) store(key string, resp *http.Response) error {
	raw, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	_, err = t.db.Exec(
		`INSERT INTO responses (key, response, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET response = excluded.response, stored_at = excluded.stored_at`,
		key, raw, t.now().UnixNano(),
	)
	return err
}

// Purge drops every expired entry and returns how many were removed.
func (t *Transport) Purge() (int64, error) {
	res, err := t.db.Exec(`DELETE FROM responses WHERE stored_at <= ?`, t.now().Add(-t.expiry).UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Len reports the number of stored entries, expired ones included.
func (t *Transport) Len() (int, error) {
	var n int
	if err := t.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}
