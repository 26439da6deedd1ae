// Package testutil holds fixtures shared by the package tests: an in-memory database with the real
// schema, an in-memory key/value store and a mailer that records instead of sending.
package testutil

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"TeleClinic/database"
	"TeleClinic/kv"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database and migrates the schema. A single connection keeps
// the in-memory database alive and serializes transactions the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db), "failed to migrate tables")
	return db
}

type memoryItem struct {
	value   string
	expires time.Time // zero = no ttl
}

// MemoryStore is an in-memory kv.Store with TTLs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memoryItem
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryItem), now: time.Now}
}

// Advance moves the store's clock forward so TTLs can be tested without sleeping.
func (s *MemoryStore) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.now()
	s.now = func() time.Time { return base.Add(d) }
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok {
		return "", kv.ErrMissing
	}
	if !item.expires.IsZero() && s.now().After(item.expires) {
		delete(s.data, key)
		return "", kv.ErrMissing
	}
	return item.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.data[key] = memoryItem{value: value, expires: exp}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if ok && !item.expires.IsZero() && s.now().After(item.expires) {
		ok = false
	}
	var n int64
	if ok {
		v, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, err
		}
		n = v
	} else {
		item = memoryItem{}
		if ttl > 0 {
			item.expires = s.now().Add(ttl)
		}
	}
	n++
	item.value = strconv.FormatInt(n, 10)
	s.data[key] = item
	return n, nil
}

// Mail is one message captured by RecordingMailer.
type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// RecordingMailer keeps every message it is asked to send.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []Mail
	Err  error
}

func (m *RecordingMailer) Send(to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Text: textBody, HTML: htmlBody})
	return nil
}

func (m *RecordingMailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}
