package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

const sessionCollection = "portal_sessions"

// SessionStorage keeps one document per browser session. A TTL index on
// expires_at lets MongoDB reap abandoned sessions.
type SessionStorage struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

func NewSessionStorage(db *mongo.Database) *SessionStorage {
	return &SessionStorage{coll: db.Collection(sessionCollection), now: time.Now}
}

type mongoSession struct {
	ID          string    `bson:"_id"`
	CurrentUser string    `bson:"current_user,omitempty"`
	AccessToken string    `bson:"access_token,omitempty"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

// EnsureIndexes creates the expiry index. Safe to call on every start.
func (s *SessionStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

func (s *SessionStorage) Load(ctx context.Context, sessionID string) (*ports.SessionRecord, error) {
	var doc mongoSession
	if err := s.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	// The TTL monitor runs about once a minute; do not resurrect expired documents.
	if !doc.ExpiresAt.IsZero() && !s.now().Before(doc.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	if doc.CurrentUser == "" && doc.AccessToken == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &ports.SessionRecord{CurrentUser: []byte(doc.CurrentUser), AccessToken: doc.AccessToken}, nil
}

// Save replaces the whole document so both fields always change together.
func (s *SessionStorage) Save(ctx context.Context, sessionID string, rec ports.SessionRecord, ttl time.Duration) error {
	doc := mongoSession{
		ID:          sessionID,
		CurrentUser: string(rec.CurrentUser),
		AccessToken: rec.AccessToken,
		ExpiresAt:   s.now().Add(ttl).UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
