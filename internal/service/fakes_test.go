package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yoyda/auth-service/internal/mail"
	"github.com/yoyda/auth-service/internal/model"
)

// In-memory repositories backing the service tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*model.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) GetByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.GoogleID == googleID {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*model.AccessToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{nextID: 1, tokens: make(map[uint]*model.AccessToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *model.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	token.CreatedAt = time.Now()
	r.nextID++
	r.tokens[token.ID] = token
	return nil
}

func (r *memTokenRepo) GetByID(_ context.Context, id uint) (*model.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[id]; ok {
		return token, nil
	}
	return nil, ErrNotFound
}

func (r *memTokenRepo) GetLatestByUser(_ context.Context, userID uint) (*model.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.AccessToken
	for _, token := range r.tokens {
		if token.UserID != userID {
			continue
		}
		if latest == nil || token.ID > latest.ID {
			latest = token
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (r *memTokenRepo) UpdateExpiry(_ context.Context, id uint, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[id]; ok {
		token.ExpiresAt = expiresAt
	}
	return nil
}

func (r *memTokenRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	order    int
	sessions map[string]*model.Session
	inserted map[string]int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: make(map[string]*model.Session),
		inserted: make(map[string]int),
	}
}

func (r *memSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	r.inserted[session.ID] = r.order
	r.order++
	return nil
}

func (r *memSessionRepo) ListByUser(_ context.Context, userID uint) ([]model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Session
	for _, session := range r.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastActivity != out[j].LastActivity {
			return out[i].LastActivity > out[j].LastActivity
		}
		return r.inserted[out[i].ID] > r.inserted[out[j].ID]
	})
	return out, nil
}

func (r *memSessionRepo) DeleteByTokenID(_ context.Context, tokenID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.TokenID == tokenID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteByID(_ context.Context, id string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok && session.UserID == userID {
		delete(r.sessions, id)
	}
	return nil
}

type memVerificationRepo struct {
	mu          sync.Mutex
	nextID      uint
	emailTokens map[uint]*model.EmailVerificationToken
	resets      map[string]*model.PasswordResetToken
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{
		nextID:      1,
		emailTokens: make(map[uint]*model.EmailVerificationToken),
		resets:      make(map[string]*model.PasswordResetToken),
	}
}

func (r *memVerificationRepo) CreateEmailToken(_ context.Context, token *model.EmailVerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	token.CreatedAt = time.Now()
	r.nextID++
	r.emailTokens[token.ID] = token
	return nil
}

func (r *memVerificationRepo) GetEmailTokenByHash(_ context.Context, hash string) (*model.EmailVerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.emailTokens {
		if token.TokenHash == hash {
			return token, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memVerificationRepo) DeleteEmailTokensByUser(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.emailTokens {
		if token.UserID == userID {
			delete(r.emailTokens, id)
		}
	}
	return nil
}

func (r *memVerificationRepo) UpsertPasswordReset(_ context.Context, reset *model.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[reset.Email] = reset
	return nil
}

func (r *memVerificationRepo) GetPasswordResetByEmail(_ context.Context, email string) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reset, ok := r.resets[email]; ok {
		return reset, nil
	}
	return nil, ErrNotFound
}

func (r *memVerificationRepo) DeletePasswordReset(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resets, email)
	return nil
}

// fakeMailer captures enqueued messages in order.
type fakeMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     error
}

func (m *fakeMailer) Enqueue(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *fakeMailer) last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return mail.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}

// fakeIdentityProvider returns a canned identity for any token.
type fakeIdentityProvider struct {
	identity *ExternalIdentity
	err      error
}

func (p *fakeIdentityProvider) UserFromToken(context.Context, string) (*ExternalIdentity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.identity, nil
}
