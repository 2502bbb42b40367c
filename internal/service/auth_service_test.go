package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/domain"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/dto"
)

// mockUserRepository is an in-memory UserRepository
type mockUserRepository struct {
	users       map[int64]*domain.User
	emailIndex  map[string]*domain.User
	nextID      int64
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:      make(map[int64]*domain.User),
		emailIndex: make(map[string]*domain.User),
		nextID:     1,
	}
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.emailIndex[email], nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	return nil
}

func (r *mockUserRepository) Delete(ctx context.Context, id int64) error {
	user := r.users[id]
	if user != nil {
		delete(r.emailIndex, user.Email)
		delete(r.users, id)
	}
	return nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, exists := r.emailIndex[email]
	return exists, nil
}

// mockSessionRepository is an in-memory SessionRepository
type mockSessionRepository struct {
	sessions          map[string]*domain.Session
	refreshTokenIndex map[string]*domain.Session
	userSessions      map[int64][]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions:          make(map[string]*domain.Session),
		refreshTokenIndex: make(map[string]*domain.Session),
		userSessions:      make(map[int64][]*domain.Session),
	}
}

func (r *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.sessions[session.ID] = session
	r.refreshTokenIndex[session.RefreshToken] = session
	r.userSessions[session.UserID] = append(r.userSessions[session.UserID], session)
	return nil
}

func (r *mockSessionRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.refreshTokenIndex[token], nil
}

func (r *mockSessionRepository) Delete(ctx context.Context, id string) error {
	session := r.sessions[id]
	if session != nil {
		delete(r.refreshTokenIndex, session.RefreshToken)
		delete(r.sessions, id)
	}
	return nil
}

func (r *mockSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	for _, session := range r.userSessions[userID] {
		delete(r.refreshTokenIndex, session.RefreshToken)
		delete(r.sessions, session.ID)
	}
	delete(r.userSessions, userID)
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	events []EventType
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType EventType, user *domain.User) {
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService() (AuthService, *mockUserRepository, *mockSessionRepository, *recordingPublisher) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	events := &recordingPublisher{}
	config := &AuthServiceConfig{
		JWTSecret:          "test-secret-key",
		JWTIssuer:          "courtbook-test",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
	return NewAuthService(userRepo, sessionRepo, events, config), userRepo, sessionRepo, events
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _, events := newTestService()

	t.Run("successful registration", func(t *testing.T) {
		req := &dto.RegisterRequest{
			Email:    "test@example.com",
			Password: "Password1",
			FullName: "Test User",
		}

		resp, err := svc.Register(context.Background(), req)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if resp.AccessToken == "" {
			t.Error("Register() AccessToken is empty")
		}
		if resp.TokenType != "bearer" {
			t.Errorf("Register() TokenType = %v, want bearer", resp.TokenType)
		}
		if resp.User.Email != req.Email {
			t.Errorf("Register() User.Email = %v, want %v", resp.User.Email, req.Email)
		}
		if resp.User.Role != "user" {
			t.Errorf("Register() User.Role = %v, want user", resp.User.Role)
		}
		if len(events.events) != 1 || events.events[0] != EventUserRegistered {
			t.Errorf("Register() events = %v, want [user.registered]", events.events)
		}
	})

	t.Run("custom role", func(t *testing.T) {
		req := &dto.RegisterRequest{
			Email:    "owner@example.com",
			Password: "Password1",
			FullName: "Court Owner",
			Role:     "owner",
		}

		resp, err := svc.Register(context.Background(), req)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.User.Role != "owner" {
			t.Errorf("Register() User.Role = %v, want owner", resp.User.Role)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := &dto.RegisterRequest{
			Email:    "test@example.com",
			Password: "Password2",
			FullName: "Another User",
		}

		_, err := svc.Register(context.Background(), req)
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Errorf("Register() error = %v, want %v", err, ErrUserAlreadyExists)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, userRepo, sessionRepo, _ := newTestService()

	register := &dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "Password1",
		FullName: "Login User",
	}
	if _, err := svc.Register(context.Background(), register); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("successful login", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "Password1",
		}, "test-agent", "127.0.0.1")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("Login() token pair incomplete")
		}

		session, _ := sessionRepo.GetByRefreshToken(context.Background(), resp.RefreshToken)
		if session == nil {
			t.Fatal("Login() did not store a session")
		}
		if session.UserAgent != "test-agent" || session.IP != "127.0.0.1" {
			t.Errorf("Login() session metadata = %s/%s", session.UserAgent, session.IP)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "WrongPassword1",
		}, "", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "Password1",
		}, "", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		user := userRepo.emailIndex["login@example.com"]
		user.IsActive = false
		defer func() { user.IsActive = true }()

		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "Password1",
		}, "", "")
		if !errors.Is(err, ErrUserInactive) {
			t.Errorf("Login() error = %v, want %v", err, ErrUserInactive)
		}
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, sessionRepo, _ := newTestService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "refresh@example.com",
		Password: "Password1",
		FullName: "Refresh User",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "refresh@example.com",
		Password: "Password1",
	}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("rotates the refresh token", func(t *testing.T) {
		resp, err := svc.RefreshToken(context.Background(), login.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshToken() error = %v", err)
		}
		if resp.RefreshToken == login.RefreshToken {
			t.Error("RefreshToken() did not rotate the token")
		}

		// Old token is now invalid
		old, _ := sessionRepo.GetByRefreshToken(context.Background(), login.RefreshToken)
		if old != nil {
			t.Error("old refresh token still resolves to a session")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.RefreshToken(context.Background(), "bogus-token")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("RefreshToken() error = %v, want %v", err, ErrSessionNotFound)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		expired := &domain.Session{
			ID:           "expired-session",
			UserID:       1,
			RefreshToken: "expired-token",
			ExpiresAt:    time.Now().Add(-time.Minute),
			CreatedAt:    time.Now().Add(-time.Hour),
		}
		if err := sessionRepo.Create(context.Background(), expired); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		_, err := svc.RefreshToken(context.Background(), "expired-token")
		if !errors.Is(err, ErrTokenExpired) {
			t.Errorf("RefreshToken() error = %v, want %v", err, ErrTokenExpired)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessionRepo, _ := newTestService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "logout@example.com",
		Password: "Password1",
		FullName: "Logout User",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "logout@example.com",
		Password: "Password1",
	}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	session, _ := sessionRepo.GetByRefreshToken(context.Background(), login.RefreshToken)
	if session != nil {
		t.Error("session still present after Logout")
	}

	// Logging out twice is not an error
	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "claims@example.com",
		Password: "Password1",
		FullName: "Claims User",
		Role:     "enterprise",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.Email != "claims@example.com" {
			t.Errorf("ValidateToken() Email = %v", claims.Email)
		}
		if claims.Role != domain.RoleEnterprise {
			t.Errorf("ValidateToken() Role = %v, want enterprise", claims.Role)
		}
		if claims.UserID != resp.User.ID {
			t.Errorf("ValidateToken() UserID = %d, want %d", claims.UserID, resp.User.ID)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), "not.a.jwt")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}

func TestAuthService_GetUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "getuser@example.com",
		Password: "Password1",
		FullName: "Get User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("existing user", func(t *testing.T) {
		user, err := svc.GetUser(context.Background(), resp.User.ID)
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if user.Email != "getuser@example.com" {
			t.Errorf("GetUser() Email = %v", user.Email)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		// A valid token for an account that no longer exists must yield
		// ErrUserNotFound, never a nil user with a nil error.
		user, err := svc.GetUser(context.Background(), 999)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUser() error = %v, want %v", err, ErrUserNotFound)
		}
		if user != nil {
			t.Errorf("GetUser() user = %+v, want nil", user)
		}
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _, _, events := newTestService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:       "profile@example.com",
		Password:    "Password1",
		FullName:    "Before Update",
		PhoneNumber: "0900000000",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.UpdateProfile(context.Background(), resp.User.ID, &dto.UpdateProfileRequest{
		FullName: "After Update",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if user.FullName != "After Update" {
		t.Errorf("UpdateProfile() FullName = %v", user.FullName)
	}
	if user.PhoneNumber != "0900000000" {
		t.Errorf("UpdateProfile() cleared PhoneNumber: %v", user.PhoneNumber)
	}

	last := events.events[len(events.events)-1]
	if last != EventUserProfileUpdated {
		t.Errorf("last event = %v, want user.profile_updated", last)
	}

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), 9999, &dto.UpdateProfileRequest{FullName: "Ghost"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("UpdateProfile() error = %v, want %v", err, ErrUserNotFound)
		}
	})
}
