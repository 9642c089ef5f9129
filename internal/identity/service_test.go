package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/pkg/auth"
	"github.com/fulluproar/commerce-backend/pkg/config"
	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
)

type stubSessions struct {
	created map[string]string
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{created: make(map[string]string)}
}

func (s *stubSessions) Create(ctx context.Context, jti, email string) error {
	s.created[jti] = email
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, jti string) error {
	s.revoked = append(s.revoked, jti)
	delete(s.created, jti)
	return nil
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "fulluproar-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	return jwtCfg, pwCfg
}

func newTestService(t *testing.T) (*Service, *stubSessions, *gorm.DB) {
	t.Helper()
	dsn := "file:identity_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AdminUser{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sessions := newStubSessions()
	jwtCfg, pwCfg := testConfigs()
	service := NewService(NewRepository(db), sessions, jwtCfg, pwCfg, nil)
	return service, sessions, db
}

func TestLoginSuccess(t *testing.T) {
	service, sessions, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateAccount(ctx, "Staff@FullUproar.com", "correct-horse", []enums.Role{enums.RoleCustomerService})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.Email != "staff@fulluproar.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	result, err := service.Login(ctx, "staff@fulluproar.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected signed token")
	}
	if len(result.Roles) != 1 || result.Roles[0] != enums.RoleCustomerService {
		t.Fatalf("unexpected roles %v", result.Roles)
	}

	jwtCfg, _ := testConfigs()
	claims, err := auth.ParseAccessToken(jwtCfg, result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Email != "staff@fulluproar.com" {
		t.Fatalf("unexpected claims email %q", claims.Email)
	}
	if _, ok := sessions.created[claims.ID]; !ok {
		t.Fatal("expected session keyed by jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, sessions, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateAccount(ctx, "staff@fulluproar.com", "correct-horse", nil); err != nil {
		t.Fatalf("create account: %v", err)
	}

	for name, attempt := range map[string][2]string{
		"wrong password": {"staff@fulluproar.com", "battery-staple"},
		"unknown email":  {"ghost@fulluproar.com", "correct-horse"},
	} {
		_, err := service.Login(ctx, attempt[0], attempt[1])
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("%s: expected UNAUTHORIZED, got %v", name, err)
		}
	}
	if len(sessions.created) != 0 {
		t.Fatal("no session should exist after failed logins")
	}
}

func TestLoginIgnoresInactiveAccounts(t *testing.T) {
	service, _, db := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateAccount(ctx, "staff@fulluproar.com", "correct-horse", nil)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := db.Model(&models.AdminUser{}).Where("id = ?", created.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = service.Login(ctx, "staff@fulluproar.com", "correct-horse")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for inactive account, got %v", err)
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateAccount(ctx, "staff@fulluproar.com", "pw-one-here", nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := service.CreateAccount(ctx, "STAFF@fulluproar.com", "pw-two-here", nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateAccount(ctx, "", "password", nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION for empty email, got %v", err)
	}
	if _, err := service.CreateAccount(ctx, "x@y.com", "pw", []enums.Role{enums.Role("WIZARD")}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION for unknown role, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	service, sessions, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateAccount(ctx, "staff@fulluproar.com", "correct-horse", nil); err != nil {
		t.Fatalf("create account: %v", err)
	}
	result, err := service.Login(ctx, "staff@fulluproar.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	jwtCfg, _ := testConfigs()
	claims, err := auth.ParseAccessToken(jwtCfg, result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := service.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.created) != 0 {
		t.Fatal("expected session removed")
	}
	if err := service.Logout(ctx, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION for empty jti, got %v", err)
	}
}
