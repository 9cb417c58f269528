package service

import (
	"errors"
	"testing"
	"time"

	"equip-go/internal/config"
	"equip-go/internal/dto"
	"equip-go/internal/repository"
	"equip-go/internal/utils"
)

func newTestAuth(t *testing.T, adminPassword string) (*AuthService, *repository.UserRepository) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.JWT.SecretKey = "secret"
	cfg.Admin.Password = adminPassword
	users := repository.NewUserRepository(newTestDB(t))
	jm := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, time.Hour)
	return NewAuthService(users, jm, cfg), users
}

func TestRegisterAndLogin(t *testing.T) {
	auth, users := newTestAuth(t, "admin-pass")

	if _, err := auth.Register(&dto.RegisterRequest{Username: "x", Password: "secret1"}); err == nil {
		t.Fatal("short username accepted")
	}

	user, err := auth.Register(&dto.RegisterRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(&dto.RegisterRequest{Username: "alice", Password: "secret2"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate: %v", err)
	}

	if _, err := auth.Login(&dto.LoginRequest{Username: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := auth.Login(&dto.LoginRequest{Username: "nobody", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}

	resp, err := auth.Login(&dto.LoginRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.User.ID != user.ID || resp.User.LastLoginAt == "" {
		t.Fatalf("login response = %+v", resp)
	}
	stored, _ := users.GetByID(user.ID)
	if stored.LastLoginAt == nil {
		t.Fatal("last login not persisted")
	}

	stored.IsActive = false
	users.Update(stored)
	if _, err := auth.Login(&dto.LoginRequest{Username: "alice", Password: "secret1"}); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user: %v", err)
	}
}

func TestInitAdminAcceptsHash(t *testing.T) {
	hash, err := utils.HashPassword("from-hash")
	if err != nil {
		t.Fatal(err)
	}
	auth, users := newTestAuth(t, hash)

	if err := auth.InitAdmin(); err != nil {
		t.Fatalf("init admin: %v", err)
	}
	if err := auth.InitAdmin(); err != nil {
		t.Fatalf("second init admin: %v", err)
	}
	if _, total, _ := users.List(0, 10); total != 1 {
		t.Fatalf("admins created = %d", total)
	}
	if _, err := auth.Login(&dto.LoginRequest{Username: "admin", Password: "from-hash"}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	auth, users := newTestAuth(t, "admin-pass")
	if err := auth.InitAdmin(); err != nil {
		t.Fatal(err)
	}
	admin, _ := users.GetAdmin()
	if err := auth.DeleteUser(admin.ID); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("delete admin: %v", err)
	}
	if err := auth.DeleteUser(999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("delete missing: %v", err)
	}

	user, _ := auth.Register(&dto.RegisterRequest{Username: "bob", Password: "secret1"})
	if err := auth.DeleteUser(user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := auth.GetMe(user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("deleted user still visible: %v", err)
	}

	page, err := auth.ListUsers(1, 20)
	if err != nil || page.Total != 1 {
		t.Fatalf("list users = %+v, %v", page, err)
	}
}
