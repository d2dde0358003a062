package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

func TestUserService_Create(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, ports.UserInput{Username: "alice", Email: "alice@example.com", Name: "Alice", Password: "pass123"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.Role != domain.RoleAM || !u.IsActive {
		t.Fatalf("expected active am by default, got %+v", u)
	}
	if u.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if _, err := svc.Create(ctx, ports.UserInput{Username: "alice", Email: "other@example.com", Name: "A", Password: "x"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	svc := NewUserService(newStubUserRepo())
	ctx := context.Background()

	cases := []ports.UserInput{
		{Username: "bob", Email: "bob@example.com", Name: "Bob"},
		{Username: "bob", Email: "bob@example.com", Name: "Bob", Password: "x", Role: "owner"},
		{Username: "bob", Email: "not-an-email", Name: "Bob", Password: "x"},
	}
	for _, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("Create(%+v): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestUserService_Update_BlankPasswordUnchanged(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	u, _ := svc.Create(ctx, ports.UserInput{Username: "carol", Email: "carol@example.com", Name: "Carol", Password: "first"})
	_, _ = svc.Create(ctx, ports.UserInput{Username: "dave", Email: "dave@example.com", Name: "Dave", Password: "pw"})
	oldHash := u.PasswordHash

	inactive := false
	got, err := svc.Update(ctx, u.ID, ports.UserInput{Name: "Carol B", Role: domain.RoleAdmin, IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.PasswordHash != oldHash || got.Name != "Carol B" || got.Role != domain.RoleAdmin || got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}

	got, err = svc.Update(ctx, u.ID, ports.UserInput{Password: "second"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("second")) != nil {
		t.Fatalf("password not changed")
	}

	if _, err := svc.Update(ctx, u.ID, ports.UserInput{Email: "dave@example.com"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.Update(ctx, u.ID, ports.UserInput{Username: "carol"}); err != nil {
		t.Fatalf("keeping own username must not clash: %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	repo := newStubUserRepo(
		domain.User{ID: "root", Username: "root", Role: domain.RoleSuperAdmin},
		domain.User{ID: "u2", Username: "eve", Role: domain.RoleAM},
	)
	svc := NewUserService(repo)
	who := domain.Identity{UserID: "root", Role: domain.RoleSuperAdmin}
	ctx := context.Background()

	if err := svc.Delete(ctx, who, "root"); err != domain.ErrSelfDelete {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
	if err := svc.Delete(ctx, who, "u2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, who, "u2"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
