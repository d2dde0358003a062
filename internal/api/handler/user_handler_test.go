package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

type stubUserService struct {
	listFn   func(ctx context.Context) ([]domain.User, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn func(ctx context.Context, in ports.UserInput) (*domain.User, error)
	updateFn func(ctx context.Context, id string, in ports.UserInput) (*domain.User, error)
	deleteFn func(ctx context.Context, who domain.Identity, id string) error
}

func (s *stubUserService) List(ctx context.Context) ([]domain.User, error) { return s.listFn(ctx) }

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, who domain.Identity, id string) error {
	return s.deleteFn(ctx, who, id)
}

func TestUserHandler_Create_InvalidEmail(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{})

	body := `{"username":"sari","email":"not-an-email","name":"Sari","password":"pw"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/users", body), httptest.NewRecorder())

	if code := httpCode(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_Create(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		createFn: func(_ context.Context, in ports.UserInput) (*domain.User, error) {
			if in.Username != "sari" || in.Role != "" || in.IsActive != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u2", Username: in.Username, Role: domain.RoleAM, IsActive: true}, nil
		},
	})

	body := `{"username":" sari ","email":"sari@isp.id","name":"Sari","password":"pw"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/users", body), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Update_BlankPasswordKept(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		updateFn: func(_ context.Context, id string, in ports.UserInput) (*domain.User, error) {
			if in.Password != "" || in.Role != domain.RoleAdmin {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: id, Role: in.Role}, nil
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPut, "/api/users/u2", `{"role":"admin","password":""}`), httptest.NewRecorder())
	withID(c, "u2")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		deleteFn: func(_ context.Context, who domain.Identity, id string) error {
			if who.UserID == id {
				return domain.ErrSelfDelete
			}
			return nil
		},
	})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/users/root", nil), httptest.NewRecorder())
	withID(c, "root")
	withIdentity(c, domain.Identity{UserID: "root", Role: domain.RoleSuperAdmin})

	if err := h.Delete(c); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
}
