package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/enum"
	"github.com/jairsl2206/restaurant-sub000/internal/handler"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User
	err   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]database.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	if m.err != nil {
		return database.User{}, m.err
	}
	for _, u := range m.users {
		if u.Username == arg.Username {
			return database.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		Username:       arg.Username,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		CreatedAt:      time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

func setupUserRouter(store handler.UserStore, callerID uuid.UUID) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Use(withClaims(callerID, enum.UserRoleAdmin))
	r.Route("/users", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestUserCreate_HashesPassword(t *testing.T) {
	store := newMockUserStore()

	rr := postJSON(t, setupUserRouter(store, uuid.New()), "/users", map[string]string{
		"username":  " luis ",
		"password":  "cocina123",
		"full_name": "Luis Pérez",
		"role":      enum.UserRoleCook,
	})
	assertStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["username"] != "luis" || resp["role"] != enum.UserRoleCook {
		t.Errorf("user: got %v", resp)
	}
	if _, leaked := resp["hashed_password"]; leaked {
		t.Error("hashed_password must not be returned")
	}

	if len(store.users) != 1 {
		t.Fatalf("stored users: got %d", len(store.users))
	}
	for _, u := range store.users {
		if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("cocina123")); err != nil {
			t.Errorf("stored password is not a bcrypt hash of the input: %v", err)
		}
	}
}

func TestUserCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing username", map[string]string{"password": "x", "role": "waiter"}, "username, password, and role are required"},
		{"missing role", map[string]string{"username": "a", "password": "x"}, "username, password, and role are required"},
		{"unknown role", map[string]string{"username": "a", "password": "x", "role": "owner"}, "invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, setupUserRouter(newMockUserStore(), uuid.New()), "/users", tt.body)
			assertStatus(t, rr, http.StatusBadRequest)
			assertError(t, rr, tt.want)
		})
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	store := newMockUserStore()
	r := setupUserRouter(store, uuid.New())
	body := map[string]string{"username": "ana", "password": "x", "role": enum.UserRoleWaiter}

	assertStatus(t, postJSON(t, r, "/users", body), http.StatusCreated)

	rr := postJSON(t, r, "/users", body)
	assertStatus(t, rr, http.StatusConflict)
	assertError(t, rr, "username already exists")
}

func TestUserList(t *testing.T) {
	store := newMockUserStore()
	store.users[uuid.New()] = database.User{Username: "ana", Role: enum.UserRoleWaiter}
	store.users[uuid.New()] = database.User{Username: "luis", Role: enum.UserRoleCook}

	rr := doJSON(t, setupUserRouter(store, uuid.New()), "GET", "/users", nil)
	assertStatus(t, rr, http.StatusOK)
	if list := decodeList(t, rr); len(list) != 2 {
		t.Errorf("len: got %d, want 2", len(list))
	}
}

func TestUserList_DatabaseError(t *testing.T) {
	store := newMockUserStore()
	store.err = errDB

	rr := doJSON(t, setupUserRouter(store, uuid.New()), "GET", "/users", nil)
	assertStatus(t, rr, http.StatusInternalServerError)
}

func TestUserDelete(t *testing.T) {
	store := newMockUserStore()
	id := uuid.New()
	store.users[id] = database.User{ID: id, Username: "ana"}

	rr := doJSON(t, setupUserRouter(store, uuid.New()), "DELETE", "/users/"+id.String(), nil)
	assertStatus(t, rr, http.StatusNoContent)
	if _, ok := store.users[id]; ok {
		t.Error("user still stored")
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	rr := doJSON(t, setupUserRouter(newMockUserStore(), uuid.New()), "DELETE", "/users/"+uuid.NewString(), nil)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestUserDelete_Self(t *testing.T) {
	store := newMockUserStore()
	self := uuid.New()
	store.users[self] = database.User{ID: self, Username: "admin"}

	rr := doJSON(t, setupUserRouter(store, self), "DELETE", "/users/"+self.String(), nil)
	assertStatus(t, rr, http.StatusBadRequest)
	assertError(t, rr, "cannot delete your own user")
	if _, ok := store.users[self]; !ok {
		t.Error("self must not be deleted")
	}
}
