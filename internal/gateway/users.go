package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
)

func userKey(u models.User) string { return u.Username }

// ListUsers returns every account, from the service when reachable.
func (g *Gateway) ListUsers(ctx context.Context) []models.User {
	return readThrough(ctx, g, store.Users, "/api/users", models.Filter{}, userKey)
}

// ListSalesmen is ListUsers narrowed to the salesman role.
func (g *Gateway) ListSalesmen(ctx context.Context) []models.User {
	users := g.ListUsers(ctx)
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsSalesman() {
			out = append(out, u)
		}
	}
	return out
}

// CreateUser registers a new account. Usernames must be unique; a salesman
// without a code gets the next free SMnnn one.
func (g *Gateway) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Name = strings.TrimSpace(u.Name)
	u.SalesmanID = strings.TrimSpace(u.SalesmanID)
	u.ID = ""
	if u.Username == "" || u.Password == "" || u.Name == "" {
		return models.User{}, invalid("name, username and password are required")
	}
	if u.Role == "" {
		u.Role = models.RoleSalesman
	}
	if u.Role != models.RoleAdmin && u.Role != models.RoleSalesman {
		return models.User{}, invalid("unknown role %q", u.Role)
	}

	known, err := store.Load[models.User](ctx, g.store, store.Users)
	if err != nil {
		log.Printf("⚠️ could not read cached users: %v", err)
	}
	for _, existing := range known {
		if existing.Username == u.Username {
			return models.User{}, invalid("Username already exists")
		}
		if u.IsSalesman() && u.SalesmanID != "" && existing.SalesmanID == u.SalesmanID {
			return models.User{}, invalid("Salesman ID %s already exists", u.SalesmanID)
		}
	}
	switch {
	case !u.IsSalesman():
		u.SalesmanID = ""
	case u.SalesmanID == "":
		u.SalesmanID = models.NextSalesmanID(known)
	}

	var created models.User
	if err := g.do(ctx, http.MethodPost, "/api/users", nil, u, &created); err != nil {
		return models.User{}, err
	}
	if created.Username == "" {
		// the service answered without echoing the record
		created = u
	}
	if created.Password == "" {
		created.Password = u.Password
	}
	if err := store.AppendRecord(ctx, g.store, store.Users, created); err != nil {
		log.Printf("⚠️ could not cache new user %s: %v", created.Username, err)
	}
	return created, nil
}

// DeleteUser removes a salesman. Their sales, leaves and unsynced writes are
// dropped locally whatever the service says.
func (g *Gateway) DeleteUser(ctx context.Context, salesmanID string) error {
	if salesmanID == "" {
		return invalid("salesman ID is required")
	}
	if err := g.cascadeLocal(ctx, salesmanID); err != nil {
		return err
	}
	return g.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(salesmanID), nil, nil, nil)
}

func (g *Gateway) cascadeLocal(ctx context.Context, salesmanID string) error {
	sales, err := store.RemoveWhere(ctx, g.store, store.Sales, func(s models.Sale) bool { return s.SalesmanID == salesmanID })
	if err != nil {
		return fmt.Errorf("remove sales of %s: %w", salesmanID, err)
	}
	leaves, err := store.RemoveWhere(ctx, g.store, store.Leaves, func(l models.Leave) bool { return l.SalesmanID == salesmanID })
	if err != nil {
		return fmt.Errorf("remove leaves of %s: %w", salesmanID, err)
	}
	if _, err := store.RemoveWhere(ctx, g.store, store.Users, func(u models.User) bool { return u.SalesmanID == salesmanID }); err != nil {
		return fmt.Errorf("remove user %s: %w", salesmanID, err)
	}
	pending, err := g.store.DiscardOwner(ctx, salesmanID)
	if err != nil {
		return fmt.Errorf("discard pending writes of %s: %w", salesmanID, err)
	}
	log.Printf("🗑️ Removed %s locally (%d sales, %d leaves, %d pending)", salesmanID, sales, leaves, pending)
	return nil
}

// ResetPassword sets a new password for a salesman.
func (g *Gateway) ResetPassword(ctx context.Context, salesmanID, password string) error {
	if salesmanID == "" || password == "" {
		return invalid("salesman ID and password are required")
	}
	body := map[string]string{"password": password}
	if err := g.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(salesmanID)+"/password", nil, body, nil); err != nil {
		return err
	}
	if err := store.Mutate(ctx, g.store, store.Users, func(users []models.User) []models.User {
		for i := range users {
			if users[i].SalesmanID == salesmanID {
				users[i].Password = password
			}
		}
		return users
	}); err != nil {
		log.Printf("⚠️ could not update cached password of %s: %v", salesmanID, err)
	}
	return nil
}

type loginResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
}

// Login verifies credentials with the service, or against the cached users
// when the service cannot be reached.
func (g *Gateway) Login(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	creds := map[string]string{"username": username, "password": password}

	var resp loginResponse
	err := g.do(ctx, http.MethodPost, "/api/login", nil, creds, &resp)
	switch {
	case err == nil:
		if !resp.Success || resp.User.Username == "" {
			return models.User{}, ErrInvalidCredentials
		}
		return resp.User.Public(), nil
	case !errors.Is(err, ErrRemoteUnavailable):
		return models.User{}, ErrInvalidCredentials
	}

	log.Printf("API error on login, checking cached users: %v", err)
	users, lErr := store.Load[models.User](ctx, g.store, store.Users)
	if lErr != nil {
		log.Printf("❌ cached users unreadable: %v", lErr)
		return models.User{}, ErrInvalidCredentials
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u.Public(), nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}
