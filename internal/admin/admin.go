// internal/admin/admin.go
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/session"
	"github.com/vibing/vibing-client/internal/utils"
)

var ErrNotAdmin = errors.New("admin role required")

type AdminAPI interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	Users(ctx context.Context, p api.AdminListParams) (*models.UserList, error)
	UpdateUserRole(ctx context.Context, userID string, role models.UserRole) error
	DeleteUser(ctx context.Context, userID string) error
	Products(ctx context.Context, p api.AdminListParams) (*models.ProductList, error)
	UpdateProductStatus(ctx context.Context, productID string, status models.ProductStatus) error
	DeleteProduct(ctx context.Context, productID string) error
	Sales(ctx context.Context, page, limit int) (*models.SaleList, error)
	Disputes(ctx context.Context, page, limit int) (*models.DisputeList, error)
	ProcessDispute(ctx context.Context, purchaseID string) error
	ResolveDispute(ctx context.Context, purchaseID string, req models.ResolveDisputeRequest) error
}

type SessionState interface {
	State() session.State
}

type State struct {
	Stats    *models.AdminStats
	Disputes []models.DisputedPurchase
	Page     int
	Loading  bool
	Err      string
}

// Admin drives the moderation endpoints. Every call requires the signed-in
// user to hold the admin role.
type Admin struct {
	api     AdminAPI
	session SessionState
	log     *logrus.Entry

	mu    sync.Mutex
	state State

	subject observer.Subject[State]
}

func New(adminAPI AdminAPI, sess SessionState) *Admin {
	return &Admin{
		api:     adminAPI,
		session: sess,
		log:     logrus.WithField("component", "admin"),
		state:   State{Page: 1},
	}
}

func (a *Admin) Subscribe(fn func(State)) func() {
	return a.subject.Subscribe(fn)
}

func (a *Admin) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Admin) snapshot() State {
	st := a.state
	st.Disputes = append([]models.DisputedPurchase(nil), a.state.Disputes...)
	return st
}

func (a *Admin) update(fn func(*State)) {
	a.mu.Lock()
	fn(&a.state)
	snap := a.snapshot()
	a.mu.Unlock()
	a.subject.Publish(snap)
}

func (a *Admin) authorize() error {
	st := a.session.State()
	if !st.IsAuthenticated() {
		return api.ErrAuthRequired
	}
	if !st.User.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (a *Admin) Stats(ctx context.Context) (*models.AdminStats, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	stats, err := a.api.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin stats: %w", err)
	}
	a.update(func(st *State) { st.Stats = stats })
	return stats, nil
}

func (a *Admin) Users(ctx context.Context, p api.AdminListParams) (*models.UserList, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	return a.api.Users(ctx, p)
}

func (a *Admin) UpdateUserRole(ctx context.Context, userID string, role models.UserRole) error {
	if err := utils.ValidateStruct(models.RoleUpdateRequest{Role: role}); err != nil {
		return err
	}
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.UpdateUserRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	a.log.WithFields(logrus.Fields{"user_id": userID, "role": role}).Info("User role updated")
	return nil
}

func (a *Admin) DeleteUser(ctx context.Context, userID string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	a.log.WithField("user_id", userID).Info("User deleted")
	return nil
}

func (a *Admin) Products(ctx context.Context, p api.AdminListParams) (*models.ProductList, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	return a.api.Products(ctx, p)
}

func (a *Admin) UpdateProductStatus(ctx context.Context, productID string, status models.ProductStatus) error {
	if err := utils.ValidateStruct(models.ProductStatusRequest{Status: status}); err != nil {
		return err
	}
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.UpdateProductStatus(ctx, productID, status); err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	a.log.WithFields(logrus.Fields{"product_id": productID, "status": status}).Info("Product status updated")
	return nil
}

func (a *Admin) DeleteProduct(ctx context.Context, productID string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (a *Admin) Sales(ctx context.Context, page int) (*models.SaleList, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	return a.api.Sales(ctx, page, 0)
}

// LoadDisputes fetches a page of disputed purchases.
func (a *Admin) LoadDisputes(ctx context.Context, page int) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	a.update(func(st *State) { st.Loading = true })

	list, err := a.api.Disputes(ctx, page, 0)
	if err != nil {
		a.update(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err)
		})
		return fmt.Errorf("failed to load disputes: %w", err)
	}
	a.update(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.Page = page
		st.Disputes = list.Disputes
	})
	return nil
}

// ProcessDispute moves a dispute to platform review.
func (a *Admin) ProcessDispute(ctx context.Context, purchaseID string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.ProcessDispute(ctx, purchaseID); err != nil {
		return fmt.Errorf("failed to process dispute: %w", err)
	}
	a.log.WithField("purchase_id", purchaseID).Info("Dispute moved to review")
	return a.LoadDisputes(ctx, a.State().Page)
}

// ResolveDispute closes a dispute, optionally refunding the buyer.
func (a *Admin) ResolveDispute(ctx context.Context, purchaseID, resolution string, refund bool) error {
	req := models.ResolveDisputeRequest{Resolution: strings.TrimSpace(resolution), Refund: refund}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.ResolveDispute(ctx, purchaseID, req); err != nil {
		return fmt.Errorf("failed to resolve dispute: %w", err)
	}
	a.log.WithFields(logrus.Fields{"purchase_id": purchaseID, "refund": refund}).Info("Dispute resolved")
	return a.LoadDisputes(ctx, a.State().Page)
}
