package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/domain/order"
	"github.com/teecraft/storefront/internal/domain/user"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidRole     = errors.New("invalid role")
)

const (
	unknownCustomer = "Unknown"
	StatusFilterAll = "all"
)

// OrderSummary is the admin console's row for one order.
type OrderSummary struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	Items         int       `json:"items"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

func summarize(o *types.Order) OrderSummary {
	s := OrderSummary{
		ID:            o.ID,
		UserID:        o.UserID,
		CustomerEmail: unknownCustomer,
		CustomerName:  unknownCustomer,
		Items:         len(o.Items),
		Total:         o.Total,
		Status:        o.Status,
		Date:          o.CreatedAt.Format("2006-01-02"),
		CreatedAt:     o.CreatedAt,
	}
	if o.Profile != nil {
		if o.Profile.Email != "" {
			s.CustomerEmail = o.Profile.Email
		}
		if o.Profile.FullName != "" {
			s.CustomerName = o.Profile.FullName
		}
	}
	return s
}

// FilterOrders keeps orders whose status matches (StatusFilterAll or "" for
// any) and whose id, customer email or customer name contains search,
// ignoring case.
func FilterOrders(orders []OrderSummary, status, search string) []OrderSummary {
	status = strings.TrimSpace(status)
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		if status != "" && status != StatusFilterAll && o.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.ID.String()), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerName), needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Revenue sums totals of completed and delivered orders.
func Revenue(orders []OrderSummary) float64 {
	var total float64
	for _, o := range orders {
		if order.CountsAsRevenue(o.Status) {
			total += o.Total
		}
	}
	return total
}

// OrdersByEmail returns the orders placed by the customer with email.
func OrdersByEmail(orders []OrderSummary, email string) []OrderSummary {
	out := make([]OrderSummary, 0)
	for _, o := range orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out
}

type AdminSummary struct {
	Users        int     `json:"users"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
	PendingCount int     `json:"pending"`
}

type Console struct {
	Users  []*types.Profile `json:"users"`
	Orders []OrderSummary   `json:"orders"`
}

type UpdateUserInput struct {
	Role     *string
	FullName *string
}

type AdminService interface {
	// Load fetches users and orders concurrently.
	Load(ctx context.Context) (*Console, error)
	ListUsers(ctx context.Context) ([]*types.Profile, error)
	ListOrders(ctx context.Context, status, search string) ([]OrderSummary, error)
	UserOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error)
	Summary(ctx context.Context) (*AdminSummary, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*types.Profile, error)
}

type adminService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	orders   repos.OrderRepo
	tokens   repos.UserTokenRepo
}

func NewAdminService(log *logger.Logger, profiles repos.ProfileRepo, orders repos.OrderRepo, tokens repos.UserTokenRepo) AdminService {
	return &adminService{
		log:      log.With("service", "AdminService"),
		profiles: profiles,
		orders:   orders,
		tokens:   tokens,
	}
}

func (s *adminService) Load(ctx context.Context) (*Console, error) {
	var (
		users  []*types.Profile
		orders []OrderSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.ListOrders(gctx, StatusFilterAll, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Console{Users: users, Orders: orders}, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]*types.Profile, error) {
	users, err := s.profiles.ListNewestFirst(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if users == nil {
		users = []*types.Profile{}
	}
	return users, nil
}

func (s *adminService) allOrders(ctx context.Context) ([]OrderSummary, error) {
	rows, err := s.orders.ListNewestFirst(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]OrderSummary, 0, len(rows))
	for _, o := range rows {
		out = append(out, summarize(o))
	}
	return out, nil
}

func (s *adminService) ListOrders(ctx context.Context, status, search string) ([]OrderSummary, error) {
	if status != "" && status != StatusFilterAll && !order.IsValidStatus(status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	all, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOrders(all, status, search), nil
}

func (s *adminService) UserOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error) {
	dbc := dbctx.New(ctx)
	p, err := s.profiles.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile_not_found", ErrProfileNotFound)
	}
	all, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}
	return OrdersByEmail(all, p.Email), nil
}

func (s *adminService) Summary(ctx context.Context) (*AdminSummary, error) {
	console, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	sum := &AdminSummary{
		Users:   len(console.Users),
		Orders:  len(console.Orders),
		Revenue: Revenue(console.Orders),
	}
	for _, o := range console.Orders {
		if o.Status == order.StatusPending {
			sum.PendingCount++
		}
	}
	return sum, nil
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	status = strings.TrimSpace(status)
	if !order.IsValidStatus(status) {
		return apierr.BadRequest("invalid_status", fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	if err := s.orders.UpdateStatus(dbctx.New(ctx), orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("order_not_found", ErrOrderNotFound)
		}
		return fmt.Errorf("update order status: %w", err)
	}
	s.log.Info("Order status updated", "order_id", orderID, "status", status)
	return nil
}

func (s *adminService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orders.DeleteWithItems(dbctx.New(ctx), orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("order_not_found", ErrOrderNotFound)
		}
		return fmt.Errorf("delete order: %w", err)
	}
	s.log.Info("Order deleted", "order_id", orderID)
	return nil
}

// UpdateUser applies role and name edits. A role change revokes the user's
// tokens so their next request signs in again under the new role.
func (s *adminService) UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*types.Profile, error) {
	updates := map[string]interface{}{}
	var role string
	if in.Role != nil {
		role = strings.TrimSpace(*in.Role)
		if !user.IsValidRole(role) {
			return nil, apierr.BadRequest("invalid_role", fmt.Errorf("%w: %q", ErrInvalidRole, role))
		}
		updates["role"] = role
	}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	dbc := dbctx.New(ctx)
	before, err := s.profiles.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if before == nil {
		return nil, apierr.NotFound("profile_not_found", ErrProfileNotFound)
	}
	if len(updates) > 0 {
		if err := s.profiles.UpdateFields(dbc, userID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierr.NotFound("profile_not_found", ErrProfileNotFound)
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if in.Role != nil && user.NormalizeRole(before.Role) != role {
		if err := s.tokens.FullDeleteByUserIDs(dbc, []uuid.UUID{userID}); err != nil {
			return nil, fmt.Errorf("revoke user tokens: %w", err)
		}
		s.log.Info("User role changed, sessions revoked", "user_id", userID, "from", before.Role, "to", role)
	}
	p, err := s.profiles.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile_not_found", ErrProfileNotFound)
	}
	return p, nil
}
