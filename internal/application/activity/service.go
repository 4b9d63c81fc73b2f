// Package activity writes and reads the audit trail of user actions.
package activity

import (
	"context"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends audit entries. Recording never fails the calling operation.
type Recorder interface {
	Record(ctx context.Context, p access.Principal, action, module, description string)
}

type clientIPKey struct{}

// WithClientIP stores the caller's address for entries recorded with ctx
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address stored by WithClientIP
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Service records activity and lists it for admins
type Service struct {
	repo activity.Repository
}

// NewService creates a new activity Service
func NewService(repo activity.Repository) *Service {
	return &Service{repo: repo}
}

// Record writes one entry. A storage failure is logged and dropped.
func (s *Service) Record(ctx context.Context, p access.Principal, action, module, description string) {
	entry := activity.NewLog(p.ID, p.Username, action, module, description, ClientIP(ctx))
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.L(ctx).Warn("failed to record activity",
			zap.String("action", action),
			zap.String("module", module),
			zap.Error(err),
		)
	}
}

// ListFilter selects activity entries
type ListFilter struct {
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Module   string `form:"module"`
	Action   string `form:"action"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LogResponse is one audit entry as returned by the API
type LogResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Action      string    `json:"action"`
	Module      string    `json:"module"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToLogResponse converts a domain entry
func ToLogResponse(l activity.Log) LogResponse {
	return LogResponse{
		ID:          l.ID,
		UserID:      l.UserID,
		Username:    l.Username,
		Action:      l.Action,
		Module:      l.Module,
		Description: l.Description,
		IPAddress:   l.IPAddress,
		CreatedAt:   l.CreatedAt,
	}
}

// List returns one page of entries, newest first. Admin only.
func (s *Service) List(ctx context.Context, p access.Principal, filter ListFilter) (shared.Paginated[LogResponse], error) {
	if err := access.RequireAdmin(p); err != nil {
		return shared.Paginated[LogResponse]{}, err
	}
	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(20, 100)

	var userID *uuid.UUID
	if filter.UserID != "" {
		id, err := uuid.Parse(filter.UserID)
		if err != nil {
			return shared.Paginated[LogResponse]{}, shared.NewDomainError("INVALID_INPUT", "user_id must be a UUID")
		}
		userID = &id
	}

	entries, total, err := s.repo.FindAll(ctx, activity.Filter{
		UserID:   userID,
		Module:   filter.Module,
		Action:   filter.Action,
		Page:     paging.Page,
		PageSize: paging.PageSize,
	})
	if err != nil {
		return shared.Paginated[LogResponse]{}, err
	}

	page := shared.NewPaginated(entries, total, paging.Page, paging.PageSize)
	return shared.MapPaginated(page, ToLogResponse), nil
}

// Nop discards every entry
type Nop struct{}

// Record does nothing
func (Nop) Record(context.Context, access.Principal, string, string, string) {}

var (
	_ Recorder = (*Service)(nil)
	_ Recorder = Nop{}
)
