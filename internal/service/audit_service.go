package service

import (
	"context"
	"encoding/json"
	"log"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserEmail  string `json:"user_email"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	// Record writes an audit entry attributed to the actor on the context.
	// Failures are logged, never propagated: auditing must not abort the
	// mutation it describes.
	Record(ctx context.Context, action, entityID, entityName string, details interface{})
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, action, entityID, entityName string, details interface{}) {
	payload := ""
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}

	entry := &model.AuditLog{
		UserID:     ActorFromContext(ctx),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
	}
}

// List retrieves paginated audit records with the acting user pre-loaded
func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		email := "system"
		userID := ""
		if l.User != nil {
			email = l.User.Email
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserEmail:  email,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
