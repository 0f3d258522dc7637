package usecase

import (
	"context"

	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// Compile-time check
var _ AuditUseCase = (*auditUC)(nil)

// AuditUseCase serves the read side of the audit trail (the developer logs
// view and the per-user recent activity list). Writes happen inside the
// operations that cause them, in the same transaction.
type AuditUseCase interface {
	RecentSystem(ctx context.Context, limit int) ([]*model.SystemLog, error)
	RecentConnections(ctx context.Context, limit int) ([]*model.ConnectionLog, error)
	RecentByUser(ctx context.Context, userID string, limit int) ([]*model.ConnectionLog, error)
}

type auditUC struct {
	connLogs repository.ConnectionLogRepository
	sysLogs  repository.SystemLogRepository
}

func NewAuditUseCase(connLogs repository.ConnectionLogRepository, sysLogs repository.SystemLogRepository) *auditUC {
	return &auditUC{connLogs: connLogs, sysLogs: sysLogs}
}

func (uc *auditUC) RecentSystem(ctx context.Context, limit int) ([]*model.SystemLog, error) {
	return uc.sysLogs.Recent(ctx, repository.NoTX, limit)
}

func (uc *auditUC) RecentConnections(ctx context.Context, limit int) ([]*model.ConnectionLog, error) {
	return uc.connLogs.Recent(ctx, repository.NoTX, limit)
}

func (uc *auditUC) RecentByUser(ctx context.Context, userID string, limit int) ([]*model.ConnectionLog, error) {
	return uc.connLogs.RecentByUser(ctx, repository.NoTX, userID, limit)
}
