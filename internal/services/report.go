package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type ReportServiceInterface interface {
	GetOrderRegister(ctx context.Context, payload dto.OrderReportFilterDTO) ([]entities.ReportRow, error)
}

// ReportService feeds the order-register export. Managers export their
// own branch; admins export everything.
type ReportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{reportRepo: reportRepo, logger: logger}
}

func (s *ReportService) GetOrderRegister(ctx context.Context, payload dto.OrderReportFilterDTO) ([]entities.ReportRow, error) {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter := entities.ReportFilter{BranchID: payload.BranchID, Status: payload.Status}
	switch actor.Role {
	case constants.RoleAdmin:
	case constants.RoleManager:
		if actor.BranchID == nil {
			return nil, apperrors.NewForbiddenError("actor is not attached to a branch")
		}
		filter.BranchID = *actor.BranchID
	default:
		return nil, apperrors.NewForbiddenError("only managers and admins may export the order register")
	}

	if filter.Status != "" {
		if _, err := lifecycle.Parse(filter.Status); err != nil {
			return nil, apperrors.NewInvalidInputError("unknown status %q", filter.Status)
		}
	}
	if payload.DateFrom != "" {
		from, err := time.Parse(dateFormat, payload.DateFrom)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("date_from must be formatted as %s", dateFormat)
		}
		filter.DateFrom = &from
	}
	if payload.DateTo != "" {
		to, err := time.Parse(dateFormat, payload.DateTo)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("date_to must be formatted as %s", dateFormat)
		}
		// Inclusive end of the day.
		to = to.Add(24*time.Hour - time.Second)
		filter.DateTo = &to
	}

	return s.reportRepo.GetOrderRegister(ctx, filter)
}
