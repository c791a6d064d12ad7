package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("debtor.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDebtorRequest) (domain.Debtor, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Debtor{}, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Debtor{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Debtor{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	debtor := domain.Debtor{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &debtor); err != nil {
		return domain.Debtor{}, err
	}

	return debtor, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetDebtorRequest) (domain.Debtor, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Debtor{}, domain.ErrInvalidUser
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Debtor{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return domain.Debtor{}, err
	}
	if item == nil {
		return domain.Debtor{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDebtorRequest) (domain.ListDebtorResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListDebtorResponse{}, domain.ErrInvalidUser
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, domain.ListDebtorFilter{
		Name:            strings.TrimSpace(req.Name),
		HealthTier:      strings.TrimSpace(req.HealthTier),
		RiskTier:        strings.TrimSpace(req.RiskTier),
		IncludeArchived: req.IncludeArchived,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListDebtorResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(debtor *domain.Debtor) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        debtor.ID.String(),
			CreatedAt: debtor.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	debtors := make([]domain.Debtor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		debtors = append(debtors, *item)
	}

	resp := domain.ListDebtorResponse{Debtors: debtors}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Archive(ctx context.Context, req domain.GetDebtorRequest) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	return s.repo.Archive(ctx, s.db, userID, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
