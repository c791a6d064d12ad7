package domain

import (
	"context"
	"errors"

	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db/pagination"
)

type CreateDebtorRequest struct {
	Name  string
	Email string
}

type GetDebtorRequest struct {
	ID string
}

type ListDebtorRequest struct {
	PageToken       string
	PageSize        int
	Name            string
	HealthTier      string
	RiskTier        string
	IncludeArchived bool
}

type ListDebtorFilter struct {
	Name            string
	HealthTier      string
	RiskTier        string
	IncludeArchived bool
}

type ListDebtorResponse struct {
	pagination.PageInfo
	Debtors []Debtor `json:"debtors"`
}

type Service interface {
	Create(context.Context, CreateDebtorRequest) (Debtor, error)
	GetByID(context.Context, GetDebtorRequest) (Debtor, error)
	List(context.Context, ListDebtorRequest) (ListDebtorResponse, error)
	Archive(context.Context, GetDebtorRequest) error
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
