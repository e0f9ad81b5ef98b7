package fee

import (
	"context"
	"fmt"
	"time"
)

type ServiceInterface interface {
	Bill(ctx context.Context, nf NewFee) (Fee, error)
	MarkPaid(ctx context.Context, id string) (Fee, error)
	Filter(ctx context.Context, filter QueryFilter) ([]Fee, error)
	LedgerFor(ctx context.Context, regNo int) ([]Fee, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Bill(ctx context.Context, nf NewFee) (Fee, error) {
	f := Fee{
		ID:     fmt.Sprintf("%d-%s", nf.RegNo, nf.Month),
		RegNo:  nf.RegNo,
		Class:  nf.Class,
		Month:  nf.Month,
		Amount: nf.Amount,
	}
	return svc.repo.CreateFee(ctx, f)
}

func (svc *Service) MarkPaid(ctx context.Context, id string) (Fee, error) {
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	f.Paid = true
	f.PaidAt = time.Now().UTC()
	return svc.repo.UpdateFee(ctx, f)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Fee, error) {
	return svc.repo.FilterFees(ctx, filter)
}

func (svc *Service) LedgerFor(ctx context.Context, regNo int) ([]Fee, error) {
	return svc.repo.FilterFees(ctx, QueryFilter{RegNo: regNo})
}
