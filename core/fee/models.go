package fee

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("fee record not found")

// Fee is one month of a student's fee ledger.
type Fee struct {
	ID     string    `json:"id" bson:"_id"` // "<regNo>-<month>", eg. "7-2026-04"
	RegNo  int       `json:"reg_no" bson:"regNo"`
	Class  string    `json:"class" bson:"class"`
	Month  string    `json:"month" bson:"month"` // YYYY-MM
	Amount int       `json:"amount" bson:"amount"`
	Paid   bool      `json:"paid" bson:"paid"`
	PaidAt time.Time `json:"paid_at,omitempty" bson:"paidAt,omitempty"` // UTC
}

// NewFee bills one student for one month.
type NewFee struct {
	RegNo  int    `json:"reg_no" validate:"required,gt=0"`
	Class  string `json:"class" validate:"required"`
	Month  string `json:"month" validate:"required,datetime=2006-01"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	return validate.Struct(nf)
}

type QueryFilter struct {
	RegNo int    `query:"reg_no"`
	Class string `query:"class"`
	Month string `query:"month"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.RegNo == 0 && qf.Class == "" && qf.Month == ""
}

type Repository interface {
	CreateFee(ctx context.Context, f Fee) (Fee, error)
	GetFeeByID(ctx context.Context, id string) (Fee, error)
	FilterFees(ctx context.Context, filter QueryFilter) ([]Fee, error)
	UpdateFee(ctx context.Context, f Fee) (Fee, error)
	DeleteFeesByID(ctx context.Context, ids ...string) error
}
