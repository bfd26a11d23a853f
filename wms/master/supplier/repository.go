package supplier

import (
	"context"
	"errors"
	"strings"

	"intake-app/apperror"

	"gorm.io/gorm"
)

// Directory looks suppliers up by code.
type Directory interface {
	Lookup(ctx context.Context, code string) (*Supplier, error)
}

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Lookup(ctx context.Context, code string) (*Supplier, error) {
	var s Supplier
	err := r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&s).Error
	if err != nil {
		return nil, apperror.FromDB(err, "supplier_code", "supplier "+code+" not found")
	}
	return &s, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	err := r.db.WithContext(ctx).Order("code asc").Find(&suppliers).Error
	return suppliers, err
}

func (r *SupplierRepository) Create(ctx context.Context, in CreateInput) (*Supplier, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := apperror.ValidateStruct(in); err != nil {
		return nil, err
	}

	var existing Supplier
	err := r.db.WithContext(ctx).Unscoped().Where("code = ?", in.Code).First(&existing).Error
	if err == nil {
		return nil, apperror.Conflict("code", "supplier code already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s := &Supplier{
		Code:      in.Code,
		Name:      in.Name,
		Country:   in.Country,
		Phone:     in.Phone,
		CreatedBy: in.Operator,
		UpdatedBy: in.Operator,
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}
