package supplier

import (
	"gorm.io/gorm"
)

type Supplier struct {
	gorm.Model
	Code      string `json:"code" gorm:"size:50;uniqueIndex"`
	Name      string `json:"name" gorm:"size:150"`
	Country   string `json:"country" gorm:"size:50"`
	Phone     string `json:"phone" gorm:"size:30"`
	CreatedBy string `json:"created_by" gorm:"size:100"`
	UpdatedBy string `json:"updated_by" gorm:"size:100"`
}

type CreateInput struct {
	Code     string `json:"code" validate:"required,max=50"`
	Name     string `json:"name" validate:"required"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Operator string `json:"-"`
}
