package supplier

import (
	"errors"

	"gorm.io/gorm"
)

func SeedSupplier(db *gorm.DB) error {
	suppliers := []Supplier{
		{Code: "SUP-MUR01", Name: "Murang'a Highland Growers", Country: "KE"},
		{Code: "SUP-KIS02", Name: "Kisii Smallholder Co-op", Country: "KE"},
		{Code: "SUP-MER03", Name: "Meru Fresh Produce", Country: "KE"},
	}

	for _, s := range suppliers {
		var existing Supplier
		err := db.Where("code = ?", s.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.CreatedBy = "seeder"
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
