package seed

import (
	"intake-app/wms/master/supplier"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type seeder struct {
	name string
	run  func(db *gorm.DB) error
}

var seeders = []seeder{
	{name: "suppliers", run: supplier.SeedSupplier},
}

// RunSeeders applies every seeder in order and stops at the first failure.
// Seeders are idempotent.
func RunSeeders(db *gorm.DB, logger *logrus.Logger) error {
	for _, s := range seeders {
		if err := s.run(db); err != nil {
			logger.WithError(err).WithField("seeder", s.name).Error("seeding failed")
			return err
		}
		logger.WithField("seeder", s.name).Info("seeded")
	}
	return nil
}
