// Package seed provides database seeding for the wedding singles pool:
// the one-time admin account plus optional demo attendees for development.
package seed

import (
	"log"

	"mingle/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
}

const (
	adminUsername = "admin"
	adminPassword = "12345678"
)

// EnsureAdmin creates the admin account if it does not exist yet. Safe to run
// on every startup; an existing admin row is left untouched.
func EnsureAdmin(db *gorm.DB) error {
	var existing models.User
	err := db.Where("username = ?", adminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: adminUsername,
		Name:     "Admin",
		Password: string(hash),
		Gender:   models.GenderMale,
		Interest: models.InterestBoth,
		Side:     models.SideGroom,
		Type:     models.UserTypeAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin account (id=%d)", admin.ID)
	return nil
}

// Run seeds the database according to the given options: ensures the admin
// account, then fills the pool with fake attendees.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		log.Println("Cleaning users table...")
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.User{}).Error; err != nil {
			return err
		}
	}

	if err := EnsureAdmin(db); err != nil {
		return err
	}

	if opts.NumUsers <= 0 {
		return nil
	}

	f := NewFactory(db)
	log.Printf("Creating %d attendees...", opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		if _, err := f.CreateAttendee(); err != nil {
			return err
		}
	}

	log.Println("Seeding complete")
	return nil
}
