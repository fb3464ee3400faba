package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"mingle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds attendee records and persists them to the database.
// Intended for development and testing only.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// BuildAttendee constructs an attendee without persisting it. Overrides run
// after the random fields are set.
func (f *Factory) BuildAttendee(overrides ...func(*models.User)) *models.User {
	gender := models.GenderFemale
	if rand.IntN(2) == 0 {
		gender = models.GenderMale
	}

	interests := []models.Interest{models.InterestMale, models.InterestFemale, models.InterestBoth}
	sides := []models.Side{models.SideGroom, models.SideBride}

	name := gofakeit.Name()
	user := &models.User{
		Username: usernameFor(name),
		Name:     name,
		Password: "",
		Gender:   gender,
		Interest: interests[rand.IntN(len(interests))],
		Side:     sides[rand.IntN(len(sides))],
		Type:     models.UserTypeUser,
		Image:    fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateAttendee builds and persists an attendee.
func (f *Factory) CreateAttendee(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildAttendee(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func usernameFor(name string) string {
	base := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	return fmt.Sprintf("%s%d", base, rand.IntN(1_000_000_000))
}
