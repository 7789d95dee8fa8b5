package seed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"storyhive/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumReaders  int
	NumStories  int
	ShouldClean bool
	// SkipBcrypt stores plaintext passwords. Dev fast mode only.
	SkipBcrypt bool
	// MaxDays spreads story timestamps over this many days back.
	MaxDays int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder over the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// ClearAll truncates all seedable tables.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE likes, comments, stories, profiles, accounts RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Run seeds the full dataset: one well-known admin, NumReaders readers,
// NumStories admin-authored stories, then comments and likes across them.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d readers and %d stories...", s.opts.NumReaders, s.opts.NumStories)

	admin, err := s.EnsureAdmin("admin@storyhive.dev", "Storyhive Admin")
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	readers := make([]*models.Profile, 0, s.opts.NumReaders)
	for i := 0; i < s.opts.NumReaders; i++ {
		_, profile, err := s.factory.CreateAccount()
		if err != nil {
			return fmt.Errorf("failed to create reader: %w", err)
		}
		readers = append(readers, profile)
	}
	log.Printf("Created %d readers", len(readers))

	stories := make([]*models.Story, 0, s.opts.NumStories)
	for i := 0; i < s.opts.NumStories; i++ {
		story, err := s.factory.CreateStory(admin)
		if err != nil {
			return fmt.Errorf("failed to create story: %w", err)
		}
		stories = append(stories, story)
	}
	log.Printf("Created %d stories", len(stories))

	if err := s.seedEngagement(readers, stories); err != nil {
		return err
	}

	log.Println("Seeding complete. All seeded users have the password: password123")
	return nil
}

// seedEngagement scatters comments and likes from readers over stories.
// Each reader likes a random subset of stories, so (user, story) pairs stay
// unique without retry loops.
func (s *Seeder) seedEngagement(readers []*models.Profile, stories []*models.Story) error {
	comments, likes := 0, 0
	for _, story := range stories {
		for _, reader := range readers {
			if s.factory.r.Intn(3) == 0 {
				if err := s.factory.CreateLike(reader, story); err != nil {
					return fmt.Errorf("failed to create like: %w", err)
				}
				likes++
			}
			if s.factory.r.Intn(4) == 0 {
				if _, err := s.factory.CreateComment(reader, story); err != nil {
					return fmt.Errorf("failed to create comment: %w", err)
				}
				comments++
			}
		}
	}
	log.Printf("Created %d likes and %d comments", likes, comments)
	return nil
}

// EnsureAdmin creates the named admin account if it does not exist yet, and
// returns its profile. Idempotent so repeated seed runs reuse the same admin.
func (s *Seeder) EnsureAdmin(email, fullName string) (*models.Profile, error) {
	email = strings.ToLower(email)

	var existing models.Profile
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if !existing.IsAdmin {
			if err := s.db.Model(&existing).Update("is_admin", true).Error; err != nil {
				return nil, err
			}
			existing.IsAdmin = true
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := &models.Account{Email: email, Password: string(hashed), FullName: fullName}
	if err := s.db.Create(account).Error; err != nil {
		return nil, err
	}
	profile := &models.Profile{ID: account.ID, Email: email, FullName: fullName, IsAdmin: true}
	if err := s.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
