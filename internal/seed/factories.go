// Package seed provides helpers to create demo data for the Storyhive
// database. Development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"storyhive/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	r    *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	return &Factory{db: db, opts: opts, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateAccount constructs and persists an Account with its Profile row.
// All seeded accounts share the password "password123". Optional overrides
// run against the profile before saving.
func (f *Factory) CreateAccount(overrides ...func(*models.Account, *models.Profile)) (*models.Account, *models.Profile, error) {
	name := gofakeit.Name()
	account := &models.Account{
		Email:     strings.ToLower(gofakeit.Email()),
		FullName:  name,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		account.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		account.Password = string(hashed)
	}

	profile := &models.Profile{
		Email:     account.Email,
		FullName:  name,
		AvatarURL: account.AvatarURL,
	}

	for _, override := range overrides {
		override(account, profile)
	}

	if err := f.db.Create(account).Error; err != nil {
		return nil, nil, err
	}
	profile.ID = account.ID
	if err := f.db.Create(profile).Error; err != nil {
		return nil, nil, err
	}
	return account, profile, nil
}

// CreateStory constructs and persists a Story attributed to the given author
// profile, with a realistic created_at spread.
func (f *Factory) CreateStory(author *models.Profile, overrides ...func(*models.Story)) (*models.Story, error) {
	story := &models.Story{
		Title:      gofakeit.Sentence(5),
		Content:    gofakeit.Paragraph(3, 4, 8, "\n\n"),
		AuthorID:   author.ID,
		AuthorName: author.FullName,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	story.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(story)
	}

	if err := f.db.Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

// CreateComment persists a comment on the story authored by the given profile.
func (f *Factory) CreateComment(commenter *models.Profile, story *models.Story, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		StoryID:  story.ID,
		UserID:   commenter.ID,
		UserName: commenter.FullName,
		Content:  gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from the profile on the story. The unique index
// on (user_id, story_id) makes duplicates fail; callers pick distinct pairs.
func (f *Factory) CreateLike(liker *models.Profile, story *models.Story) error {
	like := &models.Like{
		UserID:  liker.ID,
		StoryID: story.ID,
	}
	return f.db.Create(like).Error
}
