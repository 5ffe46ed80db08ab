package inmemdb

import (
	_ "embed"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/user"
)

//go:embed seed.yaml
var seedYAML []byte

type (
	seedFile struct {
		Users      []seedUser     `yaml:"users"`
		Categories []seedCategory `yaml:"categories"`
		Courses    []seedCourse   `yaml:"courses"`
	}

	seedUser struct {
		ID       string `yaml:"id"`
		Email    string `yaml:"email"`
		Role     string `yaml:"role"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	}

	seedCategory struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	}

	seedCourse struct {
		ID          string  `yaml:"id"`
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		Instructor  string  `yaml:"instructor"`
		AuthorID    string  `yaml:"authorId"`
		Category    string  `yaml:"category"`
		Level       string  `yaml:"level"`
		Price       float64 `yaml:"price"`
		Rating      float64 `yaml:"rating"`
		Students    int     `yaml:"students"`
		Status      string  `yaml:"status"`
		Image       string  `yaml:"image"`
	}

	seedData struct {
		users      []user.User
		categories []learning.Category
		courses    []learning.Course
	}
)

// loadSeed decodes the embedded seed and adds the master administrator from admin.
func loadSeed(admin core.AdminCredential) (seedData, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedYAML, &file); err != nil {
		return seedData{}, errors.Wrap(err, "decoding seed")
	}

	// a fixed timestamp keeps seeded rows identical across restarts
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	var sd seedData
	for _, su := range file.Users {
		usr := user.User{
			ID:        su.ID,
			Email:     su.Email,
			Role:      user.Role(su.Role),
			Username:  su.Username,
			CreatedAt: epoch,
			UpdatedAt: epoch,
		}
		if su.Password != "" {
			if err := usr.SetPassword(su.Password); err != nil {
				return seedData{}, errors.Wrapf(err, "seeding user %s", su.ID)
			}
		}
		sd.users = append(sd.users, usr)
	}
	if admin.Email != "" {
		sd.users = append(sd.users, user.User{
			ID:        admin.ID,
			Email:     admin.Email,
			Role:      user.RoleAdmin,
			Username:  admin.Username,
			CreatedAt: epoch,
			UpdatedAt: epoch,
		})
	}

	for _, sc := range file.Categories {
		sd.categories = append(sd.categories, learning.Category{ID: sc.ID, Name: sc.Name})
	}

	for _, sc := range file.Courses {
		sd.courses = append(sd.courses, learning.Course{
			ID:          sc.ID,
			Title:       sc.Title,
			Description: sc.Description,
			Instructor:  sc.Instructor,
			AuthorID:    sc.AuthorID,
			Category:    sc.Category,
			Level:       learning.Level(sc.Level),
			Price:       sc.Price,
			Rating:      sc.Rating,
			Students:    sc.Students,
			Status:      learning.ParseStatus(sc.Status),
			Image:       sc.Image,
			Lessons:     []learning.Lesson{},
			Resources:   []learning.Resource{},
			Tags:        []string{},
			CreatedAt:   epoch,
		})
	}
	return sd, nil
}
