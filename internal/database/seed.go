package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/models"
)

// DemoAdminEmail and DemoAdminPassword are the seeded login credentials.
const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "admin-demo-password"
)

// Seed fills an empty database with the demo dataset. It is a no-op when any
// user already exists.
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	techCorp := models.Organization{ID: uuid.NewString(), Name: "Tech Corp", Description: "Leading technology company", CreatedAt: day(1), UpdatedAt: day(1)}
	eduTech := models.Organization{ID: uuid.NewString(), Name: "EduTech Solutions", Description: "Educational technology provider", CreatedAt: day(2), UpdatedAt: day(2)}

	admin := models.User{ID: uuid.NewString(), Email: DemoAdminEmail, FirstName: "John", LastName: "Doe", PasswordHash: string(hash), CreatedAt: day(1), UpdatedAt: day(1)}
	alice := models.User{ID: uuid.NewString(), Email: "alice.johnson@example.com", FirstName: "Alice", LastName: "Johnson", CreatedAt: day(1), UpdatedAt: day(1)}
	bob := models.User{ID: uuid.NewString(), Email: "bob.smith@example.com", FirstName: "Bob", LastName: "Smith", CreatedAt: day(2), UpdatedAt: day(2)}
	carol := models.User{ID: uuid.NewString(), Email: "carol.davis@example.com", FirstName: "Carol", LastName: "Davis", CreatedAt: day(3), UpdatedAt: day(3)}

	memberships := []models.Membership{
		{ID: uuid.NewString(), UserID: admin.ID, OrganizationID: techCorp.ID, Role: models.RoleAdmin, CreatedAt: day(1)},
		{ID: uuid.NewString(), UserID: alice.ID, OrganizationID: techCorp.ID, Role: models.RoleAdmin, CreatedAt: day(1)},
		{ID: uuid.NewString(), UserID: bob.ID, OrganizationID: techCorp.ID, Role: models.RoleInstructor, CreatedAt: day(2)},
		{ID: uuid.NewString(), UserID: carol.ID, OrganizationID: eduTech.ID, Role: models.RoleLearner, CreatedAt: day(3)},
	}

	reactBasics := models.Course{ID: uuid.NewString(), Title: "React Fundamentals", Description: "Learn the basics of React development", OrganizationID: techCorp.ID, InstructorID: bob.ID, CreatedAt: day(1), UpdatedAt: day(1)}
	reactAdvanced := models.Course{ID: uuid.NewString(), Title: "Advanced React", Description: "Master advanced React concepts and patterns", OrganizationID: techCorp.ID, InstructorID: alice.ID, CreatedAt: day(2), UpdatedAt: day(2)}

	videos := []models.Video{
		{ID: uuid.NewString(), Title: "Introduction to Components", URL: "https://media.example.com/react/intro.mp4", Duration: 1200, Order: 1, CourseID: reactBasics.ID, CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: uuid.NewString(), Title: "Props and State", URL: "https://media.example.com/react/props.mp4", Duration: 1800, Order: 2, CourseID: reactBasics.ID, CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: uuid.NewString(), Title: "Event Handling", URL: "https://media.example.com/react/events.mp4", Duration: 1500, Order: 3, CourseID: reactBasics.ID, CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: uuid.NewString(), Title: "State Management", URL: "https://media.example.com/react/state.mp4", Duration: 2100, Order: 1, CourseID: reactAdvanced.ID, CreatedAt: day(2), UpdatedAt: day(2)},
	}

	completedAt := day(14)
	aliceBasics := models.Enrollment{ID: uuid.NewString(), UserID: alice.ID, CourseID: reactBasics.ID, Status: models.EnrollmentStatusActive, EnrolledAt: day(10)}
	bobAdvanced := models.Enrollment{ID: uuid.NewString(), UserID: bob.ID, CourseID: reactAdvanced.ID, Status: models.EnrollmentStatusCompleted, EnrolledAt: day(5), CompletedAt: &completedAt}
	carolBasics := models.Enrollment{ID: uuid.NewString(), UserID: carol.ID, CourseID: reactBasics.ID, Status: models.EnrollmentStatusActive, EnrolledAt: day(11)}

	watched := func(d, h, m int) time.Time { return time.Date(2024, 1, d, h, m, 0, 0, time.UTC) }
	progress := []models.VideoProgress{
		{ID: uuid.NewString(), UserID: alice.ID, VideoID: videos[0].ID, EnrollmentID: aliceBasics.ID, WatchedPercent: 100, LastWatchedAt: watched(14, 10, 30)},
		{ID: uuid.NewString(), UserID: alice.ID, VideoID: videos[1].ID, EnrollmentID: aliceBasics.ID, WatchedPercent: 75, LastWatchedAt: watched(14, 11, 15)},
		{ID: uuid.NewString(), UserID: alice.ID, VideoID: videos[2].ID, EnrollmentID: aliceBasics.ID, WatchedPercent: 30, LastWatchedAt: watched(14, 12, 0)},
		{ID: uuid.NewString(), UserID: bob.ID, VideoID: videos[3].ID, EnrollmentID: bobAdvanced.ID, WatchedPercent: 92, LastWatchedAt: watched(15, 9, 15)},
		{ID: uuid.NewString(), UserID: carol.ID, VideoID: videos[0].ID, EnrollmentID: carolBasics.ID, WatchedPercent: 67, LastWatchedAt: watched(15, 8, 45)},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := []interface{}{
			&[]models.Organization{techCorp, eduTech},
			&[]models.User{admin, alice, bob, carol},
			&memberships,
			&[]models.Course{reactBasics, reactAdvanced},
			&videos,
			&[]models.Enrollment{aliceBasics, bobAdvanced, carolBasics},
			&progress,
		}
		for _, r := range rows {
			if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
		}
		return nil
	})
}
