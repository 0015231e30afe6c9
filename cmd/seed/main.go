package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/config"
	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/container"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
	pginfra "github.com/oksasatya/edugrant/internal/infrastructure/postgres"
	"github.com/oksasatya/edugrant/internal/infrastructure/search"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

// seed creates a demo admin, a demo student and a few scholarships owned by the admin.
// Re-running it reuses the identities and skips scholarships the admin already has by name.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	identities := pginfra.NewIdentityRepository(pool)
	stores := container.Stores{
		Identities:    identities,
		Scholarships:  pginfra.NewScholarshipRepository(pool),
		Applications:  pginfra.NewApplicationRepository(pool),
		Notifications: pginfra.NewNotificationRepository(pool),
	}
	var adapters container.Adapters
	if es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass); err == nil && es != nil {
		adapters.Index = search.NewScholarshipIndex(es, cfg.ESScholarshipsIndex)
	}
	svc := container.BuildServices(cfg, logger, helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL, cfg.AppName), stores, adapters)

	admin, err := ensureIdentity(ctx, identities, entity.NewAdmin("admin@edugrant.local", "Demo Admin", entity.AdminProfile{
		Organization: "EduGrant Foundation",
		Department:   "Scholarships",
		Designation:  "Program Officer",
		EmployeeID:   "EG-001",
	}))
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	student, err := ensureIdentity(ctx, identities, entity.NewStudent("student@edugrant.local", "Demo Student", entity.StudentProfile{
		College:       "City College",
		CGPA:          8.7,
		Class12Marks:  91,
		HighestDegree: "High School",
		CurrentDegree: "Undergraduate",
		FieldOfStudy:  "Computer Science",
	}))
	if err != nil {
		logger.Fatalf("failed to seed student: %v", err)
	}
	logger.WithFields(logrus.Fields{"admin": admin.Email, "student": student.Email}).Info("seeded identities")

	existing, err := svc.Scholarships.List(ctx, admin.ID)
	if err != nil {
		logger.Fatalf("failed to list scholarships: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, sc := range existing {
		have[sc.Name] = true
	}

	deadline := func(days int) string { return time.Now().AddDate(0, 0, days).Format(entity.DateLayout) }
	for _, in := range []application.CreateScholarshipInput{
		{
			Name: "Merit Excellence Award", Provider: "EduGrant Foundation", Amount: 5000, Deadline: deadline(2),
			Category: "Merit", GPARequirement: 8.5, DegreeLevel: "Undergraduate",
			Description: "For undergraduates with an outstanding academic record.",
			Eligibility: []string{"CGPA 8.5 or above", "Full-time enrolment"},
		},
		{
			Name: "Women in STEM Grant", Provider: "EduGrant Foundation", Amount: 7500, Deadline: deadline(30),
			Category: "Diversity", GPARequirement: 7, DegreeLevel: "Undergraduate",
			Description: "Supports women pursuing science and engineering degrees.",
			Eligibility: []string{"Identifies as a woman", "STEM major"},
		},
		{
			Name: "Graduate Research Fellowship", Provider: "EduGrant Foundation", Amount: 12000, Deadline: deadline(60),
			Category: "Research", GPARequirement: 8, DegreeLevel: "Postgraduate",
			Description: "Funds a year of postgraduate research.",
			Eligibility: []string{"Enrolled in a master's or PhD programme"},
		},
	} {
		if have[in.Name] {
			continue
		}
		sc, err := svc.Scholarships.Create(ctx, admin, in)
		if err != nil {
			logger.Fatalf("failed to seed scholarship %q: %v", in.Name, err)
		}
		logger.WithFields(logrus.Fields{"id": sc.ID, "slug": sc.Slug, "deadline": in.Deadline}).Info("seeded scholarship")
	}
}

func ensureIdentity(ctx context.Context, identities repo.IdentityRepository, want *entity.Identity) (*entity.Identity, error) {
	got, err := identities.GetByEmail(ctx, want.Email)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := identities.Create(ctx, want); err != nil {
		return nil, err
	}
	return want, nil
}
