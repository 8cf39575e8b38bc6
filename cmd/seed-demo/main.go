package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/classwork-backend/internal/cache"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/database"
	"github.com/stemsi/classwork-backend/internal/logger"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/storage"
)

const demoPassword = "classwork123"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	store, err := storage.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL, cfg.JWTSecret, cfg.SignedURLTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}

	userRepo := repository.NewUserRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	authService := service.NewAuthService(cfg, userRepo, nil, log)
	userService := service.NewUserService(userRepo, authService, log)
	classService := service.NewClassService(repository.NewClassRepository(pool))
	subjectService := service.NewSubjectService(repository.NewSubjectRepository(pool), log)
	mediaService := service.NewMediaService(store, cfg.MaxUploadBytes, log)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		repository.NewQuestionRepository(pool),
		repository.NewAttachmentRepository(pool),
		mediaService,
		cache.NewAssignmentCache(rdb, cfg.PayloadCacheTTL),
		log,
	)
	linkService := service.NewLinkService(
		repository.NewShareableLinkRepository(pool),
		assignmentRepo,
		assignmentService,
		cache.NewViewQueue(rdb),
		cfg.ShareLinkBaseURL,
		log,
	)

	fmt.Println("=== Seeding Demo Classroom ===")

	// ─── Class & Subject ───────────────────────────────────────────────
	classID := findOrCreateClass(ctx, classService, "Kindergarten B", "B", 1)
	subjectID := findOrCreateSubject(ctx, subjectService, "Science")
	fmt.Printf("Using class %d and subject %d\n", classID, subjectID)

	// ─── Users ─────────────────────────────────────────────────────────
	teacher := ensureUser(ctx, userService, userRepo, &model.CreateUserRequest{
		Email:    "teacher@classwork.local",
		Name:     "Demo Teacher",
		Password: demoPassword,
		Role:     model.RoleTeacher,
	})

	students := []string{"Ayu Lestari", "Budi Santoso", "Citra Kirana", "Dimas Anggara", "Eka Putri"}
	for i, name := range students {
		ensureUser(ctx, userService, userRepo, &model.CreateUserRequest{
			Email:    fmt.Sprintf("student%d@classwork.local", i+1),
			Name:     name,
			Password: demoPassword,
			Role:     model.RoleStudent,
			ClassID:  &classID,
		})
	}
	fmt.Printf("Ensured %d students (password %q)\n", len(students), demoPassword)

	// ─── Assignment ────────────────────────────────────────────────────
	a, err := assignmentService.Create(ctx, animalSounds(classID, subjectID), nil, teacher.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assignment")
	}
	if _, err := assignmentService.Publish(ctx, a.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish assignment")
	}
	fmt.Printf("Published assignment %q (%s)\n", a.Title, a.ID)

	link, err := linkService.CreateShareableLink(ctx, &model.CreateShareableLinkRequest{
		ContentType: model.LinkContentAssignment,
		ContentID:   a.ID,
	}, teacher.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create share link")
	}
	fmt.Printf("Share link: %s\n", link.URL)

	fmt.Println("\nSeed completed!")
}

func findOrCreateClass(ctx context.Context, svc *service.ClassService, name, section string, grade int) int {
	classes, err := svc.List(ctx)
	if err != nil {
		panic(fmt.Errorf("list classes: %w", err))
	}
	for _, c := range classes {
		if c.Name == name && c.Section == section {
			return c.ID
		}
	}
	c, err := svc.Create(ctx, &model.CreateClassRequest{Name: name, Section: section, GradeLevel: grade})
	if err != nil {
		panic(fmt.Errorf("create class: %w", err))
	}
	return c.ID
}

func findOrCreateSubject(ctx context.Context, svc *service.SubjectService, name string) int {
	subjects, err := svc.GetAll(ctx)
	if err != nil {
		panic(fmt.Errorf("list subjects: %w", err))
	}
	for _, s := range subjects {
		if s.Name == name {
			return s.ID
		}
	}
	s, err := svc.Create(ctx, &model.SubjectRequest{Name: name})
	if err != nil {
		panic(fmt.Errorf("create subject: %w", err))
	}
	return s.ID
}

// ensureUser creates the account or returns the existing one with that email.
func ensureUser(ctx context.Context, svc *service.UserService, repo *repository.UserRepository, req *model.CreateUserRequest) *model.User {
	u, err := svc.Create(ctx, req)
	if errors.Is(err, repository.ErrConflict) {
		u, err = repo.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		panic(fmt.Errorf("ensure user %s: %w", req.Email, err))
	}
	return u
}

func animalSounds(classID, subjectID int) *model.CreateAssignmentRequest {
	pairs := func(ps ...question.MatchingPair) json.RawMessage {
		raw, _ := json.Marshal(question.MatchingQuestion{Pairs: ps})
		return raw
	}
	hint := "Say the sound out loud first."

	return &model.CreateAssignmentRequest{
		Title:            "Animal Sounds",
		Description:      "Match every animal with the sound it makes.",
		Type:             string(question.Matching),
		ClassID:          classID,
		SubjectID:        subjectID,
		Difficulty:       model.DifficultyEasy,
		EstimatedMinutes: 10,
		AudioFeedback:    true,
		Celebration:      true,
		Questions: []model.QuestionInput{
			{
				QuestionType: question.Matching,
				QuestionText: "Match the farm animals with their sounds",
				QuestionData: pairs(
					question.MatchingPair{ID: "dog", Left: "Dog", Right: "Woof"},
					question.MatchingPair{ID: "cat", Left: "Cat", Right: "Meow"},
					question.MatchingPair{ID: "cow", Left: "Cow", Right: "Moo"},
				),
				Hint: &hint,
			},
			{
				QuestionType: question.Matching,
				QuestionText: "Match the birds with their calls",
				QuestionData: pairs(
					question.MatchingPair{ID: "duck", Left: "Duck", Right: "Quack"},
					question.MatchingPair{ID: "owl", Left: "Owl", Right: "Hoot"},
				),
			},
			{
				QuestionType: question.Matching,
				QuestionText: "Match the wild animals with their sounds",
				QuestionData: pairs(
					question.MatchingPair{ID: "lion", Left: "Lion", Right: "Roar"},
					question.MatchingPair{ID: "snake", Left: "Snake", Right: "Hiss"},
					question.MatchingPair{ID: "bee", Left: "Bee", Right: "Buzz"},
				),
			},
		},
	}
}
