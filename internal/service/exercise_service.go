package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExerciseNotFound = &DomainError{Code: CodeNotFound, Message: "exercise not found"}
	ErrStaffRequired    = &DomainError{Code: CodeForbidden, Message: "only coaches and admins can manage exercises"}
)

// ExerciseInput holds the editable fields of an exercise. On update nil
// pointers leave the stored value alone.
type ExerciseInput struct {
	Name        *string
	MuscleGroup *string
	Description *string
}

// ExerciseView is an exercise with a short-lived link to its media.
type ExerciseView struct {
	domain.Exercise
	MediaURL string `json:"mediaUrl,omitempty"`
}

// UploadTicket tells the client where to PUT a file and which key to
// confirm afterwards.
type UploadTicket struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ExerciseService interface {
	Create(ctx context.Context, actor Actor, in ExerciseInput) (*ExerciseView, error)
	Get(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseView, error)
	List(ctx context.Context) ([]ExerciseView, error)
	Update(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, in ExerciseInput) (*ExerciseView, error)
	Delete(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) error
	RequestMediaUploadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, contentType string) (*UploadTicket, error)
	// ConfirmMedia attaches an uploaded object to the exercise, replacing
	// (and deleting) the previous one.
	ConfirmMedia(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, objectKey, contentType string) (*ExerciseView, error)
}

type exerciseService struct {
	exercises     repository.ExerciseRepository
	files         storage.FileStorage
	audit         AuditRecorder
	clock         Clock
	presignExpiry time.Duration
}

func NewExerciseService(
	exercises repository.ExerciseRepository,
	files storage.FileStorage,
	audit AuditRecorder,
	clock Clock,
	presignExpiry time.Duration,
) ExerciseService {
	if clock == nil {
		clock = SystemClock
	}
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exerciseService{
		exercises:     exercises,
		files:         files,
		audit:         audit,
		clock:         clock,
		presignExpiry: presignExpiry,
	}
}

func (s *exerciseService) Create(ctx context.Context, actor Actor, in ExerciseInput) (*ExerciseView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffRequired
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validationError("exercise name is required")
	}

	exercise := &domain.Exercise{CreatedBy: actor.ID}
	applyExerciseInput(exercise, in)

	exerciseID, err := s.exercises.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID

	s.audit.Record(ctx, actor.ID, domain.AuditCreateExercise, fmt.Sprintf("exercise %s (%s)", exerciseID.Hex(), exercise.Name))
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) Get(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseView, error) {
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) List(ctx context.Context) ([]ExerciseView, error) {
	exercises, err := s.exercises.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ExerciseView, 0, len(exercises))
	for i := range exercises {
		out = append(out, *s.view(ctx, &exercises[i]))
	}
	return out, nil
}

func (s *exerciseService) Update(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, in ExerciseInput) (*ExerciseView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffRequired
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, validationError("exercise name cannot be empty")
	}
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	applyExerciseInput(exercise, in)
	if err := s.exercises.Update(ctx, exercise); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, domain.AuditUpdateExercise, fmt.Sprintf("exercise %s (%s)", exercise.ID.Hex(), exercise.Name))
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) Delete(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) error {
	if !actor.IsStaff() {
		return ErrStaffRequired
	}
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return err
	}
	if err := s.exercises.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	s.removeObject(ctx, exercise.MediaKey)

	s.audit.Record(ctx, actor.ID, domain.AuditDeleteExercise, fmt.Sprintf("exercise %s (%s)", exercise.ID.Hex(), exercise.Name))
	return nil
}

func (s *exerciseService) RequestMediaUploadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffRequired
	}
	if err := storage.CheckMediaType(contentType); err != nil {
		return nil, validationError("media must be an image or a video")
	}
	if _, err := s.load(ctx, exerciseID); err != nil {
		return nil, err
	}

	key := storage.NewObjectKey(exerciseMediaPrefix(exerciseID), contentType)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign media upload: %w", err)
	}
	return &UploadTicket{UploadURL: url, ObjectKey: key, ExpiresAt: s.clock().Add(s.presignExpiry)}, nil
}

func (s *exerciseService) ConfirmMedia(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, objectKey, contentType string) (*ExerciseView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffRequired
	}
	// only keys handed out for this exercise can be attached to it
	if !strings.HasPrefix(objectKey, exerciseMediaPrefix(exerciseID)+"/") {
		return nil, validationError("objectKey does not belong to this exercise")
	}
	if err := storage.CheckMediaType(contentType); err != nil {
		return nil, validationError("media must be an image or a video")
	}
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	previous := exercise.MediaKey
	exercise.MediaKey = objectKey
	exercise.MediaType = contentType
	if err := s.exercises.Update(ctx, exercise); err != nil {
		return nil, err
	}
	if previous != objectKey {
		s.removeObject(ctx, previous)
	}

	s.audit.Record(ctx, actor.ID, domain.AuditUpdateExercise, fmt.Sprintf("exercise %s media %s", exercise.ID.Hex(), objectKey))
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) load(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// view attaches a download link. A failed presign leaves the link empty
// rather than failing the read.
func (s *exerciseService) view(ctx context.Context, exercise *domain.Exercise) *ExerciseView {
	v := &ExerciseView{Exercise: *exercise}
	if exercise.MediaKey == "" {
		return v
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, s.presignExpiry)
	if err != nil {
		log.Printf("WARN: no media link for exercise %s: %v", exercise.ID.Hex(), err)
		return v
	}
	v.MediaURL = url
	return v
}

// removeObject deletes a stored object, best-effort.
func (s *exerciseService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.DeleteObject(ctx, key); err != nil {
		log.Printf("WARN: orphaned media object %s: %v", key, err)
	}
}

func applyExerciseInput(exercise *domain.Exercise, in ExerciseInput) {
	if in.Name != nil {
		exercise.Name = strings.TrimSpace(*in.Name)
	}
	if in.MuscleGroup != nil {
		exercise.MuscleGroup = strings.TrimSpace(*in.MuscleGroup)
	}
	if in.Description != nil {
		exercise.Description = strings.TrimSpace(*in.Description)
	}
}

func exerciseMediaPrefix(exerciseID primitive.ObjectID) string {
	return "exercises/" + exerciseID.Hex()
}
