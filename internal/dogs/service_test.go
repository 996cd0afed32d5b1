package dogs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubDogRepo struct {
	byPetID   map[int64]*models.Dog
	nextPetID int64
	createErr error
	deleteErr map[int64]error
	reunited  []int64
}

func newStubDogRepo() *stubDogRepo {
	return &stubDogRepo{byPetID: map[int64]*models.Dog{}, nextPetID: 1}
}

func (s *stubDogRepo) Create(ctx context.Context, dog *models.Dog) (*models.Dog, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	dog.ID = uuid.New()
	dog.PetID = s.nextPetID
	s.nextPetID++
	s.byPetID[dog.PetID] = dog
	return dog, nil
}

func (s *stubDogRepo) FindByPetID(ctx context.Context, petID int64) (*models.Dog, error) {
	dog, ok := s.byPetID[petID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *dog
	return &copied, nil
}

func (s *stubDogRepo) ListByCategory(ctx context.Context, category enums.DogCategory) ([]models.Dog, error) {
	var rows []models.Dog
	for _, dog := range s.byPetID {
		if dog.Category == category && !dog.Reunited {
			rows = append(rows, *dog)
		}
	}
	return rows, nil
}

func (s *stubDogRepo) Save(ctx context.Context, dog *models.Dog) error {
	s.byPetID[dog.PetID] = dog
	return nil
}

func (s *stubDogRepo) MarkReunited(ctx context.Context, petIDs ...int64) error {
	for _, id := range petIDs {
		if dog, ok := s.byPetID[id]; ok {
			dog.Reunited = true
			s.reunited = append(s.reunited, id)
		}
	}
	return nil
}

func (s *stubDogRepo) Delete(ctx context.Context, petID int64) error {
	if err := s.deleteErr[petID]; err != nil {
		return err
	}
	delete(s.byPetID, petID)
	return nil
}

type stubStatsRepo struct {
	increments int
	decrements int
	incErr     error
}

func (s *stubStatsRepo) IncrementReunited(ctx context.Context) error {
	if s.incErr != nil {
		return s.incErr
	}
	s.increments++
	return nil
}

func (s *stubStatsRepo) DecrementReunited(ctx context.Context) error {
	s.decrements++
	return nil
}

type stubFileStore struct {
	writes    map[string][]byte
	deletes   []string
	writeErr  error
	deleteErr error
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{writes: map[string][]byte{}}
}

func (s *stubFileStore) Write(relPath string, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes[relPath] = data
	return nil
}

func (s *stubFileStore) Delete(relPath string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, relPath)
	return nil
}

type stubBroadcaster struct {
	reported []int64
	updated  []int64
	reunited []int64
	deleted  []int64
}

func (s *stubBroadcaster) DogReported(ctx context.Context, dog *models.Dog) {
	s.reported = append(s.reported, dog.PetID)
}

func (s *stubBroadcaster) DogUpdated(ctx context.Context, dog *models.Dog) {
	s.updated = append(s.updated, dog.PetID)
}

func (s *stubBroadcaster) DogReunited(ctx context.Context, dog *models.Dog) {
	s.reunited = append(s.reunited, dog.PetID)
}

func (s *stubBroadcaster) MatchDeleted(ctx context.Context, petID int64) {
	s.deleted = append(s.deleted, petID)
}

type serviceSetup struct {
	service Service
	repo    *stubDogRepo
	stats   *stubStatsRepo
	files   *stubFileStore
	events  *stubBroadcaster
}

func newServiceSetup(t *testing.T) *serviceSetup {
	t.Helper()
	repo := newStubDogRepo()
	statsRepo := &stubStatsRepo{}
	files := newStubFileStore()
	events := &stubBroadcaster{}
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		Stats:          statsRepo,
		Files:          files,
		Broadcaster:    events,
		MaxUploadBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &serviceSetup{service: svc, repo: repo, stats: statsRepo, files: files, events: events}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func seedPair(t *testing.T, setup *serviceSetup) (lost, found *models.Dog) {
	t.Helper()
	lostPath, foundPath := "/lost-dogs/1-a.png", "/found-dogs/2-b.png"
	lost = &models.Dog{Category: enums.DogCategoryLost, OwnerID: uuid.New(), Name: "Rex", ImagePath: &lostPath}
	found = &models.Dog{Category: enums.DogCategoryFound, OwnerID: uuid.New(), Name: "Stray", ImagePath: &foundPath}
	for _, dog := range []*models.Dog{lost, found} {
		if _, err := setup.repo.Create(context.Background(), dog); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return lost, found
}

func TestSubmitStoresImageAndEmits(t *testing.T) {
	setup := newServiceSetup(t)

	dto, err := setup.service.Submit(context.Background(), uuid.New(), enums.DogCategoryLost, SubmitDogInput{
		Name:  "Rex",
		Image: &UploadedImage{FileName: "my photo.png", Data: testPNG(t)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if dto.PetID == 0 {
		t.Fatalf("expected assigned pet id")
	}
	if dto.ImagePath == nil || !strings.HasPrefix(*dto.ImagePath, "/lost-dogs/") {
		t.Fatalf("expected image under /lost-dogs/, got %v", dto.ImagePath)
	}
	if len(setup.files.writes) != 1 {
		t.Fatalf("expected one stored file, got %d", len(setup.files.writes))
	}
	for relPath := range setup.files.writes {
		if strings.Contains(relPath, " ") {
			t.Fatalf("expected sanitized filename, got %q", relPath)
		}
	}
	if len(setup.events.reported) != 1 || setup.events.reported[0] != dto.PetID {
		t.Fatalf("expected DogReported for %d, got %v", dto.PetID, setup.events.reported)
	}
}

func TestSubmitWithoutImage(t *testing.T) {
	setup := newServiceSetup(t)

	dto, err := setup.service.Submit(context.Background(), uuid.New(), enums.DogCategoryFound, SubmitDogInput{Name: "Stray"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if dto.ImagePath != nil {
		t.Fatalf("expected no image path, got %v", *dto.ImagePath)
	}
}

func TestSubmitRejectsBadExtension(t *testing.T) {
	setup := newServiceSetup(t)

	_, err := setup.service.Submit(context.Background(), uuid.New(), enums.DogCategoryLost, SubmitDogInput{
		Name:  "Rex",
		Image: &UploadedImage{FileName: "notes.pdf", Data: testPNG(t)},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for pdf, got %v", err)
	}
}

func TestSubmitRejectsMismatchedContent(t *testing.T) {
	setup := newServiceSetup(t)

	_, err := setup.service.Submit(context.Background(), uuid.New(), enums.DogCategoryLost, SubmitDogInput{
		Name:  "Rex",
		Image: &UploadedImage{FileName: "fake.png", Data: []byte("plain text pretending")},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for sniffed mismatch, got %v", err)
	}
}

func TestSubmitRejectsOversizedImage(t *testing.T) {
	setup := newServiceSetup(t)
	repo := setup.repo

	svc, err := NewService(ServiceParams{
		Repo:           repo,
		Stats:          setup.stats,
		Files:          setup.files,
		MaxUploadBytes: 10,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Submit(context.Background(), uuid.New(), enums.DogCategoryLost, SubmitDogInput{
		Name:  "Rex",
		Image: &UploadedImage{FileName: "big.png", Data: testPNG(t)},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized image, got %v", err)
	}
}

func TestSubmitRequiresName(t *testing.T) {
	setup := newServiceSetup(t)

	_, err := setup.service.Submit(context.Background(), uuid.New(), enums.DogCategoryLost, SubmitDogInput{Name: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	setup := newServiceSetup(t)
	lost, _ := seedPair(t, setup)

	name := "Buddy"
	_, err := setup.service.Update(context.Background(), uuid.New(), lost.PetID, UpdateDogInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestUpdateSwapsImageAndCleansUp(t *testing.T) {
	setup := newServiceSetup(t)
	lost, _ := seedPair(t, setup)

	dto, err := setup.service.Update(context.Background(), lost.OwnerID, lost.PetID, UpdateDogInput{
		Image: &UploadedImage{FileName: "new.png", Data: testPNG(t)},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.ImagePath == nil || *dto.ImagePath == "/lost-dogs/1-a.png" {
		t.Fatalf("expected new image path, got %v", dto.ImagePath)
	}
	if len(setup.files.deletes) != 1 || setup.files.deletes[0] != "lost-dogs/1-a.png" {
		t.Fatalf("expected stale image deleted, got %v", setup.files.deletes)
	}
	if len(setup.events.updated) != 1 {
		t.Fatalf("expected DogUpdated event, got %v", setup.events.updated)
	}
}

func TestUpdateNotFound(t *testing.T) {
	setup := newServiceSetup(t)

	name := "Ghost"
	_, err := setup.service.Update(context.Background(), uuid.New(), 404, UpdateDogInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReuniteMarksBothAndIncrements(t *testing.T) {
	setup := newServiceSetup(t)
	lost, found := seedPair(t, setup)

	err := setup.service.Reunite(context.Background(), MatchPairInput{
		LostPetID:  lost.PetID,
		FoundPetID: found.PetID,
	})
	if err != nil {
		t.Fatalf("reunite: %v", err)
	}

	if len(setup.repo.reunited) != 2 {
		t.Fatalf("expected both reports marked, got %v", setup.repo.reunited)
	}
	if setup.stats.increments != 1 {
		t.Fatalf("expected one stats increment, got %d", setup.stats.increments)
	}
	if len(setup.events.reunited) != 1 || setup.events.reunited[0] != lost.PetID {
		t.Fatalf("expected dogReunited for the lost report, got %v", setup.events.reunited)
	}
}

func TestReuniteRejectsWrongCategories(t *testing.T) {
	setup := newServiceSetup(t)
	lost, found := seedPair(t, setup)

	// Swapped: lost_pet_id pointing at the found report.
	err := setup.service.Reunite(context.Background(), MatchPairInput{
		LostPetID:  found.PetID,
		FoundPetID: lost.PetID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for swapped pair, got %v", err)
	}
}

func TestDeleteMatchRemovesEverything(t *testing.T) {
	setup := newServiceSetup(t)
	lost, found := seedPair(t, setup)

	err := setup.service.DeleteMatch(context.Background(), MatchPairInput{
		LostPetID:  lost.PetID,
		FoundPetID: found.PetID,
	})
	if err != nil {
		t.Fatalf("delete match: %v", err)
	}

	if len(setup.repo.byPetID) != 0 {
		t.Fatalf("expected both records deleted, %d remain", len(setup.repo.byPetID))
	}
	if len(setup.files.deletes) != 2 {
		t.Fatalf("expected both images deleted, got %v", setup.files.deletes)
	}
	if setup.stats.decrements != 1 {
		t.Fatalf("expected one stats decrement, got %d", setup.stats.decrements)
	}
	if len(setup.events.deleted) != 2 {
		t.Fatalf("expected matchDeleted for both reports, got %v", setup.events.deleted)
	}
}

func TestDeleteMatchAggregatesPartialFailures(t *testing.T) {
	setup := newServiceSetup(t)
	lost, found := seedPair(t, setup)

	setup.repo.deleteErr = map[int64]error{lost.PetID: errors.New("record locked")}
	setup.files.deleteErr = fmt.Errorf("disk detached")

	err := setup.service.DeleteMatch(context.Background(), MatchPairInput{
		LostPetID:  lost.PetID,
		FoundPetID: found.PetID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error for partial cleanup, got %v", err)
	}

	cause := errors.Unwrap(typed)
	if cause == nil || !strings.Contains(cause.Error(), "record locked") || !strings.Contains(cause.Error(), "disk detached") {
		t.Fatalf("expected both failures aggregated, got %v", cause)
	}
	if len(setup.events.deleted) != 0 {
		t.Fatalf("expected no matchDeleted events on failure, got %v", setup.events.deleted)
	}
}
