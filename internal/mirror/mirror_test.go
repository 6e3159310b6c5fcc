package mirror_test

import (
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"stitchery/internal/mirror"
	"stitchery/internal/models"
	"stitchery/internal/repositories"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newStore(fs afero.Fs) *mirror.Store {
	return mirror.NewStore(fs, "/data/patterns.json", "/data/floss.json")
}

func TestStore_FlossRoundTripKeepsOrder(t *testing.T) {
	store := newStore(afero.NewMemMapFs())

	want := []mirror.FlossEntry{
		{Code: "DMC310", Length: 5.0},
		{Code: "DMC321", Length: 2.0},
		{Code: "DMC666", Length: -0.5},
		{Code: "ANCHOR403", Length: 8.7},
	}
	require.NoError(t, store.SaveFloss(want))

	got, err := store.LoadFloss()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_PatternRoundTrip(t *testing.T) {
	store := newStore(afero.NewMemMapFs())

	want := []mirror.PatternEntry{
		{Name: "Heart", FlossData: []string{"DMC310"}, ImageFilename: "a_heart.png", UserID: "u1"},
		{Name: "Rose", FlossData: []string{"DMC310", "DMC666"}, UserID: "u2"},
	}
	require.NoError(t, store.SavePatterns(want))

	got, err := store.LoadPatterns()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_MissingFilesLoadEmpty(t *testing.T) {
	store := newStore(afero.NewMemMapFs())

	patterns, err := store.LoadPatterns()
	require.NoError(t, err)
	assert.NotNil(t, patterns)
	assert.Empty(t, patterns)

	floss, err := store.LoadFloss()
	require.NoError(t, err)
	assert.NotNil(t, floss)
	assert.Empty(t, floss)
}

func TestStore_MalformedFilesLoadEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/floss.json", []byte("{not json"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/patterns.json", []byte(`[{"name": 12}]`), 0o644))
	store := newStore(fs)

	floss, err := store.LoadFloss()
	require.NoError(t, err)
	assert.Empty(t, floss)

	patterns, err := store.LoadPatterns()
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestStore_WritesPrettyJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)

	require.NoError(t, store.SaveFloss([]mirror.FlossEntry{{Code: "DMC310", Length: 1}}))

	data, err := afero.ReadFile(fs, "/data/floss.json")
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"code\": \"DMC310\",\n    \"length\": 1\n  }\n]", string(data))

	exists, err := afero.Exists(fs, "/data/floss.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExporter_Export(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)
	flossRepo := repositories.NewMockFlossRepository()
	patternRepo := repositories.NewMockPatternRepository()

	require.NoError(t, flossRepo.Create(&models.Floss{UserID: "u1", Code: "DMC310", Length: 5}))
	require.NoError(t, flossRepo.Create(&models.Floss{UserID: "u1", Code: "DMC321", Length: 2}))

	heart := &models.Pattern{Name: "Heart", UserID: "u1", ImageFilename: "x_heart.png"}
	require.NoError(t, heart.SetRequiredCodes([]string{"DMC310"}))
	require.NoError(t, patternRepo.Create(heart))
	broken := &models.Pattern{Name: "Broken", UserID: "u1", FlossCodes: datatypes.JSON("{oops")}
	require.NoError(t, patternRepo.Create(broken))

	exporter := mirror.NewExporter(store, flossRepo, patternRepo)
	require.NoError(t, exporter.Export())

	floss, err := store.LoadFloss()
	require.NoError(t, err)
	assert.Equal(t, []mirror.FlossEntry{
		{Code: "DMC310", Length: 5, UserID: "u1"},
		{Code: "DMC321", Length: 2, UserID: "u1"},
	}, floss)

	patterns, err := store.LoadPatterns()
	require.NoError(t, err)
	assert.Equal(t, []mirror.PatternEntry{
		{Name: "Heart", FlossData: []string{"DMC310"}, ImageFilename: "x_heart.png", UserID: "u1"},
		{Name: "Broken", FlossData: []string{}, UserID: "u1"},
	}, patterns)

	// A later mutation followed by a notification replaces the whole file.
	_, err = flossRepo.DeleteByCode("u1", "DMC310")
	require.NoError(t, err)
	exporter.NotifyChange(models.ChangeEvent{Kind: models.ChangeFlossRemoved, UserID: "u1", Subject: "DMC310"})

	floss, err = store.LoadFloss()
	require.NoError(t, err)
	assert.Equal(t, []mirror.FlossEntry{{Code: "DMC321", Length: 2, UserID: "u1"}}, floss)
}

// stallingFlossRepo blocks the first GetAll until release is closed.
type stallingFlossRepo struct {
	*repositories.MockFlossRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *stallingFlossRepo) GetAll() ([]models.Floss, error) {
	snapshot, err := r.MockFlossRepository.GetAll()
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	return snapshot, err
}

func TestExporter_OverlappingExportsKeepNewestSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)
	flossRepo := &stallingFlossRepo{
		MockFlossRepository: repositories.NewMockFlossRepository(),
		entered:             make(chan struct{}),
		release:             make(chan struct{}),
	}
	exporter := mirror.NewExporter(store, flossRepo, repositories.NewMockPatternRepository())

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	// First export reads the empty inventory and stalls before writing.
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- exporter.Export()
	}()
	<-flossRepo.entered

	require.NoError(t, flossRepo.Create(&models.Floss{UserID: "u1", Code: "DMC310", Length: 5}))

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- exporter.Export()
	}()

	// Let the second export run as far as it can before the first resumes.
	time.Sleep(20 * time.Millisecond)
	close(flossRepo.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	floss, err := store.LoadFloss()
	require.NoError(t, err)
	assert.Equal(t, []mirror.FlossEntry{{Code: "DMC310", Length: 5, UserID: "u1"}}, floss)
}
