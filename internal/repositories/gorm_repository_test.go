package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"stitchery/internal/database"
	"stitchery/internal/models"
	"stitchery/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestGORMFlossRepository(t *testing.T) {
	repo := repositories.NewGORMFlossRepository(openTestDB(t))

	for _, code := range []string{"DMC310", "DMC321", "DMC666"} {
		require.NoError(t, repo.Create(&models.Floss{UserID: "u1", Code: code, Length: 5}))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, repo.Create(&models.Floss{UserID: "u2", Code: "DMC310", Length: 1}))

	// The (user_id, code) index rejects a second insert of the same code
	err := repo.Create(&models.Floss{UserID: "u1", Code: "DMC310", Length: 2})
	assert.ErrorIs(t, err, repositories.ErrDuplicateRecord)

	list, err := repo.GetAllByUser("u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "DMC310", list[0].Code)
	assert.Equal(t, "DMC321", list[1].Code)
	assert.Equal(t, "DMC666", list[2].Code)

	floss, err := repo.ApplyDelta("u1", "DMC321", -1.25)
	require.NoError(t, err)
	assert.InDelta(t, 3.75, floss.Length, 1e-9)
	floss, err = repo.ApplyDelta("u1", "DMC321", 10)
	require.NoError(t, err)
	assert.InDelta(t, 13.75, floss.Length, 1e-9)

	// u2's record is untouched
	other, err := repo.GetByCode("u2", "DMC310")
	require.NoError(t, err)
	assert.Equal(t, 1.0, other.Length)

	_, err = repo.ApplyDelta("u1", "DMC999", 1)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	removed, err := repo.DeleteByCode("u1", "DMC310")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	removed, err = repo.DeleteByCode("u1", "DMC310")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	_, err = repo.GetByCode("u1", "DMC310")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGORMPatternRepository(t *testing.T) {
	repo := repositories.NewGORMPatternRepository(openTestDB(t))

	heart := &models.Pattern{Name: "Heart", UserID: "u1"}
	require.NoError(t, heart.SetRequiredCodes([]string{"DMC310"}))
	require.NoError(t, repo.Create(heart))
	assert.NotEmpty(t, heart.ID)
	time.Sleep(time.Millisecond)
	rose := &models.Pattern{Name: "Rose", UserID: "u1"}
	require.NoError(t, rose.SetRequiredCodes([]string{"DMC310", "DMC666"}))
	require.NoError(t, repo.Create(rose))
	require.NoError(t, repo.Create(&models.Pattern{Name: "Theirs", UserID: "u2"}))

	mine, err := repo.GetAllByUser("u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Heart", mine[0].Name)
	assert.Equal(t, "Rose", mine[1].Name)
	codes, err := mine[1].RequiredCodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"DMC310", "DMC666"}, codes)

	_, err = repo.GetByIDForUser(heart.ID, "u2")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	err = repo.DeleteForUser(heart.ID, "u2")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	require.NoError(t, repo.DeleteForUser(heart.ID, "u1"))
	_, err = repo.GetByIDForUser(heart.ID, "u1")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGORMUserRepository(t *testing.T) {
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	user := &models.User{Username: "stitcher", Password: "hash"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	byName, err := repo.GetByUsername("stitcher")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "stitcher", byID.Username)

	_, err = repo.GetByUsername("nobody")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	assert.Error(t, repo.Create(&models.User{Username: "stitcher", Password: "x"}))
}
