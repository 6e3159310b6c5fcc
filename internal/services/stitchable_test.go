package services_test

import (
	"math/rand"
	"testing"

	"stitchery/internal/models"
	"stitchery/internal/repositories"
	"stitchery/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func pattern(t *testing.T, name string, codes ...string) models.Pattern {
	t.Helper()
	p := models.Pattern{ID: name, Name: name, UserID: "u1"}
	require.NoError(t, p.SetRequiredCodes(codes))
	return p
}

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func names(patterns []models.Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Name)
	}
	return out
}

func TestStitchablePatterns_Example(t *testing.T) {
	available := codeSet("DMC310", "DMC321")
	patterns := []models.Pattern{
		pattern(t, "Heart", "DMC310"),
		pattern(t, "Rose", "DMC310", "DMC666"),
	}

	assert.Equal(t, []string{"Heart"}, names(services.StitchablePatterns(patterns, available)))
}

func TestIsStitchable_SubsetProperty(t *testing.T) {
	palette := []string{"DMC310", "DMC321", "DMC666", "DMC699", "DMC725", "DMC798", "DMC3865"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		var inventory []string
		for _, c := range palette {
			if rng.Intn(2) == 0 {
				inventory = append(inventory, c)
			}
		}
		required := make([]string, rng.Intn(6))
		for j := range required {
			required[j] = palette[rng.Intn(len(palette))]
		}
		available := codeSet(inventory...)

		subset := true
		for _, c := range required {
			if _, ok := available[c]; !ok {
				subset = false
			}
		}
		assert.Equal(t, subset, services.IsStitchable(required, available), "required=%v inventory=%v", required, inventory)

		// Duplicating a requirement never changes the answer
		if len(required) > 0 {
			dup := append(append([]string{}, required...), required[rng.Intn(len(required))])
			assert.Equal(t, services.IsStitchable(required, available), services.IsStitchable(dup, available))
		}
	}
}

func TestIsStitchable_EmptyRequirements(t *testing.T) {
	assert.True(t, services.IsStitchable(nil, codeSet()))
	assert.True(t, services.IsStitchable([]string{}, codeSet("DMC310")))
}

func TestStitchablePatterns_SkipsMalformedAndKeepsOrder(t *testing.T) {
	available := codeSet("DMC310", "DMC321")
	broken := models.Pattern{ID: "broken", Name: "Broken", FlossCodes: datatypes.JSON(`{"not":"a list"`)}
	patterns := []models.Pattern{
		pattern(t, "C", "DMC321"),
		broken,
		pattern(t, "A", "DMC310", "DMC310"),
		pattern(t, "Empty"),
		pattern(t, "B", "DMC999"),
	}

	assert.Equal(t, []string{"C", "A", "Empty"}, names(services.StitchablePatterns(patterns, available)))
}

func TestMissingCodes(t *testing.T) {
	available := codeSet("DMC310")

	assert.Equal(t, []string{"DMC666", "DMC321"}, services.MissingCodes([]string{"DMC666", "DMC310", "DMC321", "DMC666"}, available))
	assert.Equal(t, []string{}, services.MissingCodes([]string{"DMC310"}, available))
}

func TestStitchableService(t *testing.T) {
	patternRepo := repositories.NewMockPatternRepository()
	floss := services.NewFlossService(repositories.NewMockFlossRepository(), nil, 0)
	service := services.NewStitchableService(patternRepo, floss)

	for _, p := range []models.Pattern{
		pattern(t, "Heart", "DMC310"),
		pattern(t, "Rose", "DMC310", "DMC666"),
	} {
		p := p
		require.NoError(t, patternRepo.Create(&p))
	}
	other := pattern(t, "Elsewhere", "DMC310")
	other.UserID = "u2"
	require.NoError(t, patternRepo.Create(&other))
	require.NoError(t, patternRepo.Create(&models.Pattern{Name: "Broken", UserID: "u1", FlossCodes: datatypes.JSON("nope")}))

	_, err := floss.AddFloss("u1", "DMC310", length(5))
	require.NoError(t, err)
	_, err = floss.AddFloss("u1", "DMC321", length(2))
	require.NoError(t, err)

	stitchable, err := service.Stitchable("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heart"}, names(stitchable))

	report, err := service.Evaluate("u1")
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "Heart", report[0].Pattern.Name)
	assert.True(t, report[0].Stitchable)
	assert.Empty(t, report[0].Missing)
	assert.Equal(t, "Rose", report[1].Pattern.Name)
	assert.False(t, report[1].Stitchable)
	assert.Equal(t, []string{"DMC666"}, report[1].Missing)

	// Restocking the missing color makes Rose stitchable
	_, err = floss.AddFloss("u1", "DMC666", nil)
	require.NoError(t, err)
	stitchable, err = service.Stitchable("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heart", "Rose"}, names(stitchable))

	// u2 has no floss at all
	stitchable, err = service.Stitchable("u2")
	require.NoError(t, err)
	assert.Empty(t, stitchable)
}
