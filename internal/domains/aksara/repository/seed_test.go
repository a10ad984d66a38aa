package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aksara-bali-backend/internal/domains/aksara/model"
)

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	n, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n)

	counts, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{
		{Category: "Aksara Wianjana", Count: 7},
		{Category: "Aksara Suara", Count: 3},
	}, counts)
}

func TestSeed_SkipsNonEmptyTable(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, &model.Aksara{Name: "Ka", Character: "ᬓ", Category: "Wreastra", Latin: "ka"})
	require.NoError(t, err)

	n, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSampleAksara_Valid(t *testing.T) {
	for _, a := range SampleAksara() {
		req := model.AksaraRequest{
			Name:             a.Name,
			Character:        a.Character,
			Category:         a.Category,
			Latin:            a.Latin,
			UnicodeCodepoint: a.UnicodeCodepoint,
		}
		assert.NoError(t, req.Validate(), a.Name)
	}
}
