package repositories

import (
	"context"
	"testing"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundedMean(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"no ratings", nil, 0},
		{"single rating", []int{4}, 4},
		{"rounds down", []int{4, 4, 5}, 4},
		{"half rounds up", []int{4, 5}, 5},
		{"rounds up", []int{5, 5, 4}, 5},
		{"low scores", []int{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundedMean(tt.scores))
		})
	}
}

func TestRatingRepository_CreateRefreshesAverage(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	ref := testutil.CreateReferenceData(t, db)
	client := testutil.CreateUser(t, db, "client", models.RoleClient)
	provider := testutil.CreateVerifiedUser(t, db, "provider", models.RoleServiceProvider, models.VerificationApproved)
	first := createGig(t, db, client.ID, ref)
	second := createGig(t, db, client.ID, ref)

	avg, err := repo.Create(ctx, &models.Rating{GigID: first.ID, ClientID: client.ID, ProviderID: provider.ID, Score: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, avg)

	avg, err = repo.Create(ctx, &models.Rating{GigID: second.ID, ClientID: client.ID, ProviderID: provider.ID, Score: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, avg, "mean of 4 and 5 rounds to 5")

	var profile models.ProviderProfile
	require.NoError(t, db.Where("user_id = ?", provider.ID).First(&profile).Error)
	assert.Equal(t, 5, profile.AvgRating)
	assert.Equal(t, 2, profile.RatingCount)

	ratings, total, err := repo.ListByProvider(ctx, provider.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, ratings, 2)
}

func TestRatingRepository_DuplicateRating(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	client := testutil.CreateUser(t, db, "client", models.RoleClient)
	provider := testutil.CreateVerifiedUser(t, db, "provider", models.RoleServiceProvider, models.VerificationApproved)
	gig := createGig(t, db, client.ID, testutil.CreateReferenceData(t, db))

	_, err := repo.Create(ctx, &models.Rating{GigID: gig.ID, ClientID: client.ID, ProviderID: provider.ID, Score: 2})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Rating{GigID: gig.ID, ClientID: client.ID, ProviderID: provider.ID, Score: 5})
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := repo.ExistsForGig(ctx, gig.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	var profile models.ProviderProfile
	require.NoError(t, db.Where("user_id = ?", provider.ID).First(&profile).Error)
	assert.Equal(t, 2, profile.AvgRating, "a rejected duplicate must not change the average")
}
