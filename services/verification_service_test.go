package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"github.com/kendall-kelly/gig-marketplace-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newVerificationService(t *testing.T) (*VerificationService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	service := NewVerificationService(
		repositories.NewAccountRepository(db),
		repositories.NewVerificationRepository(db),
		zap.NewNop(),
	)
	return service, db
}

func TestGetStatus_DefaultsToPending(t *testing.T) {
	service, db := newVerificationService(t)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)

	status, err := service.GetStatus(context.Background(), client.ID, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, status)
}

func TestGetStatus_RejectsRolesWithoutVerification(t *testing.T) {
	service, _ := newVerificationService(t)

	_, err := service.GetStatus(context.Background(), 1, models.RoleAdmin)
	assertKind(t, err, apperrors.KindValidation)
}

func TestSetStatus_AnyTransition(t *testing.T) {
	service, db := newVerificationService(t)
	ctx := context.Background()
	adminUser := testutil.CreateUser(t, db, "ada", models.RoleAdmin)
	admin := ActorFor(&adminUser)
	provider := testutil.CreateUser(t, db, "pete", models.RoleServiceProvider)

	sequence := []models.VerificationStatus{
		models.VerificationApproved,
		models.VerificationRejected,
		models.VerificationApproved,
		models.VerificationPending,
		models.VerificationRejected,
	}
	for _, status := range sequence {
		record, err := service.SetStatus(ctx, admin, provider.ID, models.RoleServiceProvider, status)
		require.NoError(t, err)
		assert.Equal(t, status, record.Status)
		require.NotNil(t, record.ReviewedBy)
		assert.Equal(t, admin.ID, *record.ReviewedBy)

		current, err := service.GetStatus(ctx, provider.ID, models.RoleServiceProvider)
		require.NoError(t, err)
		assert.Equal(t, status, current)
	}

	var count int64
	require.NoError(t, db.Model(&models.ProviderProfile{}).Where("user_id = ?", provider.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "repeated updates reuse one record")
}

func TestSetStatus_SuperAdmin(t *testing.T) {
	service, db := newVerificationService(t)
	root := testutil.CreateUser(t, db, "root", models.RoleSuperAdmin)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)

	record, err := service.SetStatus(context.Background(), ActorFor(&root), client.ID, models.RoleClient, models.VerificationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, record.Status)
}

func TestSetStatus_Errors(t *testing.T) {
	service, db := newVerificationService(t)
	admin := testutil.CreateUser(t, db, "ada", models.RoleAdmin)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)
	provider := testutil.CreateUser(t, db, "pete", models.RoleServiceProvider)

	tests := []struct {
		name      string
		actor     Actor
		accountID uint
		role      models.Role
		status    models.VerificationStatus
		kind      apperrors.Kind
	}{
		{"client cannot review", ActorFor(&client), client.ID, models.RoleClient, models.VerificationApproved, apperrors.KindForbidden},
		{"provider cannot review", ActorFor(&provider), provider.ID, models.RoleServiceProvider, models.VerificationApproved, apperrors.KindForbidden},
		{"admin role has no verification", ActorFor(&admin), admin.ID, models.RoleAdmin, models.VerificationApproved, apperrors.KindValidation},
		{"unknown status", ActorFor(&admin), client.ID, models.RoleClient, "suspended", apperrors.KindValidation},
		{"unknown account", ActorFor(&admin), 9999, models.RoleClient, models.VerificationApproved, apperrors.KindNotFound},
		{"role mismatch", ActorFor(&admin), client.ID, models.RoleServiceProvider, models.VerificationApproved, apperrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SetStatus(context.Background(), tt.actor, tt.accountID, tt.role, tt.status)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestListRecords(t *testing.T) {
	service, db := newVerificationService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "ada", models.RoleAdmin)
	testutil.CreateVerifiedUser(t, db, "carol", models.RoleClient, models.VerificationPending)
	testutil.CreateVerifiedUser(t, db, "cindy", models.RoleClient, models.VerificationApproved)
	testutil.CreateVerifiedUser(t, db, "pete", models.RoleServiceProvider, models.VerificationPending)

	pending := models.VerificationPending
	records, total, err := service.ListRecords(ctx, ActorFor(&admin), models.RoleClient, &pending, repositories.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "carol", records[0].User.Name)

	_, total, err = service.ListRecords(ctx, ActorFor(&admin), models.RoleClient, nil, repositories.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, _, err = service.ListRecords(ctx, Actor{ID: 5, Role: models.RoleClient}, models.RoleClient, nil, repositories.Page{})
	assertKind(t, err, apperrors.KindForbidden)
}

func TestSaveClientProfile_KeepsStatus(t *testing.T) {
	service, db := newVerificationService(t)
	ctx := context.Background()
	client := testutil.CreateVerifiedUser(t, db, "carol", models.RoleClient, models.VerificationApproved)

	profile, err := service.SaveClientProfile(ctx, ActorFor(&client), ClientProfileInput{
		CompanyName: "Carol & Co",
		Phone:       "555-0100",
		Address:     "1 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carol & Co", profile.CompanyName)
	assert.Equal(t, models.VerificationApproved, profile.Status, "editing a profile never changes its review status")
}

func TestSaveClientProfile_NewProfileIsPending(t *testing.T) {
	service, db := newVerificationService(t)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)

	profile, err := service.SaveClientProfile(context.Background(), ActorFor(&client), ClientProfileInput{Phone: "555-0100", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, profile.Status)
}

func TestSaveClientProfile_Errors(t *testing.T) {
	service, db := newVerificationService(t)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)
	provider := testutil.CreateUser(t, db, "pete", models.RoleServiceProvider)

	_, err := service.SaveClientProfile(context.Background(), ActorFor(&provider), ClientProfileInput{Phone: "1", Address: "x"})
	assertKind(t, err, apperrors.KindForbidden)

	_, err = service.SaveClientProfile(context.Background(), ActorFor(&client), ClientProfileInput{Phone: "555-0100"})
	assertKind(t, err, apperrors.KindValidation)
}

func TestSaveProviderProfile(t *testing.T) {
	service, db := newVerificationService(t)
	provider := testutil.CreateUser(t, db, "pete", models.RoleServiceProvider)

	profile, err := service.SaveProviderProfile(context.Background(), ActorFor(&provider), ProviderProfileInput{
		Bio:    "Licensed plumber",
		Phone:  "555-0199",
		Skills: []string{"plumbing", "heating"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, profile.Status)

	var skills []string
	require.NoError(t, json.Unmarshal(profile.Skills, &skills))
	assert.Equal(t, []string{"plumbing", "heating"}, skills)

	public, err := service.GetProviderProfile(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "Licensed plumber", public.Bio)
	require.NotNil(t, public.User)
	assert.Equal(t, "pete", public.User.Name)
}

func TestGetProviderProfile_Errors(t *testing.T) {
	service, db := newVerificationService(t)
	client := testutil.CreateUser(t, db, "carol", models.RoleClient)
	provider := testutil.CreateUser(t, db, "pete", models.RoleServiceProvider)

	_, err := service.GetProviderProfile(context.Background(), client.ID)
	assertKind(t, err, apperrors.KindNotFound)

	profile, err := service.GetProviderProfile(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, profile.Status)
	assert.Zero(t, profile.AvgRating)
}
