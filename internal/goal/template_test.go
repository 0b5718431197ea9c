package goal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"levelup/internal/goal"
	"levelup/internal/user"
)

func TestListTemplatesVisibilityAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	priv, err := f.svc.CreateTemplate(ctx, f.user.ID, goal.CreateTemplateInput{
		Title: "Lire 10 pages",
	})
	require.NoError(t, err)
	require.Equal(t, goal.VisibilityPrivate, priv.Visibility)

	// default listing is the global catalogue only
	rows, err := f.svc.ListTemplates(ctx, goal.TemplateFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, f.tpl.ID, rows[0].ID)

	// owner=me sees personal templates regardless of visibility
	rows, err = f.svc.ListTemplates(ctx, goal.TemplateFilter{OwnerOnly: true, UserID: f.user.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, priv.ID, rows[0].ID)

	// title search is case-insensitive
	rows, err = f.svc.ListTemplates(ctx, goal.TemplateFilter{Query: "CARDIO"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = f.svc.ListTemplates(ctx, goal.TemplateFilter{Query: "yoga"})
	require.NoError(t, err)
	require.Empty(t, rows)

	enabled := false
	rows, err = f.svc.ListTemplates(ctx, goal.TemplateFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestGetTemplateHidesPrivateFromStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	priv, err := f.svc.CreateTemplate(ctx, f.user.ID, goal.CreateTemplateInput{Title: "Méditer"})
	require.NoError(t, err)

	got, err := f.svc.GetTemplate(ctx, priv.ID, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, priv.ID, got.ID)

	_, err = f.svc.GetTemplate(ctx, priv.ID, f.user.ID+1)
	require.ErrorIs(t, err, goal.ErrTemplateNotFound)

	_, err = f.svc.GetTemplate(ctx, priv.ID, 0)
	require.ErrorIs(t, err, goal.ErrTemplateNotFound)

	// global templates stay public
	got, err = f.svc.GetTemplate(ctx, f.tpl.ID, 0)
	require.NoError(t, err)
	require.Equal(t, f.tpl.ID, got.ID)
}

func TestCreateTemplateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, f.user.ID, goal.CreateTemplateInput{Title: "  Boire 2L d'eau  "})
	require.NoError(t, err)
	require.Equal(t, "Boire 2L d'eau", tpl.Title)
	require.Equal(t, 40, tpl.BaseXP)
	require.Equal(t, "daily", tpl.FrequencyType)
	require.Equal(t, 1, tpl.MaxPerPeriod)
	require.True(t, tpl.Enabled)
	require.NotNil(t, tpl.OwnerUserID)
	require.Equal(t, f.user.ID, *tpl.OwnerUserID)

	ft := "hourly"
	_, err = f.svc.CreateTemplate(ctx, f.user.ID, goal.CreateTemplateInput{Title: "x", FrequencyType: &ft})
	require.ErrorIs(t, err, goal.ErrInvalidCadence)
}

func TestSetTemplateEnabledPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// global template: admins only
	_, err := f.svc.SetTemplateEnabled(ctx, f.tpl.ID, f.user.ID, false, false)
	require.ErrorIs(t, err, goal.ErrForbidden)

	got, err := f.svc.SetTemplateEnabled(ctx, f.tpl.ID, f.user.ID, true, false)
	require.NoError(t, err)
	require.False(t, got.Enabled)

	// personal template: owner only, admin does not bypass
	priv, err := f.svc.CreateTemplate(ctx, f.user.ID, goal.CreateTemplateInput{Title: "Méditer"})
	require.NoError(t, err)

	other := user.User{Email: "other@test.local", PasswordHash: "x", Level: 1}
	require.NoError(t, f.gdb.Create(&other).Error)

	_, err = f.svc.SetTemplateEnabled(ctx, priv.ID, other.ID, true, false)
	require.ErrorIs(t, err, goal.ErrForbidden)

	got, err = f.svc.SetTemplateEnabled(ctx, priv.ID, f.user.ID, false, false)
	require.NoError(t, err)
	require.False(t, got.Enabled)
}
