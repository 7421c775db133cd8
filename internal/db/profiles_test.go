package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/pashagolub/pgxmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-tracker/internal/models"
)

var profileCols = []string{"id", "user_id", "height", "weight", "age", "gender", "activity_level",
	"dietary_goals", "dietary_restrictions", "subscription_tier", "updated_at"}

func intp(i int) *int { return &i }

func TestUpsertProfile_SingleStatementWithConflictClause(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	goal := models.GoalLoseWeight
	mock.ExpectQuery(`INSERT INTO profiles .* ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs("u1", intp(170), (*float64)(nil), (*int)(nil), (*string)(nil), (*string)(nil),
			strp("lose_weight"), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow(int64(1), "u1", intp(170), floatp(80), nil, nil, nil, strp("lose_weight"), nil, strp("free"), now))

	p, err := db.UpsertProfile(context.Background(), "u1", models.ProfileUpdate{
		Height:       intp(170),
		DietaryGoals: &goal,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, 170, *p.Height)
	assert.Equal(t, 80.0, *p.Weight)
	assert.Nil(t, p.Age)
	assert.Nil(t, p.Gender)
	require.NotNil(t, p.DietaryGoals)
	assert.Equal(t, models.GoalLoseWeight, *p.DietaryGoals)
	assert.Equal(t, models.TierFree, p.SubscriptionTier)
}

func TestUpsertProfile_PropagatesStoreError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO profiles`).WillReturnError(errors.New("connection reset"))

	_, err := db.UpsertProfile(context.Background(), "u1", models.ProfileUpdate{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetProfile_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM profiles WHERE user_id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := db.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
