package db

import (
	"context"
	"fmt"

	"nutrition-tracker/internal/models"
)

const profileColumns = `id, user_id, height, weight, age, gender, activity_level, dietary_goals,
            dietary_restrictions, subscription_tier, updated_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p                              models.Profile
		gender, activity, goals, tier *string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Height, &p.Weight, &p.Age,
		&gender, &activity, &goals, &p.DietaryRestrictions, &tier, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = typedPtr[models.Gender](gender)
	p.ActivityLevel = typedPtr[models.ActivityLevel](activity)
	p.DietaryGoals = typedPtr[models.DietaryGoal](goals)
	p.SubscriptionTier = models.TierFree
	if tier != nil {
		p.SubscriptionTier = models.SubscriptionTier(*tier)
	}
	return &p, nil
}

func (db *PostgresDB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(db.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// UpsertProfile creates or merges the user's profile in a single statement so
// concurrent first writes can never produce two rows. Nil fields keep the
// stored value; a new row gets subscription_tier 'free' unless one is given.
func (db *PostgresDB) UpsertProfile(ctx context.Context, userID string, u models.ProfileUpdate) (*models.Profile, error) {
	query := `
        INSERT INTO profiles (user_id, height, weight, age, gender, activity_level, dietary_goals,
                              dietary_restrictions, subscription_tier, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, 'free'), NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET height               = COALESCE(EXCLUDED.height, profiles.height),
            weight               = COALESCE(EXCLUDED.weight, profiles.weight),
            age                  = COALESCE(EXCLUDED.age, profiles.age),
            gender               = COALESCE(EXCLUDED.gender, profiles.gender),
            activity_level       = COALESCE(EXCLUDED.activity_level, profiles.activity_level),
            dietary_goals        = COALESCE(EXCLUDED.dietary_goals, profiles.dietary_goals),
            dietary_restrictions = COALESCE(EXCLUDED.dietary_restrictions, profiles.dietary_restrictions),
            subscription_tier    = COALESCE($9, profiles.subscription_tier),
            updated_at           = NOW()
        RETURNING ` + profileColumns

	p, err := scanProfile(db.pool.QueryRow(ctx, query,
		userID, u.Height, u.Weight, u.Age,
		stringPtr(u.Gender), stringPtr(u.ActivityLevel), stringPtr(u.DietaryGoals),
		u.DietaryRestrictions, stringPtr(u.SubscriptionTier),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return p, nil
}
