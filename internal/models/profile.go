// internal/models/profile.go
package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type DietaryGoal string

const (
	GoalLoseWeight DietaryGoal = "lose_weight"
	GoalMaintain   DietaryGoal = "maintain"
	GoalGainMuscle DietaryGoal = "gain_muscle"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// Profile holds a user's body metrics and goals. One row per user.
type Profile struct {
	ID                  int64            `json:"id"`
	UserID              string           `json:"userId"`
	Height              *int             `json:"height"`
	Weight              *float64         `json:"weight"`
	Age                 *int             `json:"age"`
	Gender              *Gender          `json:"gender"`
	ActivityLevel       *ActivityLevel   `json:"activityLevel"`
	DietaryGoals        *DietaryGoal     `json:"dietaryGoals"`
	DietaryRestrictions *string          `json:"dietaryRestrictions"`
	SubscriptionTier    SubscriptionTier `json:"subscriptionTier"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// ProfileUpdate carries the fields of an upsert. Nil fields keep their
// current value (or the column default on first write).
type ProfileUpdate struct {
	Height              *int              `json:"height" validate:"omitempty,min=50,max=272"`
	Weight              *float64          `json:"weight" validate:"omitempty,gt=0,lte=650"`
	Age                 *int              `json:"age" validate:"omitempty,min=1,max=130"`
	Gender              *Gender           `json:"gender" validate:"omitempty,oneof=male female other"`
	ActivityLevel       *ActivityLevel    `json:"activityLevel" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	DietaryGoals        *DietaryGoal      `json:"dietaryGoals" validate:"omitempty,oneof=lose_weight maintain gain_muscle"`
	DietaryRestrictions *string           `json:"dietaryRestrictions" validate:"omitempty,max=200"`
	SubscriptionTier    *SubscriptionTier `json:"subscriptionTier" validate:"omitempty,oneof=free premium"`
}
