package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/nutrition"
	"nutrition-tracker/internal/profile"
)

func (h *handler) getProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) upsertProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.Profiles.Upsert(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) upgradeProfile(c *gin.Context) {
	var req profile.UpgradeRequest
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.Profiles.SetTier(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) searchFoods(c *gin.Context) {
	foods, err := h.Catalog.Search(c.Request.Context(), c.Query("search"), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *handler) createFood(c *gin.Context) {
	var req models.FoodInput
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	f, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *handler) updateFood(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.FoodInput
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	f, err := h.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// day reads the optional ?date= query, defaulting to today (UTC).
func (h *handler) day(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return h.Now().UTC(), nil
	}
	return nutrition.ParseDate("date", raw)
}

func (h *handler) listMeals(c *gin.Context) {
	day, err := h.day(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	logs, err := h.Meals.ListDay(c.Request.Context(), userID(c), day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *handler) createMeal(c *gin.Context) {
	var req models.MealCreate
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	m, err := h.Meals.Log(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handler) deleteMeal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.Meals.Delete(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) summary(c *gin.Context) {
	day, err := h.day(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	s, err := h.Summaries.Summarize(c.Request.Context(), userID(c), day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) listReminders(c *gin.Context) {
	reminders, err := h.Reminders.List(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *handler) createReminder(c *gin.Context) {
	var req models.ReminderCreate
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	r, err := h.Reminders.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *handler) updateReminder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.ReminderUpdate
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	r, err := h.Reminders.Update(c.Request.Context(), userID(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handler) deleteReminder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.Reminders.Delete(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
