package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/hanafy/medtrack/internal/errors"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "default",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString})
}

func (s *Server) handleSchedule(c *fiber.Ctx) error {
	sched := s.tracker.Schedule()

	doses := make([]fiber.Map, 0)
	for _, dose := range sched.AllDoses() {
		med, _ := sched.Medication(dose.MedicationID)
		doses = append(doses, fiber.Map{
			"dose_key":     dose.Key(),
			"medication":   med.Name,
			"time":         dose.Time.String(),
			"day_part":     dose.DayPart(),
			"instructions": med.Instructions,
		})
	}

	return c.JSON(fiber.Map{
		"medications": sched.Medications(),
		"doses":       doses,
	})
}

func (s *Server) handleDay(c *fiber.Ctx) error {
	day, err := s.tracker.Day(c.Params("date"), time.Now())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(day)
}

func (s *Server) handleRecord(c *fiber.Ctx) error {
	var req struct {
		Date    string `json:"date"`
		DoseKey string `json:"dose_key"`
		Status  string `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	record, err := s.tracker.Record(req.Date, req.DoseKey, req.Status, time.Now())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.Status(201).JSON(record)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	records, err := s.tracker.History(
		c.Query("start"),
		c.Query("end"),
		c.Query("medication"),
	)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

func (s *Server) handleCompliance(c *fiber.Ctx) error {
	rate, err := s.tracker.Compliance(
		c.Query("start"),
		c.Query("end"),
		c.Query("medication"),
	)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"compliance": rate})
}

func (s *Server) handleStreak(c *fiber.Ctx) error {
	streak, err := s.tracker.Streak(c.Query("medication"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(streak)
}

func (s *Server) handlePrune(c *fiber.Ctx) error {
	var req struct {
		DaysToKeep int `json:"days_to_keep"`
	}
	// An empty body keeps the configured retention window.
	_ = c.BodyParser(&req)

	deleted, err := s.tracker.Prune(time.Now(), req.DaysToKeep)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// errorResponse maps the error taxonomy onto HTTP status codes.
func (s *Server) errorResponse(c *fiber.Ctx, err error) error {
	code := apperrors.GetCode(err)

	status := 500
	switch {
	case code == apperrors.ErrInvalidDateRange.Code,
		code == apperrors.ErrUnknownStatus.Code,
		code == apperrors.ErrInvalidDate.Code,
		code == apperrors.ErrInvalidTime.Code:
		status = 400
	case code == apperrors.ErrDoseNotFound.Code,
		code == apperrors.ErrMedicationNotFound.Code:
		status = 404
	case code == apperrors.ErrUnauthorized.Code:
		status = 401
	}

	if status == 500 {
		s.logger.Error("request failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	var message string
	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
	} else {
		message = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}
