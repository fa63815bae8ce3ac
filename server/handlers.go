package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/models"
)

// boxerView adds the derived weight class to the stored attributes.
type boxerView struct {
	models.Boxer
	WeightClass models.WeightClass `json:"weight_class"`
}

func viewOf(b models.Boxer) boxerView {
	return boxerView{Boxer: b, WeightClass: b.WeightClass()}
}

func viewsOf(bs []models.Boxer) []boxerView {
	out := make([]boxerView, 0, len(bs))
	for _, b := range bs {
		out = append(out, viewOf(b))
	}
	return out
}

func success(c *fiber.Ctx, status int, body fiber.Map) error {
	body["status"] = "success"
	return c.Status(status).JSON(body)
}

// ─────────────────────────────────────────────────────────────────────────────
// Service probes
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) hello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"response": "Hello, World!", "status": fiber.StatusOK})
}

func (s *Server) repeat(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"body": c.Query("input"), "status": fiber.StatusOK})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"body": "OK", "status": fiber.StatusOK})
}

func (s *Server) ready(c *fiber.Ctx) error {
	if err := s.store.Ping(c.UserContext()); err != nil {
		s.logger.WarnContext(c.UserContext(), "database not ready", "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
	}
	return c.JSON(fiber.Map{"body": "ready", "status": fiber.StatusOK})
}

// ─────────────────────────────────────────────────────────────────────────────
// Boxers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) createBoxer(c *fiber.Ctx) error {
	var params models.CreateBoxerParams
	if err := c.BodyParser(&params); err != nil {
		return models.Errorf(models.ErrValidation, "invalid request body: %v", err)
	}
	params.Name = strings.TrimSpace(params.Name)

	b, err := s.store.Create(c.UserContext(), params)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, fiber.Map{"boxer": viewOf(*b)})
}

func (s *Server) listBoxers(c *fiber.Ctx) error {
	bs, err := s.store.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]boxerView, 0, len(bs))
	for _, b := range bs {
		out = append(out, viewOf(*b))
	}
	return success(c, fiber.StatusOK, fiber.Map{"boxers": out})
}

func (s *Server) getBoxerByID(c *fiber.Ctx) error {
	id, err := boxerID(c)
	if err != nil {
		return err
	}
	b, err := s.store.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"boxer": viewOf(*b)})
}

func (s *Server) getBoxerByName(c *fiber.Ctx) error {
	b, err := s.store.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"boxer": viewOf(*b)})
}

func (s *Server) deleteBoxer(c *fiber.Ctx) error {
	id, err := boxerID(c)
	if err != nil {
		return err
	}
	if err := s.store.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "boxer " + strconv.FormatInt(id, 10) + " deleted"})
}

func (s *Server) leaderboard(c *fiber.Ctx) error {
	key, err := models.ParseSortKey(c.Query("sort"))
	if err != nil {
		return err
	}
	entries, err := s.store.GetLeaderboard(c.UserContext(), key)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"sort": key, "leaderboard": entries})
}

func boxerID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Errorf(models.ErrValidation, "invalid boxer id %q", raw)
	}
	return id, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ring
// ─────────────────────────────────────────────────────────────────────────────

type enterRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) ringOccupants(c *fiber.Ctx) error {
	s.ringMu.Lock()
	occupants, state := s.ring.Occupants(), s.ring.State()
	s.ringMu.Unlock()

	return success(c, fiber.StatusOK, fiber.Map{
		"state":  state.String(),
		"boxers": viewsOf(occupants),
	})
}

func (s *Server) enterRing(c *fiber.Ctx) error {
	var req enterRequest
	if err := c.BodyParser(&req); err != nil {
		return models.Errorf(models.ErrValidation, "invalid request body: %v", err)
	}

	ctx := c.UserContext()
	var (
		b   *models.Boxer
		err error
	)
	switch name := strings.TrimSpace(req.Name); {
	case req.ID > 0:
		b, err = s.store.GetByID(ctx, req.ID)
	case name != "":
		b, err = s.store.GetByName(ctx, name)
	default:
		return models.Errorf(models.ErrValidation, "either id or name is required")
	}
	if err != nil {
		return err
	}

	s.ringMu.Lock()
	err = s.ring.Enter(b)
	occupants, state := s.ring.Occupants(), s.ring.State()
	s.ringMu.Unlock()
	if err != nil {
		return err
	}

	return success(c, fiber.StatusOK, fiber.Map{
		"message": b.Name + " entered the ring",
		"state":   state.String(),
		"boxers":  viewsOf(occupants),
	})
}

func (s *Server) fight(c *fiber.Ctx) error {
	s.ringMu.Lock()
	result, err := s.ring.Fight(c.UserContext())
	s.ringMu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(c.UserContext(), "fight resolved",
		logging.FieldRequestID, requestID(c),
		logging.FieldWinner, result.Winner.Name,
		logging.FieldLoser, result.Loser.Name)
	return success(c, fiber.StatusOK, fiber.Map{
		"winner": result.WinnerName(),
		"result": fiber.Map{
			"winner": viewOf(result.Winner),
			"loser":  viewOf(result.Loser),
		},
	})
}

func (s *Server) clearRing(c *fiber.Ctx) error {
	s.ringMu.Lock()
	s.ring.Clear()
	s.ringMu.Unlock()
	return success(c, fiber.StatusOK, fiber.Map{"message": "ring cleared"})
}
