package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"analytics/internal/models"
	"analytics/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError writes err with the status derived from its AppError code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusCode(err), err)
}

func badRequest(c *fiber.Ctx, message string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
	return errResponseWritten
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, badRequest(c, "Invalid "+humanizeParam(param))
	}
	return uint(id), nil
}

// queryID reads a required positive integer query parameter.
func (s *Server) queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, badRequest(c, name+" is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest(c, name+" must be a positive integer")
	}
	return uint(id), nil
}

// queryLimit reads the optional limit parameter, bounded to 1..50.
func (s *Server) queryLimit(c *fiber.Ctx, defaultLimit int) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > service.MaxDashboardLimit {
		return 0, badRequest(c, fmt.Sprintf("limit must be between 1 and %d", service.MaxDashboardLimit))
	}
	return limit, nil
}

// parseBody decodes the JSON body into dst and runs its validate tags.
func (s *Server) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return badRequest(c, describeFieldError(verrs[0]))
		}
		return badRequest(c, "Invalid request body")
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// clientIP returns the visitor address recorded with a profile view: the
// first X-Forwarded-For entry when it parses as an IP, otherwise the peer
// address. It is not used for throttling since the header is caller-supplied.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	return c.IP()
}

// peerKey identifies a caller for rate limiting. Fiber only consults
// X-Forwarded-For here when the connection comes from a trusted proxy.
func peerKey(c *fiber.Ctx) string {
	return c.IP()
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}
