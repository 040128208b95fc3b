package http

import "github.com/gofiber/fiber/v2"

// APIError is the JSON body of every non-2xx response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"` // bad_request, not_found, conflict, ...
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var statusCodes = map[int]string{
	400: "bad_request",
	401: "unauthorized",
	403: "forbidden",
	404: "not_found",
	409: "conflict",
	500: "internal_error",
}

// newError writes a structured error carrying the request ID so clients
// can quote it in bug reports.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errStatus(c *fiber.Ctx, status int, msg string) error {
	code, ok := statusCodes[status]
	if !ok {
		code = "error"
	}
	return newError(c, status, code, msg)
}

func errBadRequest(c *fiber.Ctx, msg string) error   { return errStatus(c, 400, msg) }
func errUnauthorized(c *fiber.Ctx, msg string) error { return errStatus(c, 401, msg) }
func errForbidden(c *fiber.Ctx, msg string) error    { return errStatus(c, 403, msg) }
func errNotFound(c *fiber.Ctx, msg string) error     { return errStatus(c, 404, msg) }
func errConflict(c *fiber.Ctx, msg string) error     { return errStatus(c, 409, msg) }
func errInternal(c *fiber.Ctx, msg string) error     { return errStatus(c, 500, msg) }
