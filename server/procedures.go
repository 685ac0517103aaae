package server

import (
	"encoding/json"
	"errors"
	"time"

	"chirp/posts"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	log "github.com/sirupsen/logrus"
)

// Error codes of the procedure envelope and their JSON-RPC equivalents
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotSupported = "METHOD_NOT_SUPPORTED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

var jsonRpcCodes = map[string]int{
	CodeBadRequest:         -32600,
	CodeUnauthorized:       -32001,
	CodeNotFound:           -32004,
	CodeMethodNotSupported: -32005,
	CodeInternal:           -32603,
}

type resultEnvelope struct {
	Result struct {
		Data interface{} `json:"data"`
	} `json:"result"`
}

type ErrorData struct {
	Code        string              `json:"code"`
	HttpStatus  int                 `json:"httpStatus"`
	Path        string              `json:"path"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

type ErrorShape struct {
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Data    ErrorData `json:"data"`
}

type errorEnvelope struct {
	Error ErrorShape `json:"error"`
}

// procedureError is an error with a known envelope code
type procedureError struct {
	code        string
	status      int
	message     string
	fieldErrors map[string][]string
}

func (e *procedureError) Error() string {
	return e.message
}

func badInput(field, message string) error {
	return &posts.ValidationError{FieldErrors: map[string][]string{field: {message}}}
}

// classify maps service errors onto envelope codes. Anything unknown is an
// internal error with a generic message.
func classify(err error) *procedureError {
	var perr *procedureError
	if errors.As(err, &perr) {
		return perr
	}

	var verr *posts.ValidationError
	switch {
	case errors.As(err, &verr):
		return &procedureError{CodeBadRequest, fiber.StatusBadRequest, verr.Error(), verr.FieldErrors}
	case errors.Is(err, posts.ErrUnauthorized):
		return &procedureError{CodeUnauthorized, fiber.StatusUnauthorized, "You must be signed in to post", nil}
	case errors.Is(err, posts.ErrPostNotFound):
		return &procedureError{CodeNotFound, fiber.StatusNotFound, "Post not found", nil}
	case errors.Is(err, posts.ErrUserNotFound):
		return &procedureError{CodeNotFound, fiber.StatusNotFound, "User not found", nil}
	case errors.Is(err, posts.ErrAuthorNotFound):
		return &procedureError{CodeInternal, fiber.StatusInternalServerError, "Author for post not found", nil}
	default:
		return &procedureError{CodeInternal, fiber.StatusInternalServerError, "Internal server error", nil}
	}
}

type procedure struct {
	method string
	call   func(c *fiber.Ctx, svc FeedService, input []byte) (interface{}, error)
}

type idInput struct {
	Id string `json:"id"`
}

type userIdInput struct {
	UserId string `json:"userId"`
}

type usernameInput struct {
	Username string `json:"username"`
}

type createInput struct {
	Content string `json:"content"`
}

// decodeInput unmarshals raw into v. Missing input decodes to the zero value.
func decodeInput(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &procedureError{CodeBadRequest, fiber.StatusBadRequest, "Input is not valid JSON", nil}
	}
	return nil
}

var procedures = map[string]procedure{
	"posts.getAll": {
		method: fiber.MethodGet,
		call: func(c *fiber.Ctx, svc FeedService, _ []byte) (interface{}, error) {
			entries, err := svc.GetAll(c.UserContext())
			if err != nil {
				return nil, err
			}
			feedEntries.Observe(float64(len(entries)))
			return entries, nil
		},
	},
	"posts.getById": {
		method: fiber.MethodGet,
		call: func(c *fiber.Ctx, svc FeedService, raw []byte) (interface{}, error) {
			var input idInput
			if err := decodeInput(raw, &input); err != nil {
				return nil, err
			}
			if input.Id == "" {
				return nil, badInput("id", "Required")
			}
			return svc.GetById(c.UserContext(), input.Id)
		},
	},
	"posts.getPostsByUserId": {
		method: fiber.MethodGet,
		call: func(c *fiber.Ctx, svc FeedService, raw []byte) (interface{}, error) {
			var input userIdInput
			if err := decodeInput(raw, &input); err != nil {
				return nil, err
			}
			if input.UserId == "" {
				return nil, badInput("userId", "Required")
			}
			return svc.GetByAuthor(c.UserContext(), input.UserId)
		},
	},
	"profile.getUserByUsername": {
		method: fiber.MethodGet,
		call: func(c *fiber.Ctx, svc FeedService, raw []byte) (interface{}, error) {
			var input usernameInput
			if err := decodeInput(raw, &input); err != nil {
				return nil, err
			}
			if input.Username == "" {
				return nil, badInput("username", "Required")
			}
			return svc.ProfileByUsername(c.UserContext(), input.Username)
		},
	},
	"posts.create": {
		method: fiber.MethodPost,
		call: func(c *fiber.Ctx, svc FeedService, raw []byte) (interface{}, error) {
			var input createInput
			if err := decodeInput(raw, &input); err != nil {
				return nil, err
			}
			post, err := svc.Create(c.UserContext(), CallerId(c), input.Content)
			if err != nil {
				return nil, err
			}
			postsCreated.Inc()
			return post, nil
		},
	},
}

func sendError(c *fiber.Ctx, path string, perr *procedureError) error {
	return c.Status(perr.status).JSON(errorEnvelope{
		Error: ErrorShape{
			Message: perr.message,
			Code:    jsonRpcCodes[perr.code],
			Data: ErrorData{
				Code:        perr.code,
				HttpStatus:  perr.status,
				Path:        path,
				FieldErrors: perr.fieldErrors,
			},
		},
	})
}

// procedureHandler dispatches /api/trpc/<procedure>. Queries read their input
// from the "input" query parameter, mutations from the request body.
func procedureHandler(svc FeedService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Params is only valid for this request, labels outlive it
		path := utils.CopyString(c.Params("*"))

		proc, ok := procedures[path]
		if !ok {
			procedureCalls.WithLabelValues("unknown", CodeNotFound).Inc()
			return sendError(c, path, &procedureError{CodeNotFound, fiber.StatusNotFound, "No procedure found on path \"" + path + "\"", nil})
		}
		if c.Method() != proc.method {
			procedureCalls.WithLabelValues(path, CodeMethodNotSupported).Inc()
			return sendError(c, path, &procedureError{CodeMethodNotSupported, fiber.StatusMethodNotAllowed, "Unsupported " + c.Method() + "-request to " + proc.method + " procedure at path \"" + path + "\"", nil})
		}

		var raw []byte
		if proc.method == fiber.MethodGet {
			raw = []byte(c.Query("input"))
		} else {
			raw = c.Body()
		}

		start := time.Now()
		data, err := proc.call(c, svc, raw)
		procedureDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		if err != nil {
			perr := classify(err)
			procedureCalls.WithLabelValues(path, perr.code).Inc()

			fields := log.Fields{
				"procedure": path,
				"code":      perr.code,
				"error":     err,
			}
			if perr.status >= fiber.StatusInternalServerError {
				log.WithFields(fields).Error("Procedure failed")
			} else {
				log.WithFields(fields).Info("Procedure rejected input")
			}
			return sendError(c, path, perr)
		}

		procedureCalls.WithLabelValues(path, "OK").Inc()

		var envelope resultEnvelope
		envelope.Result.Data = data
		return c.JSON(envelope)
	}
}
