package pitwall

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the authentication endpoints on the given router
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.Register).
		SetName("auth.register")

	app.Get(controller.Routes.ConfirmEmail, controller.ConfirmEmail).
		SetName("auth.confirm-email")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login")
}

type AuthControllerRoutes struct {
	Register     string
	ConfirmEmail string
	Login        string
}

type AuthController struct {
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:     "/Authentication/Register",
			ConfirmEmail: "/Authentication/ConfirmEmail",
			Login:        "/Authentication/Login",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegistrationPayload is the register request body
type RegistrationPayload struct {
	Email    string `form:"email" json:"email"`
	Name     string `form:"name" json:"name"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegistrationPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, FailureResult(ErrInvalidRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, FailureResult(ErrInvalidRequest))
	}

	msg, err := a.Auther.Register(ctx.Context(), RegistrationRequest{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
	})
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, FailureResult(err))
	}

	return ctx.Status(router.StatusOK).SendString(msg)
}

func (a *AuthController) ConfirmEmail(ctx router.Context) error {
	userID := ctx.Query("userId", "")
	code := ctx.Query("code", "")

	msg, err := a.Auther.ConfirmEmail(ctx.Context(), userID, code)
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, FailureResult(err))
	}

	return ctx.Status(router.StatusOK).SendString(msg)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, FailureResult(ErrInvalidRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, FailureResult(ErrInvalidRequest))
	}

	token, err := a.Auther.Login(ctx.Context(), LoginRequest{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, FailureResult(err))
	}

	return ctx.JSON(router.StatusOK, SuccessResult(token))
}

// FormatValidationErrorToMap flattens ozzo validation errors into a field
// to message map, used by handlers that report per-field problems.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
