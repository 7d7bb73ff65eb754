package pitwall

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterTeamRoutes mounts the team endpoints. Reads are public;
// mutations run behind the provided guard when one is configured.
func RegisterTeamRoutes[T any](app router.Router[T], opts ...TeamControllerOption) {
	controller := NewTeamController(opts...)

	app.Get(controller.Routes.GetTeams, controller.GetTeams).
		SetName("teams.list")

	app.Get(controller.Routes.GetTeam, controller.GetTeam).
		SetName("teams.get")

	guarded := func(h router.HandlerFunc) router.HandlerFunc {
		if controller.Guard == nil {
			return h
		}
		return controller.Guard(h)
	}

	app.Post(controller.Routes.AddTeam, guarded(controller.AddTeam)).
		SetName("teams.create")

	app.Patch(controller.Routes.UpdateTeamPrincipal, guarded(controller.UpdateTeamPrincipal)).
		SetName("teams.update-principal")

	app.Delete(controller.Routes.DeleteTeam, guarded(controller.DeleteTeam)).
		SetName("teams.delete")
}

type TeamControllerRoutes struct {
	GetTeams            string
	GetTeam             string
	AddTeam             string
	UpdateTeamPrincipal string
	DeleteTeam          string
}

type TeamController struct {
	Logger Logger
	Repo   Teams
	Guard  router.MiddlewareFunc
	Routes *TeamControllerRoutes
}

type TeamControllerOption func(*TeamController) *TeamController

func NewTeamController(opts ...TeamControllerOption) *TeamController {
	c := &TeamController{
		Logger: defLogger{},
		Routes: &TeamControllerRoutes{
			GetTeams:            "/Teams/GetTeams",
			GetTeam:             "/Teams/GetTeam",
			AddTeam:             "/Teams/AddTeam",
			UpdateTeamPrincipal: "/Teams/UpdateTeamPrincipal",
			DeleteTeam:          "/Teams/DeleteTeam",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing Teams repository in team controller...")
	}

	return c
}

func WithTeamsRepository(repo Teams) TeamControllerOption {
	return func(c *TeamController) *TeamController {
		c.Repo = repo
		return c
	}
}

func WithTeamGuard(guard router.MiddlewareFunc) TeamControllerOption {
	return func(c *TeamController) *TeamController {
		c.Guard = guard
		return c
	}
}

func WithTeamControllerLogger(logger Logger) TeamControllerOption {
	return func(c *TeamController) *TeamController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// AddTeamPayload is the create request body
type AddTeamPayload struct {
	Name          string `form:"name" json:"name"`
	Country       string `form:"country" json:"country"`
	TeamPrincipal string `form:"teamPrincipal" json:"teamPrincipal"`
}

// Validate will run validation rules
func (r AddTeamPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Country, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.TeamPrincipal, validation.Required, validation.Length(1, 200)),
	)
}

func (a *TeamController) GetTeams(ctx router.Context) error {
	records, err := a.Repo.List(ctx.Context())
	if err != nil {
		a.Logger.Error("teams list: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to list teams",
		})
	}

	return ctx.JSON(router.StatusOK, records)
}

func (a *TeamController) GetTeam(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Query("id", ""))
	if err != nil {
		return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
	}

	record, err := a.Repo.GetByID(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
		}
		a.Logger.Error("teams get %s: %s", id, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to retrieve team",
		})
	}

	return ctx.JSON(router.StatusOK, record)
}

func (a *TeamController) AddTeam(ctx router.Context) error {
	payload := new(AddTeamPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("teams create parse payload: %s", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "unable to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, FormatValidationErrorToMap(err))
	}

	if claims, ok := GetRouterClaims(ctx, ""); ok {
		a.Logger.Info("team create requested by %s", claims.UserEmail())
	}

	record, err := a.Repo.Create(ctx.Context(), &Team{
		Name:          payload.Name,
		Country:       payload.Country,
		TeamPrincipal: payload.TeamPrincipal,
	})
	if err != nil {
		a.Logger.Error("teams create: %s", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to create team",
		})
	}

	return ctx.JSON(http.StatusCreated, record)
}

func (a *TeamController) UpdateTeamPrincipal(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Query("id", ""))
	if err != nil {
		return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
	}

	principal := ctx.Query("teamPrincipal", "")
	if principal == "" {
		return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
	}

	if _, err := a.Repo.UpdateTeamPrincipal(ctx.Context(), id, principal); err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
		}
		a.Logger.Error("teams update principal %s: %s", id, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to update team",
		})
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (a *TeamController) DeleteTeam(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Query("id", ""))
	if err != nil {
		return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
	}

	if claims, ok := GetRouterClaims(ctx, ""); ok {
		a.Logger.Info("team delete %s requested by %s", id, claims.UserEmail())
	}

	if err := a.Repo.Delete(ctx.Context(), id); err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return ctx.Status(router.StatusBadRequest).SendString(MsgInvalidID)
		}
		a.Logger.Error("teams delete %s: %s", id, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "unable to delete team",
		})
	}

	return ctx.NoContent(http.StatusNoContent)
}
