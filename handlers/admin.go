package handlers

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"
	"mycenter/service"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-kit/log"
	"github.com/labstack/echo/v4"
)

//go:embed admin.openapi.yaml
var adminOpenAPI []byte

// GetInstancesParams are the query parameters of GET /v1/instances.
type GetInstancesParams struct {
	ModuleName *string
	Status     *domain.Status
}

// ServerInterface is the admin API described by admin.openapi.yaml.
type ServerInterface interface {
	// GetHealth (GET /healthz)
	GetHealth(ectx echo.Context) error
	// GetInstances (GET /v1/instances)
	GetInstances(ectx echo.Context, params GetInstancesParams) error
	// GetModule (GET /v1/instances/{module_name})
	GetModule(ectx echo.Context, moduleName string) error
}

// RegisterHandlers binds the admin routes of si to e.
func RegisterHandlers(e *echo.Echo, si ServerInterface) {
	e.GET("/healthz", si.GetHealth)
	e.GET("/v1/instances", func(ectx echo.Context) error {
		var params GetInstancesParams
		if v := ectx.QueryParam("module_name"); v != "" {
			params.ModuleName = helpers.Ptr(v)
		}
		if v := ectx.QueryParam("status"); v != "" {
			var s domain.Status
			if err := s.UnmarshalText([]byte(v)); err != nil {
				return service.NewBadParameterError("invalid status", err)
			}
			params.Status = &s
		}
		return si.GetInstances(ectx, params)
	})
	e.GET("/v1/instances/:module_name", func(ectx echo.Context) error {
		return si.GetModule(ectx, ectx.Param("module_name"))
	})
}

// AdminServer implements ServerInterface over the registry's read-only view.
type AdminServer struct {
	lister interfaces.InstanceLister
	logger log.Logger
}

var _ ServerInterface = (*AdminServer)(nil)

// NewAdminServer creates a new AdminServer. Panics on nil lister/logger.
func NewAdminServer(lister interfaces.InstanceLister, logger log.Logger) *AdminServer {
	return &AdminServer{
		lister: helpers.NilPanic(lister, "handlers.admin.go: lister is required"),
		logger: log.With(helpers.NilPanic(logger, "handlers.admin.go: logger is required"), "component", "admin"),
	}
}

// GetHealth (GET /healthz) answers 200 while the process serves.
func (h *AdminServer) GetHealth(ectx echo.Context) error {
	return ectx.NoContent(http.StatusOK)
}

// GetInstances (GET /v1/instances) lists instances ordered by key, optionally filtered by module name and status.
func (h *AdminServer) GetInstances(ectx echo.Context, params GetInstancesParams) error {
	instances := h.lister.Instances(func(i domain.Instance) bool {
		if params.ModuleName != nil && i.ModuleName != *params.ModuleName {
			return false
		}
		return params.Status == nil || i.Status == *params.Status
	})
	return ectx.JSON(http.StatusOK, toInstancesResponse(instances))
}

// GetModule (GET /v1/instances/{module_name}) returns every instance of one module, 404 when none is registered.
func (h *AdminServer) GetModule(ectx echo.Context, moduleName string) error {
	instances := h.lister.Instances(func(i domain.Instance) bool { return i.ModuleName == moduleName })
	if len(instances) == 0 {
		return service.NewModuleNotFoundError(fmt.Sprintf("module %q is not registered", moduleName), nil)
	}
	return ectx.JSON(http.StatusOK, toModuleResponse(moduleName, instances))
}

// NewAdminEcho builds the admin API: routes of server, requests validated against the embedded OpenAPI
// document, errors rendered by service.HTTPErrorHandler.
//
// Returns: error when the embedded document does not load or validate.
//
// Called from cmd/main when ADMIN_PORT_HTTP is set.
func NewAdminEcho(server ServerInterface, logger log.Logger) (*echo.Echo, error) {
	router, err := loadAdminRouter()
	if err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	service.RegisterErrorHandler(e, logger)
	e.Use(validateRequest(router))
	RegisterHandlers(e, server)
	return e, nil
}

func loadAdminRouter() (routers.Router, error) {
	doc, err := openapi3.NewLoader().LoadFromData(adminOpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load admin openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate admin openapi document: %w", err)
	}
	return gorillamux.NewRouter(doc)
}

// validateRequest rejects requests that match no documented route (404) or violate its parameters (400).
func validateRequest(router routers.Router) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ectx echo.Context) error {
			req := ectx.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				if errors.Is(err, routers.ErrMethodNotAllowed) {
					return echo.NewHTTPError(http.StatusMethodNotAllowed, err.Error()).SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
			}
			return next(ectx)
		}
	}
}
