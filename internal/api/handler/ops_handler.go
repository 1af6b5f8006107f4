package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/resolver"
)

// OpsHandler exposes every registered operation by name, for clients that
// speak the operation protocol instead of the REST routes.
type OpsHandler struct {
	registry *resolver.Registry
}

func NewOpsHandler(registry *resolver.Registry) *OpsHandler {
	return &OpsHandler{registry: registry}
}

// List describes the registered operations.
//
// @Summary      List operations
// @Tags         ops
// @Produce      json
// @Success      200  {array}  operationResponse
// @Router       /ops [get]
func (h *OpsHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, toOperationResponses(h.registry.Descriptors()))
}

// Execute runs the named operation with the JSON body as its argument record.
//
// @Summary      Execute operation
// @Tags         ops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true   "Operation name"
// @Param        body  body      object  false  "Argument record"
// @Success      200   {object}  operationResultResponse
// @Failure      401   {object}  resolver.Failure
// @Failure      403   {object}  resolver.Failure
// @Failure      404   {object}  resolver.Failure
// @Failure      422   {object}  resolver.Failure
// @Router       /ops/{name} [post]
func (h *OpsHandler) Execute(c echo.Context, ac domain.AuthContext) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errMalformedBody
	}

	out, err := h.registry.Execute(c.Request().Context(), c.Param("name"), ac, json.RawMessage(body))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, operationResultResponse{Data: out})
}
