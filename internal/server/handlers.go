package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"IDXForecast/internal/model"
)

var validate = validator.New()

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Symbol string `json:"symbol" query:"symbol" form:"symbol" validate:"required,max=20"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listStocks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stocks)
}

func (s *Server) predict(c echo.Context) error {
	req := &PredictRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Status: http.StatusBadRequest, Message: "malformed request body"})
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Status: http.StatusBadRequest, Message: validationMessage(err)})
	}

	res, err := s.engine.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		return errorResponse(c, req.Symbol, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getHistory(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	rep, err := s.history.History(c.Request().Context(), symbol)
	if err != nil {
		return errorResponse(c, symbol, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// errorResponse maps pipeline errors to a status code and a user-facing message.
func errorResponse(c echo.Context, symbol string, err error) error {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, model.ErrUnknownSymbol):
		status, msg = http.StatusNotFound, "unknown symbol"
	case errors.Is(err, model.ErrModelNotFound):
		status, msg = http.StatusNotFound, "model not found"
	case errors.Is(err, model.ErrInsufficientData):
		status, msg = http.StatusUnprocessableEntity, "insufficient data for prediction"
	case errors.Is(err, model.ErrMarketDataUnavailable), errors.Is(err, model.ErrUpstream):
		status, msg = http.StatusBadGateway, "market data unavailable"
	case errors.Is(err, model.ErrInvalidModel):
		msg = "invalid model artifact"
	}
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("symbol", symbol).Int("status", status).Msg("request failed")
	return c.JSON(status, ErrorBody{Status: status, Message: msg})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "max":
		return strings.ToLower(fe.Field()) + " must be at most " + fe.Param() + " characters"
	default:
		return strings.ToLower(fe.Field()) + " failed validation: " + fe.Tag()
	}
}
