package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/bullpair-events/middleware"
	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

const internalErrorMessage = "the server encountered a problem and could not process your request"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			// Ошибки кастомных UnmarshalJSON (например, неизвестная категория).
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// successResponse оборачивает данные в {"status":"success","data":...}.
func successResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, data interface{}) {
	if err := writeJSON(w, status, jsonResponse{"status": statusSuccess, "data": data}, nil); err != nil {
		logger.Error("failed to write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, extra jsonResponse, headers http.Header) {
	env := jsonResponse{"status": statusFail, "message": message}
	if status >= http.StatusInternalServerError {
		env["status"] = statusError
	}
	for k, v := range extra {
		env[k] = v
	}
	if err := writeJSON(w, status, env, headers); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError, internalErrorMessage, nil, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error(), nil, nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message, nil, nil)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidTransition):
		errorResponse(w, r, http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, services.ErrNotFound):
		errorResponse(w, r, http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, services.ErrForbiddenOperation):
		errorResponse(w, r, http.StatusForbidden, err.Error(), nil, nil)
	case errors.Is(err, services.ErrConflict):
		if services.IsRetryable(err) {
			// Конкуренция за строки: клиент может повторить запрос.
			errorResponse(w, r, http.StatusConflict, err.Error(),
				jsonResponse{"retryable": true},
				http.Header{"Retry-After": []string{"1"}})
			return
		}
		errorResponse(w, r, http.StatusConflict, err.Error(), nil, nil)
	default:
		serverErrorResponse(w, r, logger, err)
	}
}

// Общая вспомогательная функция для извлечения ID из URL
func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// queryInt returns nil when the parameter is absent.
func queryInt(r *http.Request, name string, min int) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return nil, fmt.Errorf("invalid %s query parameter", name)
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s query parameter", name)
	}
	return v, nil
}

func actorFromRequest(r *http.Request) (models.Actor, bool) {
	return middleware.ActorFromContext(r.Context())
}

// statusInput - общее тело для PATCH .../status.
type statusInput struct {
	Status string `json:"status"`
}

func readStatus(w http.ResponseWriter, r *http.Request) (string, error) {
	var input statusInput
	if err := readJSON(w, r, &input); err != nil {
		return "", err
	}
	if strings.TrimSpace(input.Status) == "" {
		return "", errors.New("status is required")
	}
	return input.Status, nil
}
