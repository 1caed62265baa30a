package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/forms"
	"github.com/mbolis/quick-form/log"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// Will translate an error of the forms service into the matching
// HTTP status, logging it under code
func WriteError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	switch {
	case errors.Is(err, forms.ErrValidation):
		log.Debugf("%s: %s", code, err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]any{
			"error":  err.Error(),
			"fields": forms.FieldErrors(err),
		})
	case errors.Is(err, forms.ErrNotFound):
		LogNotFound(w, code, id)
	case errors.Is(err, forms.ErrForbidden):
		LogStatus(w, http.StatusForbidden, log.DebugLevel, code+".forbidden")
	case errors.Is(err, forms.ErrUnauthorized):
		LogStatus(w, http.StatusUnauthorized, log.DebugLevel, code+".unauthorized")
	case errors.Is(err, forms.ErrStoreUnavailable):
		log.Warnf("%s: %s", code, err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	default:
		LogInternalError(w, code, err)
	}
}
