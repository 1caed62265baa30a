package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

var validate = validator.New()

type signup struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=200"`
}

func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := signup{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		err = validate.Struct(body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "signup.validate", "%s", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash_password", err)
			return
		}

		userId, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "signup.new_id", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO user (id, email, name, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			userId.String(),
			body.Email,
			body.Name,
			hash,
			time.Now().UTC(),
		)
		if database.IsUniqueViolation(err) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "signup.exists", "user already exists")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":    userId.String(),
			"email": body.Email,
			"name":  body.Name,
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {strings.ToLower(strings.TrimSpace(user))},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		if resp.Status() == http.StatusUnauthorized {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.rejected")
			return
		}
		resp.Flush(w)
	}
}
