// Package web serves the server-rendered todo pages under /app/. Pages are
// plain HTML forms backed by the relational todo service and cookie sessions.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Base is where the app is mounted.
const Base = "/app"

const (
	flashCookie = "flash"
	taskIDParam = "todoID"
)

// Sessions starts and ends server-side sessions.
type Sessions interface {
	Start(ctx context.Context, user *model.User) (string, error)
	End(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

// App renders the todo pages.
type App struct {
	tasks    *service.TaskService
	accounts *service.AccountService
	sessions Sessions
	logger   *slog.Logger
	pages    map[string]*template.Template
	now      func() time.Time
}

// New parses the page templates and creates an App.
func New(tasks *service.TaskService, accounts *service.AccountService, sessions Sessions, logger *slog.Logger) (*App, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"list", "update", "delete", "register", "login"} {
		tmpl, err := template.ParseFS(templateFS,
			"templates/base.html",
			"templates/task_fields.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &App{
		tasks:    tasks,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
		pages:    pages,
		now:      time.Now,
	}, nil
}

// Routes returns the app router. requireSession guards the todo pages and
// should redirect unauthenticated callers with LoginRedirect.
func (a *App) Routes(requireSession func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/register", a.registerForm)
	r.Post("/register", a.register)
	r.Get("/login", a.loginForm)
	r.Post("/login", a.login)
	r.Post("/logout", a.logout)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", a.list)
		r.Post("/", a.create)
		r.Route("/{"+taskIDParam+"}", func(r chi.Router) {
			r.Use(middleware.ResourceID(taskIDParam, "Todo not found"))
			r.Get("/update", a.updateForm)
			r.Post("/update", a.update)
			r.Get("/delete", a.deleteForm)
			r.Post("/delete", a.deleteTask)
			r.Post("/toggle", a.toggle)
		})
	})

	return r
}

// LoginRedirect sends unauthenticated visitors to the login page.
func (a *App) LoginRedirect() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, Base+"/login/", http.StatusSeeOther)
	})
}

type page struct {
	LoggedIn   bool
	Flash      string
	Errors     []string
	Tasks      []dto.TaskResponse
	Form       taskForm
	TaskID     string
	Priorities []model.Priority
	Account    accountForm
}

func (a *App) newPage(w http.ResponseWriter, r *http.Request) *page {
	return &page{
		LoggedIn:   auth.UserIDFromContext(r.Context()) != "",
		Flash:      popFlash(w, r),
		Form:       taskForm{Priority: string(model.PriorityMedium)},
		Priorities: model.Priorities,
	}
}

func (a *App) render(w http.ResponseWriter, status int, name string, p *page) {
	var buf bytes.Buffer
	if err := a.pages[name].ExecuteTemplate(&buf, "base", p); err != nil {
		a.logger.Error("template_render_failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirectWithFlash stores a one-shot message and redirects to path.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     Base,
		MaxAge:   60,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// popFlash returns and clears the pending flash message.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: Base, MaxAge: -1, HttpOnly: true})
	msg, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}

// serverError logs err and writes a bare 500.
func (a *App) serverError(w http.ResponseWriter, err error) {
	a.logger.Error("internal_error", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// userMessage returns the text shown for a rejected form, or "" when err
// is not the user's fault.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return "A user with that username already exists."
	case errors.Is(err, service.ErrEmailTaken):
		return "A user with that email already exists."
	case errors.Is(err, service.ErrInvalidLogin):
		return "Please enter a correct username and password."
	case errors.Is(err, service.ErrPasswordInvalid):
		return capitalize(strings.TrimPrefix(err.Error(), service.ErrPasswordInvalid.Error()+": ")) + "."
	case errors.Is(err, service.ErrInvalidInput):
		return capitalize(strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")) + "."
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
