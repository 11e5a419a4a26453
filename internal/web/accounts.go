package web

import (
	"net/http"
	"strings"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

type accountForm struct {
	Username string
	Email    string
}

// registerForm handles GET /app/register/.
func (a *App) registerForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "register", a.newPage(w, r))
}

// register handles POST /app/register/ and logs the new user in.
func (a *App) register(w http.ResponseWriter, r *http.Request) {
	p := a.newPage(w, r)
	p.Account = accountForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}

	password := r.PostFormValue("password1")
	if password != r.PostFormValue("password2") {
		p.Errors = []string{"The two password fields didn't match."}
		a.render(w, http.StatusBadRequest, "register", p)
		return
	}

	user, err := a.accounts.Register(r.Context(), service.RegisterInput{
		Username: p.Account.Username,
		Email:    p.Account.Email,
		Password: password,
	})
	if err != nil {
		if msg := userMessage(err); msg != "" {
			p.Errors = []string{msg}
			a.render(w, http.StatusBadRequest, "register", p)
			return
		}
		a.serverError(w, err)
		return
	}

	a.startSession(w, r, user)
}

// loginForm handles GET /app/login/.
func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "login", a.newPage(w, r))
}

// login handles POST /app/login/.
func (a *App) login(w http.ResponseWriter, r *http.Request) {
	p := a.newPage(w, r)
	p.Account.Username = strings.TrimSpace(r.PostFormValue("username"))

	user, err := a.accounts.Authenticate(r.Context(), p.Account.Username, r.PostFormValue("password"))
	if err != nil {
		if msg := userMessage(err); msg != "" {
			p.Errors = []string{msg}
			a.render(w, http.StatusUnauthorized, "login", p)
			return
		}
		a.serverError(w, err)
		return
	}

	a.startSession(w, r, user)
}

// logout handles POST /app/logout/.
func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	sessionID := auth.SessionIDFromContext(r.Context())
	if sessionID == "" {
		if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
			sessionID = cookie.Value
		}
	}
	if sessionID != "" {
		if err := a.sessions.End(r.Context(), sessionID); err != nil {
			a.serverError(w, err)
			return
		}
	}
	middleware.ClearSessionCookie(w, r)
	redirectWithFlash(w, r, Base+"/login/", "You have been logged out.")
}

func (a *App) startSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	sessionID, err := a.sessions.Start(r.Context(), user)
	if err != nil {
		a.serverError(w, err)
		return
	}
	middleware.SetSessionCookie(w, r, sessionID, int(a.sessions.TTL().Seconds()))
	http.Redirect(w, r, Base+"/", http.StatusSeeOther)
}
