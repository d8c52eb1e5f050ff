// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	settingsstore "github.com/dalemusser/villagehub/internal/app/store/settings"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/inputval"
	"github.com/dalemusser/villagehub/internal/app/system/normalize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the hash cost used by the login path.
const bcryptCost = 10

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Users      *userstore.Store
	Settings   *settingsstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Users:      userstore.New(db),
		Settings:   settingsstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type registerFormData struct {
	viewdata.BaseVM
	Error      string
	FirstName  string
	LastName   string
	Email      string
	NationalID string
	FamilyNick string
}

// registrationOpen consults the module flag. Closed registration bounces to
// the home page with a notice rather than a bare 404.
func (h *Handler) registrationOpen(r *http.Request) bool {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		h.Log.Warn("register: settings lookup failed", zap.Error(err))
		return true
	}
	return settings.RegistrationEnabled
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if !h.registrationOpen(r) {
		h.SessionMgr.AddFlash(w, r, "Registration is currently closed.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Register", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if !h.registrationOpen(r) {
		h.SessionMgr.AddFlash(w, r, "Registration is currently closed.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	form := registerFormData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Register", "/"),
		FirstName:  normalize.Name(r.FormValue("first_name")),
		LastName:   normalize.Name(r.FormValue("last_name")),
		Email:      normalize.Email(r.FormValue("email")),
		NationalID: normalize.NationalID(r.FormValue("national_id")),
		FamilyNick: normalize.Name(r.FormValue("family_nick")),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	renderError := func(msg string) {
		form.Error = msg
		templates.Render(w, r, "register", form)
	}

	switch {
	case form.FirstName == "" || form.LastName == "":
		renderError("Please enter your first and last name.")
		return
	case !inputval.IsValidEmail(form.Email):
		renderError("Please enter a valid email address.")
		return
	case !inputval.IsValidNationalID(form.NationalID):
		renderError("National ID must be exactly 11 digits.")
		return
	case !inputval.IsValidPassword(password):
		renderError("Password must be at least 6 characters.")
		return
	case password != confirm:
		renderError("Passwords do not match.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "bcrypt hash failed", err, "A server error occurred.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err = h.Users.Create(ctx, models.User{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		NationalID:   form.NationalID,
		FamilyNick:   form.FamilyNick,
		PasswordHash: string(hash),
		Role:         models.RolePending,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		renderError("An account with this email already exists.")
		return
	case errors.Is(err, userstore.ErrDuplicateNationalID):
		renderError("An account with this national ID already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create user failed", err, "A server error occurred.", "/register")
		return
	}

	h.Log.Info("new registration",
		zap.String("email", form.Email),
		zap.String("name", strings.TrimSpace(form.FirstName+" "+form.LastName)))

	h.SessionMgr.AddFlash(w, r, "Registration received. An administrator will review your application; you can sign in once it is approved.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
