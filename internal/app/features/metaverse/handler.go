// internal/app/features/metaverse/handler.go
package metaverse

import (
	"context"
	"html/template"
	"net/http"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// sessionKey marks a session that has passed the second password check.
// Exit removes only this key; the primary session stays intact.
const sessionKey = "metaverse_authenticated"

// Handler serves the metaverse portal, a members-only area behind a second
// password prompt on top of the normal session.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Users:      userstore.New(db),
	}
}

type portalData struct {
	viewdata.BaseVM

	UserName string
}

type loginData struct {
	viewdata.BaseVM

	Error template.HTML
}

// gate checks the module flag and that the caller may enter at all.
// Passive members are signed in but still excluded here.
func (h *Handler) gate(w http.ResponseWriter, r *http.Request) (viewdata.BaseVM, bool) {
	base := viewdata.NewBaseVM(r, h.DB, "Metaverse", "/")
	if !base.MetaverseEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return base, false
	}
	if !authz.CanContribute(r) {
		uierrors.RenderForbidden(w, r, "The metaverse is open to active members only.", "/")
		return base, false
	}
	return base, true
}

// entered reports whether this session already holds the second factor.
func (h *Handler) entered(r *http.Request) bool {
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		return false
	}
	v, ok := session.Values[sessionKey].(bool)
	return ok && v
}

// ServePortal shows the world page, or bounces to the inner login.
func (h *Handler) ServePortal(w http.ResponseWriter, r *http.Request) {
	base, ok := h.gate(w, r)
	if !ok {
		return
	}
	if !h.entered(r) {
		http.Redirect(w, r, "/metaverse/login", http.StatusSeeOther)
		return
	}

	data := portalData{BaseVM: base, UserName: base.UserName}
	templates.Render(w, r, "metaverse_portal", data)
}

// ServeLogin renders the inner password prompt.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	base, ok := h.gate(w, r)
	if !ok {
		return
	}
	if h.entered(r) {
		http.Redirect(w, r, "/metaverse", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "metaverse_login", loginData{BaseVM: base})
}

// HandleLogin re-verifies the caller's own password before marking the
// session. A stolen cookie alone does not open the portal.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	base, ok := h.gate(w, r)
	if !ok {
		return
	}
	_, _, userID, okUser := authz.UserCtx(r)
	if !okUser {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/metaverse/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user for metaverse login failed", err, "A database error occurred.", "/metaverse/login")
		return
	}

	password := r.FormValue("password")
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		h.Log.Info("metaverse login rejected", zap.String("user_id", userID.Hex()))
		templates.Render(w, r, "metaverse_login", loginData{
			BaseVM: base,
			Error:  "The password is incorrect.",
		})
		return
	}

	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("metaverse login with undecodable session", zap.Error(err))
	}
	session.Values[sessionKey] = true
	if err := session.Save(r, w); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Could not start the metaverse session.", "/metaverse/login")
		return
	}

	h.Log.Info("metaverse entered", zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/metaverse", http.StatusSeeOther)
}

// HandleExit drops the second factor and returns to the main site. The
// primary sign-in survives.
func (h *Handler) HandleExit(w http.ResponseWriter, r *http.Request) {
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("metaverse exit with undecodable session", zap.Error(err))
	}
	delete(session.Values, sessionKey)
	if err := session.Save(r, w); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Could not leave the metaverse.", "/metaverse")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
