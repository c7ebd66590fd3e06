package handler

import (
	"net/http" // HTTP status codes and primitives
	"time"     // token expiry in responses

	"github.com/labstack/echo/v4"  // Echo framework for HTTP routing
	"github.com/sirupsen/logrus" // structured logging for failures

	"github.com/rihanvyakoob07/authenflow-platform/internal/middleware" // authenticated identity helpers
	"github.com/rihanvyakoob07/authenflow-platform/internal/model"      // domain types
	"github.com/rihanvyakoob07/authenflow-platform/internal/service"    // auth and wishlist operations
)

// AuthHandler bundles dependencies for auth and wishlist endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Log  logrus.FieldLogger
}

func NewAuthHandler(auth *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	if auth == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth, Log: log}
}

// ----- DTOs -----

type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func sessionResp(s service.Session) authResp {
	return authResp{
		User:    userPart{ID: s.User.ID, Name: s.User.Name, Email: s.User.Email, Role: s.User.Role},
		Token:   s.Token.Token,
		Expires: s.Token.Exp,
	}
}

// Register: create a user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Register(ctx, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, sessionResp(sess))
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sessionResp(sess))
}

// Me returns the authenticated identity without its password hash.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile changes name, email or password of the caller.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	var req service.ProfileInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.UpdateProfile(ctx, uid, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}
