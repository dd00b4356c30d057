package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

const refreshCookieName = "refreshToken"

// Handler exposes the authentication endpoints. Refresh tokens travel in an
// HttpOnly cookie; the response body never echoes them.
type Handler struct {
	service    *Service
	production bool
}

func NewHandler(service *Service, production bool) *Handler {
	return &Handler{service: service, production: production}
}

// RegisterRoutes mounts the public authentication routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/refresh-token", h.Refresh)
	g.POST("/activate", h.Activate)
	g.POST("/register-user", h.RegisterUser)
	g.POST("/register-hospital", h.RegisterHospital)
	g.POST("/verify-email", h.VerifyEmail)
}

// RegisterProtectedRoutes mounts the routes that require an access token.
func (h *Handler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("/auth/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, loginResponse(result))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Refresh(c echo.Context) error {
	token := h.refreshTokenFromRequest(c)
	if token == "" {
		return apperr.Validation("refresh token is required")
	}

	result, err := h.service.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"accessToken": result.Tokens.AccessToken,
	})
}

type activateRequest struct {
	TenantID string `json:"tenantId"`
	Token    string `json:"token"`
}

func (h *Handler) Activate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	result, err := h.service.Activate(c.Request().Context(), req.TenantID, req.Token)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, loginResponse(result))
}

type registerUserRequest struct {
	TenantID   string   `json:"tenantId"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Phone      string   `json:"phone"`
	Department string   `json:"department"`
	Roles      []string `json:"roles"`
}

func (h *Handler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	result, err := h.service.RegisterUser(c.Request().Context(), RegisterUserInput{
		TenantID:   req.TenantID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Department: req.Department,
		Roles:      req.Roles,
	})
	if err != nil {
		return err
	}

	resp := map[string]interface{}{
		"message": "User registered successfully",
		"user":    result.User,
	}
	if result.Tokens != nil {
		h.setRefreshCookie(c, result.Tokens.RefreshToken)
		resp["accessToken"] = result.Tokens.AccessToken
		resp["permissions"] = result.Permissions
	}
	if result.ActivationLink != "" {
		resp["activationLink"] = result.ActivationLink
	}
	return c.JSON(http.StatusCreated, resp)
}

// Logout revokes every session for the authenticated caller and clears the
// refresh cookie.
func (h *Handler) Logout(c echo.Context) error {
	tenant := auth.TenantFromContext(c.Request().Context())
	if tenant == nil {
		return apperr.Unauthorized("authentication required")
	}

	userID, err := uuid.Parse(tenant.UserID)
	if err != nil {
		return apperr.Unauthorized("authentication required")
	}

	if err := h.service.Logout(c.Request().Context(), tenant.ID, userID); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type registerHospitalRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	ContactNumber string `json:"contactNumber"`
	AdminEmail    string `json:"adminEmail"`
	LicenseNumber string `json:"licenseNumber"`
	Domain        string `json:"domain"`
	AdminFirst    string `json:"adminFirstName"`
	AdminLast     string `json:"adminLastName"`
}

func (h *Handler) RegisterHospital(c echo.Context) error {
	var req registerHospitalRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	result, err := h.service.RegisterHospital(c.Request().Context(), RegisterHospitalInput{
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		ContactNumber: req.ContactNumber,
		AdminEmail:    req.AdminEmail,
		LicenseNumber: req.LicenseNumber,
		Domain:        req.Domain,
		AdminFirst:    req.AdminFirst,
		AdminLast:     req.AdminLast,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":           "Hospital registered successfully, verify the admin email to continue",
		"tenantId":          result.Hospital.TenantID,
		"hospitalName":      result.Hospital.Name,
		"adminEmail":        result.Admin.Email,
		"temporaryPassword": result.TempPassword,
		"verificationLink":  result.VerificationLink,
	})
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

func (h *Handler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Token == "" {
		req.Token = c.QueryParam("token")
	}

	hosp, err := h.service.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Hospital email verified successfully",
		"tenantId": hosp.TenantID,
	})
}

func loginResponse(result *LoginResult) map[string]interface{} {
	return map[string]interface{}{
		"accessToken": result.Tokens.AccessToken,
		"user":        result.User,
		"permissions": result.Permissions,
	}
}

// refreshTokenFromRequest prefers the HttpOnly cookie and falls back to the
// JSON body for clients that manage tokens themselves.
func (h *Handler) refreshTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req refreshRequest
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *Handler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.codec.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
}
