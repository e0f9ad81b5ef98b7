package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/nav"
	"github.com/shulehub/shule/core/session"
	"github.com/shulehub/shule/core/user"
)

const (
	tokenContextKey = "userToken"
	actorContextKey = "actor"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin      bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Shule",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         string(usr.Role),
		IsStudent:    usr.Role == user.RoleStudent,
		IsTeacher:    usr.Role == user.RoleTeacher,
		IsAdmin:      usr.Role == user.RoleAdmin,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// recordKeyID extracts the numeric suffix of a "<role>_<n>" record key.
func recordKeyID(key string) (int, bool) {
	i := strings.LastIndexByte(key, '_')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)

	authed := ag.Group("", jwt)
	authed.POST("/token-refresh", api.refreshToken)
	authed.GET("/session", api.currentSession)
}

type (
	LoginRequest struct {
		Role     string `json:"role" validate:"required,role"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token       string          `json:"token"`
		Destination nav.Destination `json:"destination"`
		User        user.User       `json:"user"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

// login runs the role-gated login sequence. A wrong-portal attempt fails
// with the mismatch detail and leaves no live session behind.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	role, err := user.ParseRole(data.Role)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: err.Error()})
	}

	flow := session.NewLoginFlow(api.deps.Provider, api.deps.UserSvc, nav.NewStack(), nil, api.deps.Logger)
	form := session.Form{Role: role, Email: data.Email, Password: data.Password}

	usr, err := flow.Submit(ctx.Request().Context(), &form)
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *session.RoleMismatchError:
			return core.NewValidationError(errors.New(cause.Error()))
		default:
		}
		switch errors.Cause(err) {
		case session.ErrMissingCredentials:
			return core.NewValidationError(errors.New(session.MsgMissingCredentials))
		case user.ErrNotFound:
			return core.NewValidationError(errors.New(session.MsgUserDataNotFound))
		case session.ErrAccountDeactivated:
			return errAccountDeactivated
		case auth.ErrInvalidCredentials:
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "submitting login")
	}

	dest, err := nav.DestinationFor(usr.Role)
	if err != nil {
		return errors.Wrap(err, "resolving destination")
	}
	token, err := GenerateToken(api.deps.Conf, GetUserClaims(api.deps.Conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Destination: dest, User: usr})
}

type SessionResponse struct {
	User        user.User       `json:"user"`
	Destination nav.Destination `json:"destination"`
}

// currentSession resolves the caller's role record and portal, the API
// equivalent of the startup bootstrap routing.
func (api *authApi) currentSession(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, session.MsgUserDataNotFound)
		}
		return errors.Wrap(err, "resolving role record")
	}

	dest, err := nav.DestinationFor(usr.Role)
	if err != nil {
		return errors.Wrap(err, "resolving destination")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{User: usr, Destination: dest})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	token, err := GenerateToken(api.deps.Conf, GetUserClaims(api.deps.Conf, usr, claims.OrigIssuedAt))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": token})
}

// resolveActor builds the caller's access.Actor from its claims, resolving
// the class/registration scope from the domain record when needed.
func resolveActor(ctx echo.Context, deps ServerDeps) (access.Actor, error) {
	if actor, ok := ctx.Get(actorContextKey).(access.Actor); ok {
		return actor, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return access.Actor{}, err
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return access.Actor{}, errHttpForbidden
	}

	actor := access.Actor{Role: role, Email: claims.Email}
	reqCtx := ctx.Request().Context()

	switch role {
	case user.RoleTeacher:
		if id, ok := recordKeyID(claims.Subject); ok {
			if t, err := deps.TeacherSvc.GetByID(reqCtx, id); err == nil {
				actor.Class = t.Class
			}
		}
	case user.RoleStudent:
		if regNo, ok := recordKeyID(claims.Subject); ok {
			actor.RegNo = regNo
			if s, err := deps.StudentSvc.GetByRegNo(reqCtx, regNo); err == nil {
				actor.Class = s.Class
			}
		}
	}

	ctx.Set(actorContextKey, actor)
	return actor, nil
}
