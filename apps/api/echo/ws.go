package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/user"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsApi struct {
	deps ServerDeps
}

func registerWsAPI(g *echo.Group, deps ServerDeps) {
	api := wsApi{deps: deps}
	g.GET("/ws/students", api.streamStudents)
}

// wsClaims authenticates a websocket handshake; browsers cannot set an
// Authorization header on the WebSocket API, so the token rides a query param.
func (api *wsApi) wsClaims(ctx echo.Context) (Claims, error) {
	raw := ctx.QueryParam("token")
	if raw == "" {
		return Claims{}, errUnauthorized
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(api.deps.Conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errUnauthorized
	}
	return *claims, nil
}

// streamStudents pushes a fresh student list to the client on every change,
// scoped the same way the REST listing is.
func (api *wsApi) streamStudents(ctx echo.Context) error {
	claims, err := api.wsClaims(ctx)
	if err != nil {
		return err
	}
	ctx.Set(tokenContextKey, &jwt.Token{Claims: &claims, Valid: true})

	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var filter student.QueryFilter
	switch actor.Role {
	case user.RoleAdmin:
	case user.RoleTeacher:
		filter.Class = actor.Class
		if !access.CanAccess(actor, access.Resource{Kind: access.KindStudent, Class: filter.Class}) {
			return errHttpForbidden
		}
	default:
		return errHttpForbidden
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}
	defer conn.Close()

	snapshots, stop, err := api.deps.StudentSvc.Watch(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "watching students")
	}
	defer stop()

	// drain control frames so close is noticed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err = conn.WriteJSON(snap); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
