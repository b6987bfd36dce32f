package echoapi

import (
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type notificationApi struct {
	relay  *notify.Relay
	logger core.Logger
}

func registerNotificationAPI(app *echo.Echo, relay *notify.Relay, logger core.Logger) {
	api := notificationApi{relay: relay, logger: logger}
	app.GET("/ws/notifications", api.notifications)
}

// notifications upgrades to a websocket and blocks while the relay serves it.
func (api *notificationApi) notifications(ctx echo.Context) error {
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already replied with an HTTP error
		api.logger.Debug("notify: upgrade failed", err)
		return nil
	}
	api.relay.Serve(conn)
	return nil
}
