package live

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades the connection and runs it as a hub client until the
// browser goes away.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// Same-device and LAN clients connect by whatever hostname or
			// IP the box answers to, so origin checking is off.
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		newClient(hub, conn).run(r.Context())
	}
}
