package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dicaapp/backend/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced on the API surface; the socket carries a
		// signed token instead.
		return true
	},
}

// ServeWs upgrades a dashboard connection. Browsers cannot set headers on
// websocket requests, so the bearer token travels as a query parameter.
func ServeWs(h *Hub, jwt *auth.JWT, w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.Parse(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(h, claims.UserID, conn)
	h.join(claims.UserID, c)
	go c.writePump()
	go c.readPump()
}
