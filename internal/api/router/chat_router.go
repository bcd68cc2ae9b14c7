package router

import (
	"net/http"

	"livechat-backend/internal/api"
)

// ChatRoutes mounts the websocket endpoint. The upgrade handshake bypasses
// the request queue; frames are dispatched by the relay itself.
func ChatRoutes(path string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		mux.HandleFunc(path, s.WSHandler().ServeWS)
	}
}
