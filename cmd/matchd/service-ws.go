package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketService answers dispatch requests at /api/match.  Each
// text message is a JSON value, and each reply is the JSON response
// from Process.
func (s *Service) WebSocketService(ctx context.Context, addr string) error {
	log.Printf("WebSocketService on %s", addr)

	var upgrader = websocket.Upgrader{} // use default options

	api := func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Service.WebSocketService connection")

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error", err)
				break
			}

			response := s.Process(ctx, message)

			if err = c.WriteMessage(mt, response); err != nil {
				log.Println("write error", err)
				break
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/match", api)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	return server.ListenAndServe()
}
