package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/relay"
	"lokalrunner/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type trackingRequest struct {
	Event   string  `json:"event"`
	OrderID int64   `json:"order_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// trackingSocket is the live-tracking connection. A client joins one or more
// order rooms and receives every location update published to them. Joins are
// authorized against the order's participants and every publish is
// re-authorized; dropping the connection never touches order state.
func (s *Server) trackingSocket(c *gin.Context) {
	userID := callerID(c)
	roles := callerRoles(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warning("websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan interface{}, 32)
	subs := make(map[int64]*relay.Subscription)
	defer func() {
		for _, sub := range subs {
			s.svc.Relay().Leave(sub)
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		var req trackingRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Event {
		case "joinOrder":
			if _, joined := subs[req.OrderID]; joined {
				continue
			}
			sub, err := s.svc.Relay().Join(ctx, req.OrderID, userID, roles)
			if err != nil {
				send(ctx, out, wsError(err))
				continue
			}
			subs[req.OrderID] = sub
			go forward(ctx, sub, out)
			send(ctx, out, gin.H{"event": "joinedRoom", "order_id": req.OrderID})

		case "updateLocation":
			if err := s.svc.Relay().PublishLocation(ctx, req.OrderID, userID, req.Lat, req.Lng); err != nil {
				send(ctx, out, wsError(err))
			}

		default:
			send(ctx, out, gin.H{"event": "error", "message": "unknown event"})
		}
	}
}

func forward(ctx context.Context, sub *relay.Subscription, out chan<- interface{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-sub.C:
			if !ok {
				return
			}
			send(ctx, out, gin.H{"event": "locationUpdated", "data": update})
		}
	}
}

func send(ctx context.Context, out chan<- interface{}, msg interface{}) {
	select {
	case <-ctx.Done():
	case out <- msg:
	}
}

// wsError keeps not-found and forbidden indistinguishable so room membership
// cannot be probed through the socket.
func wsError(err error) gin.H {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		return gin.H{"event": "error", "message": "order not found"}
	case errors.Is(err, service.ErrInvalidRequest):
		return gin.H{"event": "error", "message": err.Error()}
	default:
		return gin.H{"event": "error", "message": "internal error"}
	}
}
