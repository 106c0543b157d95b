package postsapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"quill/cmd/internal/posts"
)

// handleStream upgrades the connection and relays post feed events until the
// client goes away. The stream is public and strictly server-to-client.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.Error(w, "live feed disabled", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Info("posts.stream.accept.fail", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// No client messages are expected; CloseRead watches for the close frame
	// and cancels the context when the peer disconnects.
	ctx := conn.CloseRead(r.Context())

	events, cancel := h.feed.Subscribe()
	defer cancel()

	h.log.Info("posts.stream.open", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := h.writeEvent(ctx, conn, ev); err != nil {
				h.log.Info("posts.stream.write.fail", "close_status", websocket.CloseStatus(err), "err", err)
				return
			}
		}
	}
}

func (h *Handler) writeEvent(ctx context.Context, conn *websocket.Conn, ev posts.Event) error {
	wctx, cancel := context.WithTimeout(ctx, h.cfg.StreamWriteTimeout)
	defer cancel()

	b, err := json.Marshal(toFeedMessage(ev))
	if err != nil {
		return err
	}
	return conn.Write(wctx, websocket.MessageText, b)
}
