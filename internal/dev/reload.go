package dev

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is where browsers connect for reload notifications.
const ReloadPath = "/_ssg/reload"

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeCSS   ReloadMessageType = "css"
	ReloadTypeError ReloadMessageType = "error"
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers via WebSocket.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	File  string            `json:"file,omitempty"`
}

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 8
)

// reloadClient is one connected browser. Messages are queued on send and
// written by the client's own goroutine.
type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ReloadServer fans reload notifications out to connected browsers. A
// browser that falls sendBuffer messages behind is disconnected; it
// reconnects and reloads on its own.
type ReloadServer struct {
	mu       sync.Mutex
	clients  map[*reloadClient]struct{}
	upgrader websocket.Upgrader
	// lastError is replayed to browsers that connect while it is set.
	lastError []byte
}

// NewReloadServer creates a reload server.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			// Pages are served from the dev server and the bundler origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and serves the browser until it
// disconnects.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &reloadClient{conn: conn, send: make(chan []byte, sendBuffer)}

	r.mu.Lock()
	if r.lastError != nil {
		c.send <- r.lastError
	}
	r.clients[c] = struct{}{}
	r.mu.Unlock()

	go c.writeLoop()
	// Browsers never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.drop(c)
}

func (c *reloadClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop unregisters c and ends its write loop.
func (r *ReloadServer) drop(c *reloadClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}
}

// NotifyReload asks every browser to reload the page.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyCSS asks every browser to refetch its stylesheets.
func (r *ReloadServer) NotifyCSS(file string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyError shows the error overlay, now and on every later connection
// until ClearError.
func (r *ReloadServer) NotifyError(msg string) {
	data := encodeMessage(ReloadMessage{Type: ReloadTypeError, Error: msg})
	r.mu.Lock()
	r.lastError = data
	r.mu.Unlock()
	r.send(data)
}

// ClearError removes the overlay if one is showing.
func (r *ReloadServer) ClearError() {
	r.mu.Lock()
	had := r.lastError != nil
	r.lastError = nil
	r.mu.Unlock()
	if had {
		r.broadcast(ReloadMessage{Type: ReloadTypeClear})
	}
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	r.send(encodeMessage(msg))
}

func (r *ReloadServer) send(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		select {
		case c.send <- data:
		default:
			delete(r.clients, c)
			close(c.send)
		}
	}
}

func encodeMessage(msg ReloadMessage) []byte {
	data, _ := json.Marshal(msg)
	return data
}

// ClientCount returns the number of connected browsers.
func (r *ReloadServer) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close disconnects every browser.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		delete(r.clients, c)
		close(c.send)
	}
}

// InjectClient adds the reload client before </body>, or appends it.
func InjectClient(doc string) string {
	if i := strings.LastIndex(doc, "</body>"); i >= 0 {
		return doc[:i] + ClientScript + doc[i:]
	}
	if i := strings.LastIndex(doc, "</html>"); i >= 0 {
		return doc[:i] + ClientScript + doc[i:]
	}
	return doc + ClientScript
}

// ClientScript connects a page to the reload server.
const ClientScript = `<script>
(function () {
  var overlayID = 'ssg-error-overlay';
  var retry = 500;

  function clearOverlay() {
    var el = document.getElementById(overlayID);
    if (el) el.remove();
  }

  function showOverlay(text) {
    clearOverlay();
    var el = document.createElement('pre');
    el.id = overlayID;
    el.textContent = text;
    el.style.cssText = 'position:fixed;inset:0;margin:0;padding:24px;overflow:auto;z-index:2147483647;' +
      'background:#1e1e1e;color:#ff6b6b;font:13px/1.5 ui-monospace,monospace;white-space:pre-wrap;';
    document.body.appendChild(el);
  }

  function refreshStyles() {
    var links = document.querySelectorAll('link[rel="stylesheet"]');
    for (var i = 0; i < links.length; i++) {
      var url = new URL(links[i].href);
      url.searchParams.set('t', String(Date.now()));
      links[i].href = url.href;
    }
  }

  var handlers = {
    reload: function () { location.reload(); },
    css: refreshStyles,
    error: function (msg) { showOverlay(msg.error); },
    clear: clearOverlay
  };

  function connect() {
    var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(scheme + location.host + '` + ReloadPath + `');
    ws.addEventListener('open', function () { retry = 500; });
    ws.addEventListener('message', function (e) {
      var msg;
      try { msg = JSON.parse(e.data); } catch (_) { return; }
      if (handlers[msg.type]) handlers[msg.type](msg);
    });
    ws.addEventListener('close', function () {
      retry = Math.min(retry * 2, 10000);
      setTimeout(connect, retry);
    });
  }

  connect();
})();
</script>
`
