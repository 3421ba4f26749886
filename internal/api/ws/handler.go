package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/infrastructure/monitoring"
	"github.com/orbitalos/backend/internal/sm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local tooling connects from arbitrary origins.
		return true
	},
}

// Handler upgrades HTTP connections into process links: one WebSocket
// per emulated process, frames carrying wire commands to the broker.
type Handler struct {
	registry      *sm.ServiceRegistry
	wellKnownName string
	log           *logging.Logger
	metrics       *monitoring.Metrics
}

// NewHandler creates a WebSocket handler serving the given registry.
func NewHandler(registry *sm.ServiceRegistry, wellKnownName string, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		registry:      registry,
		wellKnownName: wellKnownName,
		log:           log.Named("ws"),
		metrics:       metrics,
	}
}

// HandleConnection runs one process link until the peer disconnects.
// The first frame sent is the welcome reply carrying the handle of the
// link's session to the root dispatcher.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	l := newLink(h.registry, h.log, h.metrics)
	defer l.close()

	welcome, err := l.open(h.wellKnownName)
	if writeErr := conn.WriteJSON(welcome); writeErr != nil {
		l.log.Error("welcome write failed", zap.Error(writeErr))
		return
	}
	if err != nil {
		// No root session, nothing further to serve.
		l.log.Error("root session unavailable", zap.Error(err))
		return
	}
	l.log.Info("process link established", zap.Uint32("root_session", welcome.Handles[0]))

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.log.Warn("process link dropped", zap.Error(err))
			}
			return
		}
		h.countFrame("in")

		reply := l.handle(frame)
		if err := conn.WriteJSON(reply); err != nil {
			l.log.Error("reply write failed", zap.Error(err))
			return
		}
		h.countFrame("out")
	}
}

func (h *Handler) countFrame(direction string) {
	if h.metrics != nil {
		h.metrics.WSFrames.WithLabelValues(direction).Inc()
	}
}
