package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tide_messages_appended_total",
		Help: "Messages appended to any feed context.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tide_messages_deleted_total",
		Help: "Messages removed by their authors.",
	})
	ReactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tide_reactions_toggled_total",
		Help: "Reaction toggles by outcome.",
	}, []string{"applied"})
	FeedPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tide_feed_pages_total",
		Help: "Feed page requests served.",
	})
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tide_ws_clients",
		Help: "Currently connected WebSocket clients.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
