package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramMessagesTotal,
		botProbeTotal,
		botUp,
	)
}

var (
	// kind: payment|test
	// status: sent|error
	telegramMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_total",
			Help: "Telegram notification attempts by kind and delivery status.",
		},
		[]string{"kind", "status"},
	)

	botProbeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_bot_probe_total",
			Help: "Bot connectivity checks by result (ok|fail).",
		},
		[]string{"result"},
	)

	botUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "telegram_bot_up",
			Help: "1 if the last bot connectivity check succeeded, 0 otherwise.",
		},
	)
)

func IncTelegramMessage(kind, status string) {
	telegramMessagesTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func ObserveBotProbe(ok bool) {
	if ok {
		botProbeTotal.WithLabelValues("ok").Inc()
		botUp.Set(1)
		return
	}
	botProbeTotal.WithLabelValues("fail").Inc()
	botUp.Set(0)
}
