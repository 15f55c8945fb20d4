// Package metrics регистрирует prometheus-счётчики доменных событий.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContractsExpired — количество контрактов, переведённых в expired
	// фоновым проходом.
	ContractsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planconnect_contracts_expired_total",
		Help: "Number of contracts transitioned to expired by the sweeper.",
	})

	// ContractTransitions — количество переходов контрактов по статусам.
	ContractTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planconnect_contract_transitions_total",
		Help: "Number of contract state transitions by resulting status.",
	}, []string{"status"})

	// ChatMessages — количество отправленных сообщений чата.
	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planconnect_chat_messages_total",
		Help: "Number of chat messages accepted.",
	})

	// WSConnections — текущее количество открытых websocket-подключений.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planconnect_ws_connections",
		Help: "Current number of open websocket connections.",
	})
)
