package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schooldesk_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	AttendanceMarked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schooldesk_attendance_marked_total",
			Help: "Attendance records written by status code",
		},
		[]string{"status"},
	)

	JustificationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schooldesk_justification_decisions_total",
			Help: "Absence justification decisions by outcome",
		},
		[]string{"decision"},
	)
)
