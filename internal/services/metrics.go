package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// adoptionTransitions counts committed request status changes by target
	// status.
	adoptionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_adoption_transitions_total",
			Help: "Adoption request status transitions, by target status.",
		},
		[]string{"to"},
	)

	// adoptionCreates counts request creation attempts by outcome
	// (created, replayed, unavailable, error).
	adoptionCreates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_adoption_create_total",
			Help: "Adoption request creation attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(adoptionTransitions, adoptionCreates)
}
