package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// areasProcessed counts postcode areas a run has finished with, whether
	// or not their probe succeeded.
	areasProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_areas_processed_total",
		Help: "The total number of postcode areas processed.",
	})
	// centresSeen counts every extracted centre, duplicates included.
	centresSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_centres_seen_total",
		Help: "The total number of centres extracted across all batches.",
	})
	// newUniquesStored counts rows appended to the ledger.
	newUniquesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_centres_stored_total",
		Help: "The total number of new unique centres appended to the ledger.",
	})
	// alertsSent counts availability alerts handed to the alert channel.
	alertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_alerts_sent_total",
		Help: "The total number of availability alerts sent.",
	})
	// areaErrors counts areas that ended with a recoverable error.
	areaErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_area_errors_total",
		Help: "The total number of areas that failed with a recoverable error.",
	})
	// challengePauses counts verification pauses taken mid-pagination.
	challengePauses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slotscout_challenge_pauses_total",
		Help: "The total number of verification-challenge pauses.",
	})
)
