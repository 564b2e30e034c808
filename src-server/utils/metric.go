package utils

// SubmissionEvent is one RSVP submission outcome, labeled by channel
// ("self-service" / "assisted") and outcome ("accepted" / "rejected" /
// "error").
type SubmissionEvent struct {
	Channel string
	Outcome string
}

type MetricChans struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
	RsvpSubmission     chan SubmissionEvent
}

func NewMetricChans() *MetricChans {
	return &MetricChans{
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
		RsvpSubmission:     make(chan SubmissionEvent, 16),
	}
}
