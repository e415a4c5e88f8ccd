package detectflightintent

type Input struct {
	Message string `json:"message"`

	// Threshold overrides the configured routing threshold when set.
	Threshold *float64 `json:"threshold,omitempty"`
}

type Output struct {
	IsFlight      bool    `json:"isFlight"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
	RouteToFlight bool    `json:"routeToFlight"`
	FlightQuery   string  `json:"flightQuery,omitempty"`
}
