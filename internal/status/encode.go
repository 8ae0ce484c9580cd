// internal/status/encode.go
package status

// Wire is the JSON shape of the `status` reply's `status` object
// (spec.md §6). Layout is wire-locked.
// No IO. No side effects.
type Wire struct {
	Version string `json:"version"`

	ProcessDuration float64 `json:"process_duration"`
	ProcessPeriod   float64 `json:"process_period"`

	LastReceivedFrame  int64 `json:"last_received_frame"`
	LastProcessedFrame int64 `json:"last_processed_frame"`

	TimeSinceLastMessage int64 `json:"time_since_last_message"`

	CurrentAttenuation int     `json:"current_attenuation"`
	Timeout            float64 `json:"timeout"`

	State int `json:"state"`
	Mode  int `json:"mode"`

	InPositions  map[string]int `json:"in_positions"`
	OutPositions map[string]int `json:"out_positions"`

	PixelCountThresholds map[string]int `json:"pixel_count_thresholds"`

	// FilterNames is supplemented (SPEC_FULL.md); purely descriptive.
	FilterNames map[string]string `json:"filter_names"`
}

// Encode converts a Snapshot into its wire representation.
func Encode(s Snapshot) Wire {
	return Wire{
		Version:              s.Version,
		ProcessDuration:      s.ProcessDurationUs,
		ProcessPeriod:        s.ProcessPeriodUs,
		LastReceivedFrame:    s.LastReceivedFrame,
		LastProcessedFrame:   s.LastProcessedFrame,
		TimeSinceLastMessage: s.TimeSinceLastMessageSeconds,
		CurrentAttenuation:   s.CurrentAttenuation,
		Timeout:              s.TimeoutSeconds,
		State:                int(s.State),
		Mode:                 int(s.Mode),
		InPositions:          positionsToMap(s.InPositions),
		OutPositions:         positionsToMap(s.OutPositions),
		PixelCountThresholds: map[string]int{
			"low1":  s.Thresholds.Low1,
			"low2":  s.Thresholds.Low2,
			"high1": s.Thresholds.High1,
			"high2": s.Thresholds.High2,
			"high3": s.Thresholds.High3,
		},
		FilterNames: map[string]string{
			"filter1": s.FilterNames[0],
			"filter2": s.FilterNames[1],
			"filter3": s.FilterNames[2],
			"filter4": s.FilterNames[3],
		},
	}
}

func positionsToMap(p [4]int) map[string]int {
	return map[string]int{
		"filter1": p[0],
		"filter2": p[1],
		"filter3": p[2],
		"filter4": p[3],
	}
}
