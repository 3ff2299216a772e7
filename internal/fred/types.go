package fred

// missingValueSentinel is the upstream marker for "no observation on this
// date". Payload entries carrying it never become Observations.
const missingValueSentinel = "."

// observationsResponse is the upstream payload for series/observations.
type observationsResponse struct {
	Count        int                  `json:"count"`
	ErrorCode    int                  `json:"error_code,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Observations []observationPayload `json:"observations"`
}

// observationPayload is one raw upstream data point. Value is a string
// because upstream encodes both numbers and the missing-value sentinel in
// the same field.
type observationPayload struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}
