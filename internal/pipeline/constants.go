package pipeline

// Defaults for the analysis round trip.
// Model and temperature can be overridden through config.
const (
	// DefaultModelName is the Gemini model used for extraction and analysis.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultTemperature keeps the model deterministic-leaning so extraction
	// favours accuracy over variation.
	DefaultTemperature float32 = 0.1

	// DefaultEncodeConcurrency bounds how many documents are encoded at once.
	DefaultEncodeConcurrency = 4

	// MediaTypePDF is the only non-image media type accepted for analysis.
	MediaTypePDF = "application/pdf"

	// ResponseMediaType is the structured response format requested from the model.
	ResponseMediaType = "application/json"
)
