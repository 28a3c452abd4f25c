package types

// Telemetry metric names for CloudWatch.
const (
	// Metric Names
	MetricOutfitSelected      = "OutfitSelected"
	MetricOutfitInvalid       = "OutfitInvalid"
	MetricWeatherFetchLatency = "WeatherFetchLatency"
	MetricExternalAPIFailure  = "ExternalAPIFailure"

	// Dimension Keys
	DimIntensity = "Intensity"
	DimSource    = "Source"
	DimProvider  = "Provider"

	// Metric Namespace
	MetricNamespace = "OutfitPicker"
)
