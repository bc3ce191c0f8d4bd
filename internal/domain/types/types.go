package types

type ServiceMode string

// Map Service - polls the aircraft feed and keeps the map overlay in sync
// Ingest Service - reads dump1090 and feeder uploads, publishes position messages
// Store Service - consumes position messages into the database
// API Service - serves the aircraft snapshot the map polls
const (
	MapService    ServiceMode = "map-service"
	IngestService ServiceMode = "ingest-service"
	StoreService  ServiceMode = "store-service"
	APIService    ServiceMode = "api-service"
)

func (m ServiceMode) String() string {
	return string(m)
}

// Measure names written to the time series
type MeasureName string

const (
	MeasureFlightLevel MeasureName = "FlightLevel"
	MeasureHeading     MeasureName = "Heading"
	MeasureLatitude    MeasureName = "Latitude"
	MeasureLongitude   MeasureName = "Longitude"
)

// Where a position message came from
type MessageSource string

const (
	SourceSBS    MessageSource = "sbs"
	SourceFeeder MessageSource = "feeder"
)

type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleFeeder UserRole = "FEEDER"
)
