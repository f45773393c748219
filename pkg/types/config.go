package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Shared secret for the GET api surface and the confirmation-link flow.
	APIKey string `envconfig:"API_KEY"`

	// Redis cache; every path must also work with the cache unavailable.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Geocoding partner.
	GeoBaseURL        string  `envconfig:"GEO_BASE_URL"`
	GeoSearchRadiusKM float64 `envconfig:"GEO_SEARCH_RADIUS_KM" default:"2"`

	// External contact directory.
	DirectoryBaseURL string `envconfig:"DIRECTORY_BASE_URL"`
	DirectoryAPIKey  string `envconfig:"DIRECTORY_API_KEY"`

	// Outbound mail API.
	MailBaseURL string `envconfig:"MAIL_BASE_URL"`
	MailAPIKey  string `envconfig:"MAIL_API_KEY"`
	MailFrom    string `envconfig:"MAIL_FROM" default:"no-reply@takaful.org"`
	AdminEmail  string `envconfig:"ADMIN_EMAIL"`

	// Base URL used when building confirmation links in outbound mail.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// S3 document store.
	DocumentBucket string `envconfig:"DOCUMENT_BUCKET" default:"takaful-documents"`
}
