package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names, kept in one place so tests and docs agree.
const (
	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvAPIBaseURL = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout = "STOREFRONT_API_TIMEOUT"

	EnvSessionPath = "STOREFRONT_SESSION_PATH"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvRedisAddr = "STOREFRONT_REDIS_ADDR"

	EnvCartSnapshotTTL = "STOREFRONT_CART_SNAPSHOT_TTL"

	EnvCheckoutPaymentDelay    = "STOREFRONT_CHECKOUT_PAYMENT_DELAY"
	EnvCheckoutDefaultSellerID = "STOREFRONT_CHECKOUT_DEFAULT_SELLER_ID"

	EnvChatUnreadPollInterval = "STOREFRONT_CHAT_UNREAD_POLL_INTERVAL"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"
)
