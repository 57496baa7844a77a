package constants

// Deployment environments
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Database table names
const (
	TableLicenses = "licenses"
	TableQuotas   = "issuer_quotas"
)

// Context keys set by HTTP middleware
const (
	ContextKeyActorID = "actor_id"
)
