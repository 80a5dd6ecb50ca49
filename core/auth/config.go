package auth

// Config holds the credentials used for write calls.
type Config struct {
	// Token is a pre-issued bearer token. It wins over JWTSecret.
	Token string `mapstructure:"token" default:""`
	// JWTSecret signs locally issued tokens.
	JWTSecret string `mapstructure:"jwt_secret" default:""`
	// JWTIssuer is the iss claim of signed tokens.
	JWTIssuer string `mapstructure:"jwt_issuer" default:"cover-manager"`
	// JWTSubject is the sub claim of signed tokens, usually the institution code.
	JWTSubject string `mapstructure:"jwt_subject" default:""`
	// JWTTTLMinutes is the lifetime of signed tokens.
	JWTTTLMinutes int `mapstructure:"jwt_ttl_minutes" default:"15" validate:"gte=0"`
}
