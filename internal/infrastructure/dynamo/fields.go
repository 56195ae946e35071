package dynamo

// DynamoDB attribute names used in keys and expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID        = "user_id"
	fieldOwnerID       = "owner_id"
	fieldEmail         = "email"
	fieldToken         = "token"
	fieldCode          = "code"
	fieldExpiresAt     = "expires_at"
	fieldEmailVerified = "email_verified"
	fieldUpdatedAt     = "updated_at"

	// emailIndex serves ad-hoc lookups; the auth path reads guards instead
	// because GSIs are eventually consistent.
	emailIndex = "email-index"
	// emailGuardPrefix keys the marker item that reserves an email in the
	// users table. Guards carry no email attribute, so they stay out of
	// email-index; owner_id points at the user item.
	emailGuardPrefix = "email#"
)
