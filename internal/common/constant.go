package common

// AuthorizationHeaderName is the HTTP header carrying the access token as
// "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the API accepts.
const BearerScheme = "Bearer"
