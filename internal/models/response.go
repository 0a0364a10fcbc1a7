package models

// Envelope is the uniform wrapper every mutation returns.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PostEnvelope overlays the envelope onto the mutated post's fields.
// When the embedded view is nil its fields are left out entirely, so the
// envelope stands alone on failure.
type PostEnvelope struct {
	Envelope
	*PostView
}

// UserEnvelope is the signUp response.
type UserEnvelope struct {
	Envelope
	ID       string `json:"id,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// TokenEnvelope is the signIn response.
type TokenEnvelope struct {
	Envelope
	Token string `json:"token,omitempty"`
}
