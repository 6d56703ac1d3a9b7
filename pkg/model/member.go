package model

// Member is the authenticated identity the upstream gateway attaches to each
// request. The services trust these headers; verifying them is the gateway's
// job.
type Member struct {
	ID          string
	DisplayName string
}
