package dto

// RequestMeta carries the originating address and device label of a request
// into the service layer, where they are attached to refresh tokens and
// activity entries.
type RequestMeta struct {
	IPAddress string
	Device    string
}
