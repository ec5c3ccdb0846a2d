package types

// ProfileInfo contains user profile metadata (kind 0).
// All fields are optional; a zero ProfileInfo with just PubKey set is the
// default view for a key with no cached metadata.
type ProfileInfo struct {
	PubKey      string `json:"pubkey,omitempty"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Nip05       string `json:"nip05,omitempty"`
	About       string `json:"about,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Lud16       string `json:"lud16,omitempty"`
	Lud06       string `json:"lud06,omitempty"`
	Website     string `json:"website,omitempty"`
}
