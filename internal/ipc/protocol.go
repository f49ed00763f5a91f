package ipc

// Request is one control command sent to the owner session. Category is
// only meaningful for the "choose" command.
type Request struct {
	Command  string `json:"command"`
	Category string `json:"category,omitempty"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
