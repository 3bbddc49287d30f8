package vote

// submitRequest is the JSON body of a vote submission.
//
// The "website" field is a honeypot: the form renders it hidden, so a real
// voter never fills it in. Anything non-empty marks the submission as bot
// traffic.
type submitRequest struct {
	Email       string            `json:"email"`
	Nominations map[string]string `json:"nominations"`
	Website     string            `json:"website"`
}

// submitResponse is the JSON body of an accepted submission.
type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
