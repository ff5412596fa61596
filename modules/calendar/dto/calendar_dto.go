package dto

// CreateEventRequest is accepted both as query parameters (GET) and as a
// JSON body (POST). Field names mirror the public HTTP surface.
type CreateEventRequest struct {
	Name          string `json:"name" query:"name"`
	StartDateTime string `json:"start-datetime" query:"start-datetime"`
	EndDateTime   string `json:"end-datetime" query:"end-datetime"`
	Timezone      string `json:"timezone" query:"timezone"`
}

type CreateEventResponse struct {
	EventID  string `json:"event_id"`
	WebLink  string `json:"web_link,omitempty"`
	Subject  string `json:"subject"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}
