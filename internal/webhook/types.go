package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"dmrelay/internal/dispatch"
)

// Dispatcher schedules fire-and-forget deliveries.
type Dispatcher interface {
	Dispatch(req dispatch.Request)
}

// Enumerator lists the members of a guild.
type Enumerator interface {
	Enumerate(ctx context.Context, guildID string) ([]string, error)
}

// CredentialValidator checks the Authorization header of a request.
type CredentialValidator interface {
	Validate(header string) bool
}

// Config holds webhook server configuration.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string

	// GuildID is the guild used for enumeration and as the dispatch
	// default when a request body names no guild.
	GuildID string
}

// ID is an opaque identifier that arrives as either a JSON string or a
// JSON number; callers on the original platform send both.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// webhookRequest is the JSON body of POST /webhook.
type webhookRequest struct {
	UserID  ID     `json:"user_id"`
	Message string `json:"message"`
	GuildID ID     `json:"guild_id"`
}

// acceptedResponse acknowledges receipt of a webhook. It is not a delivery
// confirmation; the delivery outcome is only observable in logs.
type acceptedResponse struct {
	Status string `json:"status"`
}

// memberIDsResponse is the JSON response of GET /fetch_member_ids.
type memberIDsResponse struct {
	MemberIDs []string `json:"member_ids"`
}

// ErrorResponse is the JSON response for request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
