package resources

import (
	"context"
	"net/http"

	"github.com/finops-sre/opsprobe/internal/dispatch"
)

const usersPath = "/users"

// UserClient encodes the user invitation flow: inviting a user into an
// account and accepting the invitation with the issued token.
type UserClient struct {
	d *dispatch.Dispatcher
}

// NewUserClient creates a client on top of the dispatcher.
func NewUserClient(d *dispatch.Dispatcher) *UserClient {
	return &UserClient{d: d}
}

// InviteRaw issues the invite request and returns the raw response.
func (c *UserClient) InviteRaw(ctx context.Context, token, email, name string) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   usersPath,
		Header: bearerHeader(token),
		Body: map[string]string{
			"email": email,
			"name":  name,
		},
	})
}

// Invite invites a user into the account, expecting a 201. The result
// carries the invitation token and the invited user's id, both of which the
// accept call requires.
func (c *UserClient) Invite(ctx context.Context, token, email, name string) (*Invitation, error) {
	resp, err := c.InviteRaw(ctx, token, email, name)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &ResourceOperationError{Op: "invite user", Status: resp.StatusCode}
	}

	var invitation Invitation
	if err := resp.Decode(&invitation); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// AcceptRaw issues the accept request and returns the raw response.
func (c *UserClient) AcceptRaw(ctx context.Context, userID, invitationToken, password string) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   usersPath + "/" + userID + "/accept-invitation",
		Body: map[string]string{
			"invitation_token": invitationToken,
			"password":         password,
		},
	})
}

// Accept completes the invitation with the invited user's new password,
// expecting a 200. The returned invitation reflects the post-accept status.
func (c *UserClient) Accept(ctx context.Context, userID, invitationToken, password string) (*Invitation, error) {
	resp, err := c.AcceptRaw(ctx, userID, invitationToken, password)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "accept invitation", Status: resp.StatusCode}
	}

	var invitation Invitation
	if err := resp.Decode(&invitation); err != nil {
		return nil, err
	}
	return &invitation, nil
}
