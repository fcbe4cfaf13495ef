package apix

import "context"

// AccountAPI covers the authenticated account surface: overview dashboard,
// profile, password and order timeline.
type AccountAPI struct {
	c *Client
}

func NewAccountAPI(c *Client) *AccountAPI {
	return &AccountAPI{c: c}
}

func (a *AccountAPI) Overview(ctx context.Context) (*AccountOverviewResponse, error) {
	var out AccountOverviewResponse
	if err := a.c.Get(ctx, "/account/overview", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountAPI) Profile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := a.c.Get(ctx, "/account/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileUpdate carries the optional profile fields; nil pointers are
// omitted so the backend patches only what was provided.
type ProfileUpdate struct {
	FullName *string        `json:"full_name,omitempty"`
	Phone    *string        `json:"phone,omitempty"`
	DOB      *string        `json:"dob,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (a *AccountAPI) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := a.c.Put(ctx, "/account/profile", upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword verifies the current password server-side; a wrong one
// surfaces as an APIError with code "invalid_current_password".
func (a *AccountAPI) ChangePassword(ctx context.Context, current, next string) (*OKResponse, error) {
	if err := requireID("current_password_required", current); err != nil {
		return nil, err
	}
	if err := requireID("new_password_required", next); err != nil {
		return nil, err
	}
	body := map[string]any{"current_password": current, "new_password": next}
	var out OKResponse
	if err := a.c.Put(ctx, "/account/password", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountAPI) OrderTimeline(ctx context.Context, orderID string) (*TimelineResponse, error) {
	if err := requireID("order_id_required", orderID); err != nil {
		return nil, err
	}
	var out TimelineResponse
	if err := a.c.Get(ctx, "/account/orders/"+orderID+"/timeline", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
