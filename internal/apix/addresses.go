package apix

import "context"

// AddressesAPI manages the logged-in customer's saved addresses.
type AddressesAPI struct {
	c *Client
}

func NewAddressesAPI(c *Client) *AddressesAPI {
	return &AddressesAPI{c: c}
}

func (a *AddressesAPI) List(ctx context.Context) (*AddressesResponse, error) {
	var out AddressesResponse
	if err := a.c.Get(ctx, "/customer-addresses", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AddressesAPI) Create(ctx context.Context, in AddressInput) (*AddressResponse, error) {
	var out AddressResponse
	if err := a.c.Post(ctx, "/customer-addresses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AddressesAPI) Update(ctx context.Context, id string, in AddressInput) (*AddressResponse, error) {
	if err := requireID("address_id_required", id); err != nil {
		return nil, err
	}
	var out AddressResponse
	if err := a.c.Put(ctx, "/customer-addresses/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AddressesAPI) Delete(ctx context.Context, id string) (*OKResponse, error) {
	if err := requireID("address_id_required", id); err != nil {
		return nil, err
	}
	var out OKResponse
	if err := a.c.Delete(ctx, "/customer-addresses/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
