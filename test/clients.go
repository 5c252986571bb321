package test

import (
	"context"
	"net/http"
	"time"

	"github.com/soodoh/openfit/pkg/client"
)

func newClient() *client.Client {
	return client.New(serverEndpoint, client.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
}

func login(ctx context.Context, username, password string) (*client.Client, error) {
	c := newClient()
	if err := c.Login(ctx, username, password); err != nil {
		return nil, err
	}
	return c, nil
}
