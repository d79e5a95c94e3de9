package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/internal/usecase"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type client struct {
	httpClient *http.Client
	clientID   string
}

// GoogleのtokeninfoエンドポイントでIDトークンを検証する。
// audが自分のclient_idと一致しないトークンは拒否。
func NewClient(clientID string) (usecase.GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("missing google client id")
	}
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clientID:   clientID,
	}, nil
}

type tokenInfoResponse struct {
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Exp           string `json:"exp"`
}

func (c *client) Verify(ctx context.Context, idToken string) (*usecase.GoogleTokenClaims, error) {
	endpoint := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google tokeninfo: status %d", res.StatusCode)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, err
	}

	//他アプリ向けに発行されたトークンは受け付けない
	if info.Aud != c.clientID {
		return nil, errors.New("google tokeninfo: audience mismatch")
	}

	return &usecase.GoogleTokenClaims{
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
	}, nil
}
