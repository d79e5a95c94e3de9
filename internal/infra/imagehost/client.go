package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// 画像ホスティングサービスの窓口。
// base64の画像を渡すと公開URLが返り、こちらではURLだけを保存する。
type Uploader interface {
	Upload(ctx context.Context, name string, encoded string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type httpUploader struct {
	cfg    Config
	client *http.Client
}

func NewHTTPUploader(cfg Config) (Uploader, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing image host base url")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &httpUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type uploadRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// 1回だけ送る。リトライしない。
func (u *httpUploader) Upload(ctx context.Context, name string, encoded string) (string, error) {
	if strings.TrimSpace(encoded) == "" {
		return "", fmt.Errorf("missing image payload")
	}

	raw, err := json.Marshal(uploadRequest{Name: name, Image: encoded})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.BaseURL+"/upload", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	if u.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("image host status %d: %s", resp.StatusCode, string(detail))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("image host returned empty url")
	}
	return out.URL, nil
}
