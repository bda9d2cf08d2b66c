package push

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMConfig - учетные данные сервисного аккаунта Firebase.
type FCMConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string // PEM
	TokenURI    string
	Timeout     time.Duration
}

// FCMProvider отправляет уведомления через FCM HTTP v1 API.
// OAuth-токен получается по JWT-assertion сервисного аккаунта
// и кэшируется до истечения срока.
type FCMProvider struct {
	config     *FCMConfig
	httpClient *http.Client
	signingKey *rsa.PrivateKey

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewFCMProvider(config *FCMConfig) (*FCMProvider, error) {
	if config.ProjectID == "" || config.ClientEmail == "" || config.PrivateKey == "" {
		return nil, errors.New("push: incomplete FCM service account config")
	}

	key, err := parseRSAPrivateKey(config.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("push: parse service account key: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &FCMProvider{
		config:     config,
		signingKey: key,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func parseRSAPrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("service account key is not RSA")
	}
	return rsaKey, nil
}

// Send отправляет одно сообщение. Невалидный или отозванный токен
// устройства - не ошибка инфраструктуры, но здесь мы её не различаем:
// решение об очистке токена принимает вызывающая сторона по логам.
func (p *FCMProvider) Send(ctx context.Context, msg *Message) error {
	if msg.Token == "" {
		return errors.New("push: empty device token")
	}

	accessToken, err := p.getAccessToken(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"token": msg.Token,
			"notification": map[string]string{
				"title": msg.Title,
				"body":  msg.Body,
			},
			"data": msg.Data,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", p.config.ProjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push: fcm responded %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// getAccessToken возвращает кэшированный OAuth-токен или запрашивает новый.
func (p *FCMProvider) getAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Минута запаса, чтобы не отправить запрос с токеном на грани истечения
	if p.accessToken != "" && time.Now().Add(time.Minute).Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	assertion, err := p.buildAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("push: token exchange failed %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("push: empty access token in response")
	}

	p.accessToken = tokenResp.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return p.accessToken, nil
}

func (p *FCMProvider) buildAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   p.config.ClientEmail,
		"scope": fcmScope,
		"aud":   p.config.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.signingKey)
}
