package service

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"homefinance/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Institution 开放银行机构
type Institution struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
}

// ConsentSession 发起授权的结果：用户需要访问 Link 完成授权
type ConsentSession struct {
	RequisitionID  string    `json:"requisition_id"`
	Link           string    `json:"link"`
	ConsentExpires time.Time `json:"consent_expires"`
}

// AccountData 厂商侧账户信息
type AccountData struct {
	ExternalID string `json:"id"`
	IBANMask   string `json:"iban"`
	Currency   string `json:"currency"`
}

// BalanceData 厂商侧余额
type BalanceData struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// VendorTransaction 厂商侧交易记录（字段保持原始字符串，由对账层解析）
type VendorTransaction struct {
	TransactionID string `json:"transactionId"`
	Amount        string `json:"amount"` // 带符号金额，负数为借记
	Currency      string `json:"currency"`
	BookingDate   string `json:"bookingDate"` // 2006-01-02
	Merchant      string `json:"merchant"`
	Description   string `json:"description"`
}

// BankingProvider 开放银行厂商能力接口
// 对账与处理器仅依赖该接口，测试时可注入假实现而无需网络
type BankingProvider interface {
	ListInstitutions(ctx context.Context) ([]Institution, error)
	StartConsent(ctx context.Context, institutionID, redirectURL, reference string) (*ConsentSession, error)
	FetchAccounts(ctx context.Context, requisitionID string) ([]AccountData, error)
	FetchBalance(ctx context.Context, accountExternalID string) (*BalanceData, error)
	FetchTransactions(ctx context.Context, accountExternalID string, from time.Time) ([]VendorTransaction, error)
}

// BankingClient BankingProvider 的 HTTP 实现
// 按厂商要求使用私钥签名的 JWT 断言换取访问令牌，令牌缓存到过期
type BankingClient struct {
	cfg        *config.BankingConfig
	httpClient *http.Client
	privateKey *rsa.PrivateKey

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewBankingClient 创建厂商客户端，解析 PEM 私钥
func NewBankingClient(cfg *config.BankingConfig) (*BankingClient, error) {
	if cfg.ApplicationID == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("银行厂商配置不完整，请设置 application_id 和 private_key")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("解析厂商私钥失败: %w", err)
	}
	return &BankingClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		privateKey: key,
	}, nil
}

// signAssertion 生成厂商要求的 RS256 签名断言
func (c *BankingClient) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.cfg.ApplicationID,
		"aud": c.cfg.BaseURL,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(5 * time.Minute)),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.cfg.ApplicationID
	return token.SignedString(c.privateKey)
}

// getAccessToken 获取访问令牌，缓存到过期前 1 分钟
func (c *BankingClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion()
	if err != nil {
		return "", fmt.Errorf("生成签名断言失败: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_assertion_type", "urn:ietf:params:oauth:client-assertion-type:jwt-bearer")
	form.Set("client_assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求厂商令牌接口失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("厂商令牌接口返回 %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("解析令牌响应失败: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("厂商返回空访问令牌: %s", string(body))
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// doJSON 带令牌请求厂商接口并解析 JSON 响应
func (c *BankingClient) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求厂商接口失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("厂商接口返回 %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("解析厂商响应失败: %w", err)
		}
	}
	return nil
}

// ListInstitutions 获取可连接的银行机构列表
func (c *BankingClient) ListInstitutions(ctx context.Context) ([]Institution, error) {
	var institutions []Institution
	if err := c.doJSON(ctx, "GET", "/institutions", nil, &institutions); err != nil {
		return nil, err
	}
	return institutions, nil
}

// StartConsent 发起授权流程，返回用户需要访问的授权链接
func (c *BankingClient) StartConsent(ctx context.Context, institutionID, redirectURL, reference string) (*ConsentSession, error) {
	reqBody := map[string]string{
		"institution_id": institutionID,
		"redirect":       redirectURL,
		"reference":      reference,
	}
	var resp struct {
		ID   string `json:"id"`
		Link string `json:"link"`
	}
	if err := c.doJSON(ctx, "POST", "/requisitions", reqBody, &resp); err != nil {
		return nil, err
	}
	return &ConsentSession{
		RequisitionID:  resp.ID,
		Link:           resp.Link,
		ConsentExpires: time.Now().AddDate(0, 0, c.cfg.ConsentDays),
	}, nil
}

// FetchAccounts 获取授权下的账户列表
func (c *BankingClient) FetchAccounts(ctx context.Context, requisitionID string) ([]AccountData, error) {
	var resp struct {
		Accounts []AccountData `json:"accounts"`
	}
	if err := c.doJSON(ctx, "GET", "/requisitions/"+url.PathEscape(requisitionID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// FetchBalance 获取账户余额
func (c *BankingClient) FetchBalance(ctx context.Context, accountExternalID string) (*BalanceData, error) {
	var resp struct {
		Balance BalanceData `json:"balance"`
	}
	if err := c.doJSON(ctx, "GET", "/accounts/"+url.PathEscape(accountExternalID)+"/balances", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Balance, nil
}

// FetchTransactions 获取账户交易（from 起的已入账交易）
func (c *BankingClient) FetchTransactions(ctx context.Context, accountExternalID string, from time.Time) ([]VendorTransaction, error) {
	path := fmt.Sprintf("/accounts/%s/transactions?date_from=%s",
		url.PathEscape(accountExternalID), from.Format("2006-01-02"))
	var resp struct {
		Booked []VendorTransaction `json:"booked"`
	}
	if err := c.doJSON(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Booked, nil
}
