// Package energy 提供能源管理服务的 Go 客户端 SDK
//
// 覆盖三条核心链路：
// 1. 账号认证 - 注册 / 登录 / 接受邀请
// 2. 组织邀请 - 预检邀请 Token、兑换加入组织
// 3. 能源共享 - 提案 / 接受 / 完成 / 评分
//
// 使用示例：
//
//	client := energy.NewClient("http://localhost:8080",
//	    energy.WithTimeout(10*time.Second),
//	)
//
//	// 登录获取 Token
//	if err := client.Login("user@example.com", "password"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// 预检邀请
//	result, err := client.ValidateInvitation("abc123...")
//	if result.Valid {
//	    fmt.Println("邀请有效")
//	}
package energy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client 能源管理服务客户端
type Client struct {
	serverURL  string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// Option 客户端配置选项
type Option func(*Client)

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithToken 使用已有的访问 Token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient 使用自定义 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient 创建客户端
func NewClient(serverURL string, opts ...Option) *Client {
	c := &Client{
		serverURL: serverURL,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Token 当前访问 Token
func (c *Client) Token() string {
	return c.token
}

// apiResponse 服务端统一响应结构
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError 服务端返回的业务错误
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("服务端错误 [%d/%d]: %s", e.StatusCode, e.Code, e.Message)
}

// doRequest 发送请求并解析统一响应
func (c *Client) doRequest(method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.serverURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respData, &apiResp); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}

	if resp.StatusCode >= 400 || apiResp.Code != 0 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiResp.Code,
			Message:    apiResp.Message,
		}
	}

	if out != nil && apiResp.Data != nil {
		return json.Unmarshal(apiResp.Data, out)
	}
	return nil
}

// UserInfo 用户信息
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// authResult 认证接口响应
type authResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Register 注册账号，成功后自动持有 Token
func (c *Client) Register(email, password, name string) (*UserInfo, error) {
	var result authResult
	err := c.doRequest("POST", "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result.User, nil
}

// Login 登录，成功后自动持有 Token
func (c *Client) Login(email, password string) error {
	var result authResult
	err := c.doRequest("POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}
	c.token = result.Token
	return nil
}

// InvitationResult 邀请预检结果
type InvitationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		Email        string `json:"email"`
		Role         string `json:"role"`
		ExpiresAt    string `json:"expires_at"`
		Organization struct {
			Name string `json:"name"`
			Logo string `json:"logo"`
		} `json:"organization"`
	} `json:"data,omitempty"`
}

// ValidateInvitation 预检邀请 Token
func (c *Client) ValidateInvitation(token string) (*InvitationResult, error) {
	var result InvitationResult
	err := c.doRequest("GET", "/api/invitations/validate/"+url.PathEscape(token), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AcceptInviteResult 接受邀请结果
type AcceptInviteResult struct {
	Token   string   `json:"token"`
	OrgID   string   `json:"org_id"`
	NewUser bool     `json:"new_user"`
	User    UserInfo `json:"user"`
}

// AcceptInvitation 兑换邀请 Token 加入组织
// 新用户传入 email/name/password 创建账号，已有用户传入密码验证身份。
func (c *Client) AcceptInvitation(token, email, name, password string) (*AcceptInviteResult, error) {
	var result AcceptInviteResult
	err := c.doRequest("POST", "/api/auth/accept-invite", map[string]string{
		"token":    token,
		"email":    email,
		"name":     name,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Sharing 能源共享记录
type Sharing struct {
	ID                 string   `json:"id"`
	SharingCode        string   `json:"sharing_code"`
	ProviderUserID     string   `json:"provider_user_id"`
	ConsumerUserID     string   `json:"consumer_user_id"`
	Status             string   `json:"status"`
	EnergyAmountKWh    float64  `json:"energy_amount_kwh"`
	EnergyDeliveredKWh float64  `json:"energy_delivered_kwh"`
	EnergyRemainingKWh float64  `json:"energy_remaining_kwh"`
	PricePerKWh        float64  `json:"price_per_kwh"`
	TotalAmount        float64  `json:"total_amount"`
	PaymentStatus      string   `json:"payment_status"`
	ProviderRating     *int     `json:"provider_rating"`
	ConsumerRating     *int     `json:"consumer_rating"`
	DeliveryEfficiency *float64 `json:"delivery_efficiency"`
}

// ProposeSharingParams 共享提案参数
type ProposeSharingParams struct {
	ConsumerUserID  string    `json:"consumer_user_id"`
	EnergyAmountKWh float64   `json:"energy_amount_kwh"`
	PricePerKWh     float64   `json:"price_per_kwh"`
	SharingStartAt  time.Time `json:"sharing_start_datetime"`
	SharingEndAt    time.Time `json:"sharing_end_datetime"`
	ProposalExpiry  time.Time `json:"proposal_expiry_datetime"`
}

// ProposeSharing 发起共享提案
func (c *Client) ProposeSharing(params ProposeSharingParams) (*Sharing, error) {
	var result Sharing
	err := c.doRequest("POST", "/api/energy-sharings", params, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AcceptSharing 接受共享提案（消费方）
func (c *Client) AcceptSharing(id string) (*Sharing, error) {
	var result Sharing
	err := c.doRequest("POST", "/api/energy-sharings/"+url.PathEscape(id)+"/accept", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ActivateSharing 开始输送（提供方）
func (c *Client) ActivateSharing(id string) (*Sharing, error) {
	var result Sharing
	err := c.doRequest("POST", "/api/energy-sharings/"+url.PathEscape(id)+"/activate", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteSharing 完成交付（提供方）
func (c *Client) CompleteSharing(id string, deliveredKWh float64) (*Sharing, error) {
	var result Sharing
	err := c.doRequest("POST", "/api/energy-sharings/"+url.PathEscape(id)+"/complete", map[string]float64{
		"energy_delivered_kwh": deliveredKWh,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelSharing 取消共享
func (c *Client) CancelSharing(id string) error {
	return c.doRequest("DELETE", "/api/energy-sharings/"+url.PathEscape(id), nil, nil)
}

// RateSharing 对已完成的共享评分
func (c *Client) RateSharing(id string, rating int, feedback string) error {
	return c.doRequest("POST", "/api/energy-sharings/"+url.PathEscape(id)+"/rate", map[string]interface{}{
		"rating":   rating,
		"feedback": feedback,
	}, nil)
}

// SharingPage 共享记录分页
type SharingPage struct {
	List     []Sharing `json:"list"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ListSharings 列出当前用户参与的共享
// role 取 provider / consumer，空为全部。
func (c *Client) ListSharings(status, role string, page, pageSize int) (*SharingPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if role != "" {
		q.Set("role", role)
	}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprintf("%d", pageSize))
	}

	path := "/api/energy-sharings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result SharingPage
	err := c.doRequest("GET", path, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
