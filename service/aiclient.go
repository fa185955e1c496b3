package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moneybook/config"
)

var (
	// ErrQuotaExceeded 文本生成服务配额耗尽或被限流
	ErrQuotaExceeded = errors.New("文本生成服务配额已用完")
	// ErrServiceUnavailable 其余调用失败（网络、配置、响应格式等）
	ErrServiceUnavailable = errors.New("文本生成服务不可用")
)

// TextClient 文本生成客户端的统一抽象
type TextClient interface {
	// Generate 根据提示词生成一段文本
	// 配额问题返回 ErrQuotaExceeded，其余失败返回 ErrServiceUnavailable（errors.Is 可判定）
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient 调用 OpenAI 兼容接口（POST {base_url}/chat/completions）
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient 按配置创建客户端，未配置密钥时返回 nil（调用方按服务不可用处理）
func NewOpenAIClient(cfg *config.AIConfig) *OpenAIClient {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate 非流式调用 chat/completions，返回首个回复内容
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"stream": false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("%w: 构建请求失败: %v", ErrServiceUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: 创建请求失败: %v", ErrServiceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 超时与网络故障走同一条通用失败路径
		return "", fmt.Errorf("%w: 请求失败: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: 读取响应失败: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: HTTP 429", ErrQuotaExceeded)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: 响应格式错误: %v", ErrServiceUnavailable, err)
	}

	if parsed.Error != nil {
		if isQuotaError(parsed.Error.Type, parsed.Error.Code) {
			return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: %s", ErrServiceUnavailable, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: 响应中没有生成内容", ErrServiceUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}

// isQuotaError 识别 OpenAI 风格错误体中的配额类错误
func isQuotaError(errType, errCode string) bool {
	return errCode == "insufficient_quota" ||
		errType == "insufficient_quota" ||
		errCode == "rate_limit_exceeded"
}
