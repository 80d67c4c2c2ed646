package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stagekeeper/internal/config"
	"stagekeeper/internal/env"
	"stagekeeper/internal/models"
)

// HTTPClient 定义HTTP客户端接口
type HTTPClient interface {
	Get(path string, params map[string]interface{}) (*HTTPResponse, error)
	Post(path string, data interface{}) (*HTTPResponse, error)
	Close() error
}

// HTTPConfig 定义HTTP客户端配置
type HTTPConfig struct {
	Address string        //stagekeeper服务侦听地址
	Network string        //unix,tcp...
	Timeout time.Duration // 默认超时时间
	BaseURL string        // 基础URL
}

// DefaultHTTPConfig 返回默认HTTP客户端配置
func DefaultHTTPConfig() *HTTPConfig {
	c := &HTTPConfig{
		Address: GetSocketPath(config.Config.Server.Socket, ""),
		Network: "unix",
		Timeout: 5 * time.Second,
		BaseURL: "http://localhost",
	}
	// 检查socket文件是否存在，不存在则退回TCP地址
	if _, err := os.Stat(c.Address); os.IsNotExist(err) {
		c.Address = config.Config.Server.Address
		c.Network = "tcp"
	}
	return c
}

// HTTPResponse 定义HTTP响应结构
type HTTPResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Error      string              `json:"error"`
}

// buildURL 构建完整的URL
func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Path == "" {
		u.Path = path
	} else {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		u.Path += path
	}

	if params != nil {
		q := u.Query()
		for key, value := range params {
			q.Set(key, fmt.Sprintf("%v", value))
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// serializeData 序列化请求数据
func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}

	return bytes.NewReader(jsonData), nil
}

// deserializeResponse 反序列化响应数据
func deserializeResponse(resp *http.Response) (*HTTPResponse, error) {
	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	defer resp.Body.Close()
	httpResp.Body = body
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return httpResp, nil
	}
	if len(body) == 0 {
		httpResp.Error = resp.Status
	} else {
		var errBody models.ErrorResponse
		if err := json.Unmarshal(body, &errBody); err != nil {
			httpResp.Error = err.Error()
		} else {
			httpResp.Error = errBody.Error
		}
	}
	if httpResp.Error == "" {
		httpResp.Error = "Unknown error"
	}
	return httpResp, nil
}

/**
 * stagekeeper服务侦听的unix socket地址
 */
func GetSocketPath(socketName string, socketDir string) string {
	if socketDir == "" {
		socketDir = filepath.Join(env.StagekeeperDir, "run")
	}
	return filepath.Join(socketDir, socketName)
}
