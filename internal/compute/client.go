package compute

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/aigateway/pkg/httpclient"
)

// APIError は計算プロバイダがドメインエラー（code != 0）を返したことを表す。
type APIError struct {
	// Code はプロバイダの結果コード。
	Code int
	// Msg はプロバイダが返したメッセージ。そのままクライアントへ透過する。
	Msg string
}

// Error はエラーメッセージを返す。
func (e *APIError) Error() string {
	return fmt.Sprintf("プロバイダエラー(code=%d): %s", e.Code, e.Msg)
}

// Client はGPUワークフロー実行基盤（計算プロバイダ）を呼び出すクライアント。
// APIキーはサーバー側だけが保持し、リクエスト組み立て時に付与する。
type Client struct {
	// httpClient は共有の送信用HTTPクライアント。
	httpClient *httpclient.Client
	// baseURL はプロバイダのベースURL。
	baseURL string
	// apiKey はサーバー保持のプロバイダAPIキー。
	apiKey string
}

// New は新しい計算プロバイダクライアントを生成する。
func New(httpClient *httpclient.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// CreateTask はワークフロー実行ジョブをプロバイダに投入し、タスクIDを返す。
// premiumがtrueの場合、上位GPUインスタンスの指定を付与する。
func (c *Client) CreateTask(ctx context.Context, workflowID string, nodes []NodeInfo, premium bool) (string, error) {
	payload := map[string]any{
		"workflowId":   workflowID,
		"nodeInfoList": nodes,
		"apiKey":       c.apiKey,
	}
	if premium {
		payload["gpuType"] = "plus"
		payload["taskType"] = "plus"
		payload["useVip"] = true
	}

	data, err := c.postEnvelope(ctx, c.baseURL+"/task/openapi/create", payload)
	if err != nil {
		return "", err
	}

	var task createTaskData
	if err := json.Unmarshal(data, &task); err != nil {
		return "", fmt.Errorf("タスクIDのデシリアライズに失敗: %w", err)
	}
	return task.TaskID, nil
}

// Upload はファイルをプロバイダにマルチパートで転送し、
// 後続のジョブ投入でimg_pathとして使うファイル記述子を返す。
func (c *Client) Upload(ctx context.Context, data []byte, filename, contentType string) (json.RawMessage, error) {
	fields := map[string]string{
		"apiKey":   c.apiKey,
		"fileType": "image",
	}
	file := httpclient.FilePart{
		FieldName:   "file",
		FileName:    filename,
		ContentType: contentType,
		Data:        data,
	}

	raw, err := c.httpClient.PostMultipart(ctx, c.baseURL+"/task/openapi/upload", fields, file)
	if err != nil {
		return nil, err
	}
	return c.unwrapEnvelope(raw)
}

// TaskStatus はタスクの状態をプロバイダに問い合わせ、ボディを加工せず返す。
// プロバイダ側のエラーコードもそのまま透過する。
func (c *Client) TaskStatus(ctx context.Context, taskID string) ([]byte, error) {
	return c.httpClient.PostJSONRaw(ctx, c.baseURL+"/task/openapi/status", map[string]string{
		"taskId": taskID,
		"apiKey": c.apiKey,
	})
}

// TaskOutputs はタスクの生成物一覧をプロバイダに問い合わせ、ボディを加工せず返す。
func (c *Client) TaskOutputs(ctx context.Context, taskID string) ([]byte, error) {
	return c.httpClient.PostJSONRaw(ctx, c.baseURL+"/task/openapi/outputs", map[string]string{
		"taskId": taskID,
		"apiKey": c.apiKey,
	})
}

// AccountStatus はプロバイダ側のアカウント状態を問い合わせ、ボディを加工せず返す。
func (c *Client) AccountStatus(ctx context.Context) ([]byte, error) {
	return c.httpClient.PostJSONRaw(ctx, c.baseURL+"/uc/openapi/accountStatus", map[string]string{
		"apikey": c.apiKey,
	})
}

// postEnvelope はJSONを送信し、共通レスポンス形式を検査してdata部を返す。
func (c *Client) postEnvelope(ctx context.Context, url string, payload any) (json.RawMessage, error) {
	raw, err := c.httpClient.PostJSONRaw(ctx, url, payload)
	if err != nil {
		return nil, err
	}
	return c.unwrapEnvelope(raw)
}

// unwrapEnvelope は共通レスポンス形式を検査し、code != 0をAPIErrorに変換する。
func (c *Client) unwrapEnvelope(raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("プロバイダレスポンスのデシリアライズに失敗: %w", err)
	}
	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, Msg: env.Msg}
	}
	return env.Data, nil
}
