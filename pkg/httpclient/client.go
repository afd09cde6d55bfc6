package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// defaultTimeout は上流サービスへのリクエストのタイムアウト。
// GPUワークフローの投入は上流側で数十秒かかることがあるため長めに設定する。
const defaultTimeout = 60 * time.Second

// Client は上流サービス（計算プロバイダとアカウントストア）への送信用HTTPクライアント。
// プロセス起動時に1つ生成し、全ハンドラで共有する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
}

// New は新しい送信用HTTPクライアントを生成する。
// コネクションプールはプロセス全体で再利用されるため、生成は起動時に一度だけ行う。
func New() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// PostJSON は指定URLにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, url string, body any, result any) error {
	raw, err := c.PostJSONRaw(ctx, url, body)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// PostJSONRaw は指定URLにJSONボディでPOSTリクエストを送信し、
// レスポンスボディをそのまま返す。ステータス・出力の素通し転送で使用する。
func (c *Client) PostJSONRaw(ctx context.Context, url string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// FilePart はマルチパート送信するファイル1つ分の情報。
type FilePart struct {
	// FieldName はフォームのフィールド名。
	FieldName string
	// FileName はファイル名。
	FileName string
	// ContentType はMIMEタイプ。
	ContentType string
	// Data はファイルの中身。
	Data []byte
}

// PostMultipart は指定URLにmultipart/form-dataでPOSTリクエストを送信する。
// fieldsはテキストフィールド、fileはファイルパートとして送信される。
func (c *Client) PostMultipart(ctx context.Context, url string, fields map[string]string, file FilePart) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("フォームフィールドの書き込みに失敗: %w", err)
		}
	}

	// CreateFormFileはContent-Typeをapplication/octet-streamに固定してしまうため、
	// パートヘッダーを自前で組んでクライアント申告のMIMEタイプを維持する。
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
	header.Set("Content-Type", file.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("ファイルパートの作成に失敗: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("ファイル内容の書き込みに失敗: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("マルチパートボディの確定に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// do はリクエストを実行し、2xx以外のステータスをエラーとして扱う共通処理。
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTPエラー: status=%d, body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Close はアイドル状態のコネクションを解放する。
// プロセス終了時にdeferで呼び出すこと。
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
