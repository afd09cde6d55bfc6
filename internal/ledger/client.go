package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/aigateway/pkg/httpclient"
)

// ErrNotConfigured はアカウントストアのURLが未設定であることを表す。
var ErrNotConfigured = errors.New("アカウントストアのURLが設定されていません")

// ErrInsufficientCredit はクレジット残高が0以下であることを表す。
var ErrInsufficientCredit = errors.New("クレジット残高が不足しています")

// AuthError はアカウントストアが認証を拒否したことを表す。
// ストアが返したメッセージをそのまま保持し、クライアントへ透過する。
type AuthError struct {
	// Message はアカウントストアが返したエラーメッセージ。
	Message string
}

// Error はエラーメッセージを返す。
func (e *AuthError) Error() string {
	return e.Message
}

// UnavailableError はアカウントストアへの通信自体が失敗したことを表す。
type UnavailableError struct {
	// Err は元になった通信エラー。
	Err error
}

// Error はエラーメッセージを返す。
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("アカウントストアとの通信に失敗: %v", e.Err)
}

// Unwrap は元のエラーを返す。
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// tzGMT7 は利用実績のタイムスタンプに使うタイムゾーン。
// アカウントストアの台帳がGMT+7基準で運用されているため固定する。
var tzGMT7 = time.FixedZone("GMT+7", 7*60*60)

// Record はアカウントストアが返すレコードのうち、ゲートウェイが判定に使う部分。
type Record struct {
	// Status は処理結果（"success" か "error"）。
	Status string `json:"status"`
	// Message はストアからのメッセージ。失敗時はそのままクライアントへ返す。
	Message string `json:"message"`
	// Credit はユーザーのクレジット残高。
	Credit float64 `json:"credit"`
}

// Client はスプレッドシート台帳のアカウントストアを呼び出すクライアント。
type Client struct {
	// httpClient は共有の送信用HTTPクライアント。
	httpClient *httpclient.Client
	// url はアカウントストアのエンドポイントURL。空の場合は未設定扱い。
	url string
	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// New は新しいアカウントストアクライアントを生成する。
// urlが空の場合、各操作はErrNotConfiguredで失敗する。
func New(httpClient *httpclient.Client, url string) *Client {
	return &Client{
		httpClient: httpClient,
		url:        url,
		now:        time.Now,
	}
}

// Login は認証とクレジット残高の確認を行う。
// 成功時はストアのレコードをそのまま返す。資格情報が拒否された場合は
// AuthError、残高が0以下の場合はErrInsufficientCreditを返す。
func (c *Client) Login(ctx context.Context, username, password string) (json.RawMessage, error) {
	raw, record, err := c.call(ctx, "login", username, password, nil)
	if err != nil {
		return nil, err
	}
	if record.Credit <= 0 {
		return nil, ErrInsufficientCredit
	}
	return raw, nil
}

// Deduct はジョブ投入1回分の控除を記録する。
// 利用実績の突き合わせ用に、タスクIDとGMT+7のタイムスタンプを併せて送る。
// プロバイダがジョブを受理した後にのみ呼び出すこと。
func (c *Client) Deduct(ctx context.Context, username, password, taskID string) error {
	extra := map[string]string{
		"task_id":   taskID,
		"timestamp": c.now().In(tzGMT7).Format("2006-01-02 15:04:05"),
	}
	_, _, err := c.call(ctx, "deduct", username, password, extra)
	return err
}

// call はアカウントストアへaction・資格情報・追加フィールドを送信する共通処理。
func (c *Client) call(ctx context.Context, action, username, password string, extra map[string]string) (json.RawMessage, *Record, error) {
	if c.url == "" {
		return nil, nil, ErrNotConfigured
	}

	payload := map[string]string{
		"action":   action,
		"username": username,
		"password": password,
	}
	for k, v := range extra {
		payload[k] = v
	}

	raw, err := c.httpClient.PostJSONRaw(ctx, c.url, payload)
	if err != nil {
		return nil, nil, &UnavailableError{Err: err}
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, nil, &UnavailableError{Err: fmt.Errorf("レコードのデシリアライズに失敗: %w", err)}
	}
	if record.Status != "success" {
		return nil, nil, &AuthError{Message: record.Message}
	}
	return raw, &record, nil
}
