package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/aigateway/pkg/httpclient"
)

// newTestClient はhttptestのストアを向いたクライアントを生成する。
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	store := httptest.NewServer(handler)
	t.Cleanup(store.Close)

	httpClient := httpclient.New()
	t.Cleanup(httpClient.Close)

	return New(httpClient, store.URL)
}

// decodeStorePayload はストアが受け取ったリクエストボディを解析する。
func decodeStorePayload(t *testing.T, r *http.Request) map[string]string {
	t.Helper()

	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("リクエストボディの解析に失敗: %v", err)
	}
	return payload
}

// TestClientLogin はLoginメソッドを検証する。
func TestClientLogin(t *testing.T) {
	t.Parallel()

	t.Run("成功時にストアのレコードがそのまま返ること", func(t *testing.T) {
		t.Parallel()

		const record = `{"status":"success","message":"ok","credit":12.5,"plan":"basic"}`
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			payload := decodeStorePayload(t, r)
			if payload["action"] != "login" {
				t.Errorf("action = %q, want %q", payload["action"], "login")
			}
			if payload["username"] != "alice" || payload["password"] != "pw" {
				t.Errorf("資格情報 = %q/%q", payload["username"], payload["password"])
			}
			w.Write([]byte(record))
		})

		raw, err := client.Login(context.Background(), "alice", "pw")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if string(raw) != record {
			t.Errorf("レコード = %s, want %s", raw, record)
		}
	})

	t.Run("ストアが拒否した場合はメッセージがそのまま伝わること", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"error","message":"invalid password"}`))
		})

		_, err := client.Login(context.Background(), "alice", "bad")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("AuthErrorでない: %v", err)
		}
		if authErr.Message != "invalid password" {
			t.Errorf("Message = %q, want %q", authErr.Message, "invalid password")
		}
	})

	t.Run("残高が0以下の場合はErrInsufficientCreditになること", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"success","message":"ok","credit":0}`))
		})

		_, err := client.Login(context.Background(), "alice", "pw")
		if !errors.Is(err, ErrInsufficientCredit) {
			t.Errorf("err = %v, want ErrInsufficientCredit", err)
		}
	})

	t.Run("URL未設定の場合はErrNotConfiguredになること", func(t *testing.T) {
		t.Parallel()

		httpClient := httpclient.New()
		t.Cleanup(httpClient.Close)
		client := New(httpClient, "")

		_, err := client.Login(context.Background(), "alice", "pw")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("err = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("通信失敗はUnavailableErrorになること", func(t *testing.T) {
		t.Parallel()

		httpClient := httpclient.New()
		t.Cleanup(httpClient.Close)
		// 到達不能なアドレスを指定する。
		client := New(httpClient, "http://127.0.0.1:1")

		_, err := client.Login(context.Background(), "alice", "pw")
		var unavailable *UnavailableError
		if !errors.As(err, &unavailable) {
			t.Errorf("UnavailableErrorでない: %v", err)
		}
	})
}

// TestClientDeduct はDeductメソッドを検証する。
func TestClientDeduct(t *testing.T) {
	t.Parallel()

	t.Run("タスクIDとGMT+7のタイムスタンプが送信されること", func(t *testing.T) {
		t.Parallel()

		var got map[string]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = decodeStorePayload(t, r)
			w.Write([]byte(`{"status":"success","message":"deducted","credit":9}`))
		})
		// 2026-01-02 00:30:00 UTC は GMT+7 では同日の 07:30:00。
		client.now = func() time.Time {
			return time.Date(2026, 1, 2, 0, 30, 0, 0, time.UTC)
		}

		if err := client.Deduct(context.Background(), "alice", "pw", "task-42"); err != nil {
			t.Fatalf("Deduct() error = %v", err)
		}
		if got["action"] != "deduct" {
			t.Errorf("action = %q, want %q", got["action"], "deduct")
		}
		if got["task_id"] != "task-42" {
			t.Errorf("task_id = %q, want %q", got["task_id"], "task-42")
		}
		if got["timestamp"] != "2026-01-02 07:30:00" {
			t.Errorf("timestamp = %q, want %q", got["timestamp"], "2026-01-02 07:30:00")
		}
	})

	t.Run("ストアが拒否した場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"error","message":"user not found"}`))
		})

		err := client.Deduct(context.Background(), "ghost", "pw", "task-1")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("AuthErrorでない: %v", err)
		}
	})

	t.Run("控除では残高0でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"success","message":"deducted","credit":0}`))
		})

		if err := client.Deduct(context.Background(), "alice", "pw", "task-1"); err != nil {
			t.Errorf("Deduct() error = %v", err)
		}
	})
}
