package gateway

import (
	"fmt"
	"os"
)

// Config はゲートウェイの起動時設定。
// 起動時に環境変数から一度だけ構築し、以後は読み取り専用として各所に注入する。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// ProviderAPIKey はサーバー保持の計算プロバイダAPIキー。
	// 未設定の場合、プロバイダを使うエンドポイントは500を返す（起動は継続する）。
	ProviderAPIKey string
	// ProviderBaseURL は計算プロバイダのベースURL。
	ProviderBaseURL string
	// AccountStoreURL はアカウントストアのエンドポイントURL。
	// 未設定の場合、認証を伴うエンドポイントは503を返す（起動は継続する）。
	AccountStoreURL string
	// Presets は名前からワークフロー・ノード識別子への対応表。
	Presets map[string]Preset
}

// LoadConfig は環境変数からConfigを構築する。
// 秘密情報の欠落では失敗させず、該当エンドポイントの実行時エラーに委ねる。
func LoadConfig() (*Config, error) {
	presets := defaultPresets()
	if raw := os.Getenv("PRESETS_JSON"); raw != "" {
		parsed, err := parsePresets(raw)
		if err != nil {
			return nil, fmt.Errorf("PRESETS_JSONの解析に失敗: %w", err)
		}
		presets = parsed
	}

	return &Config{
		Port:            getEnvOr("PORT", "8080"),
		ProviderAPIKey:  os.Getenv("RUNNINGHUB_API_KEY"),
		ProviderBaseURL: getEnvOr("RUNNINGHUB_API_URL", "https://www.runninghub.ai"),
		AccountStoreURL: os.Getenv("SHEET_API_URL"),
		Presets:         presets,
	}, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
