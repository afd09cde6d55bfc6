// 秘匿ゲートウェイサービスのエントリポイント。
// 計算プロバイダのAPIキーをサーバー側に隠し、クレジット残高の確認と
// ジョブ投入・アップロード・状態照会の中継を担当する。
package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/nao1215/aigateway/internal/gateway"
	"github.com/nao1215/aigateway/pkg/httpclient"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := gateway.LoadConfig()
	if err != nil {
		logger.Fatal("設定の読み込みに失敗", zap.Error(err))
	}

	// 秘密情報の欠落では起動を止めず、該当エンドポイントだけを縮退させる。
	if cfg.ProviderAPIKey == "" {
		logger.Warn("RUNNINGHUB_API_KEYが未設定。プロバイダ系エンドポイントは500を返します")
	}
	if cfg.AccountStoreURL == "" {
		logger.Warn("SHEET_API_URLが未設定。認証系エンドポイントは503を返します")
	}

	httpClient := httpclient.New()
	defer httpClient.Close()

	server, err := gateway.NewServer(cfg, logger, httpClient)
	if err != nil {
		logger.Fatal("ゲートウェイサーバーの初期化に失敗", zap.Error(err))
	}

	logger.Info("ゲートウェイサービスを起動します", zap.String("port", cfg.Port))
	if err := server.Run(); err != nil {
		logger.Fatal("ゲートウェイサービスの起動に失敗", zap.Error(err))
	}
}
