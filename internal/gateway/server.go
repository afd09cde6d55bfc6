package gateway

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nao1215/aigateway/internal/compute"
	"github.com/nao1215/aigateway/internal/ledger"
	"github.com/nao1215/aigateway/pkg/httpclient"
	"github.com/nao1215/aigateway/pkg/middleware"
)

// Server は秘匿ゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に構築された読み取り専用の設定。
	cfg *Config
	// logger は構造化ログの出力先。
	logger *zap.Logger
	// ledger はアカウントストアへのクライアント。
	ledger *ledger.Client
	// compute は計算プロバイダへのクライアント。
	compute *compute.Client
}

// NewServer は新しいゲートウェイサーバーを生成する。
// 上流クライアントは共有のhttpClientを使って構築される。
func NewServer(cfg *Config, logger *zap.Logger, httpClient *httpclient.Client) (*Server, error) {
	if err := registerValidations(); err != nil {
		return nil, fmt.Errorf("カスタムバリデーションの登録に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.CORS())

	s := &Server{
		router:  router,
		cfg:     cfg,
		logger:  logger,
		ledger:  ledger.New(httpClient, cfg.AccountStoreURL),
		compute: compute.New(httpClient, cfg.ProviderBaseURL, cfg.ProviderAPIKey),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		api.POST("/login", s.handleLogin())
		api.POST("/workflow/create", s.handleCreateWorkflow())
		api.POST("/upload", s.handleUpload())
		api.GET("/task/status/:task_id", s.handleTaskStatus())
		api.GET("/task/outputs/:task_id", s.handleTaskOutputs())
		api.GET("/account/status", s.handleAccountStatus())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "gateway"})
	})
}

// validationOnce はプロセス共有のバインディングエンジンへの登録を一度に限定する。
var validationOnce sync.Once

// validationErr は初回登録の結果。2回目以降の呼び出しにも同じ結果を返す。
var validationErr error

// registerValidations はGinのバインディングエンジンにカスタムルールを登録する。
// gpumodeルールは"normal"と"plus"だけを許可する。値の省略はルールではなく
// フィールド側のomitemptyタグが引き受ける。
// エンジンはプロセス全体で共有されるため、登録はsync.Onceで一度だけ行う。
func registerValidations() error {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validationErr = fmt.Errorf("バリデーションエンジンの型が想定外")
			return
		}
		validationErr = v.RegisterValidation("gpumode", func(fl validator.FieldLevel) bool {
			mode := fl.Field().String()
			return mode == "normal" || mode == "plus"
		})
	})
	return validationErr
}
